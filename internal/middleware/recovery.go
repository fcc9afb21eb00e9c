package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

// Recovery turns a panic into a 500 and one error log line with the
// stack. API requests get the JSON error envelope, pages plain text.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			loggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("Request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Code:    http.StatusInternalServerError,
					Message: msgInternal,
					TraceID: c.GetString(ContextRequestID),
				})
				return
			}
			c.Abort()
			c.String(http.StatusInternalServerError, msgInternal)
		}()
		c.Next()
	}
}
