package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler writes the last error attached with c.Error when the
// handler itself wrote nothing.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		traceID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			loggerFrom(c).Error().
				Err(e.Err).
				Str("trace_id", traceID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Interface("meta", e.Meta).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		status := apperrors.StatusOf(lastErr)
		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: apperrors.MessageOf(lastErr),
			TraceID: traceID,
		})
	}
}
