package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/session"
)

// Audit logs every state-changing dashboard request after it ran: who
// (the session), what (path, dialog, action, record id) and how it
// ended. Reads are not audited.
func Audit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		// Execute the handler
		c.Next()

		entityID := c.Param("id")
		if entityID == "" {
			entityID = c.PostForm("id")
		}

		event := loggerFrom(c).Info()
		if c.Writer.Status() >= http.StatusBadRequest {
			event = loggerFrom(c).Warn()
		}
		if sess, err := session.FromGin(c); err == nil {
			event = event.Str("session_id", sess.ID)
		}
		event.
			Str("audit", "dashboard_action").
			Str("path", c.Request.URL.Path).
			Str("modal", c.PostForm("modal")).
			Str("action", c.PostForm("action")).
			Str("entity_id", entityID).
			Int("status", c.Writer.Status()).
			Dict("request", zerolog.Dict().
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP())).
			Msg("Dashboard action")
	}
}
