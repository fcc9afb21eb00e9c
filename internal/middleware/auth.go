package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

// HeaderAPIKey carries a KYC integration key.
const HeaderAPIKey = "X-API-Key"

// KeyVerifier checks a presented API key.
type KeyVerifier interface {
	VerifyAPIKey(key string) error
}

// RequireAPIKey admits requests carrying a key the verifier accepts,
// either in X-API-Key or as a Bearer token.
func RequireAPIKey(v KeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		if key == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				key = strings.TrimSpace(parts[1])
			}
		}
		if key == "" {
			_ = c.Error(apperrors.Unauthorized("missing API key", nil))
			c.Abort()
			return
		}

		if err := v.VerifyAPIKey(key); err != nil {
			loggerFrom(c).Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("API key rejected")
			_ = c.Error(apperrors.Unauthorized("invalid API key", err))
			c.Abort()
			return
		}
		c.Next()
	}
}
