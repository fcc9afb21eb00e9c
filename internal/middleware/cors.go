package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig admits the local dashboard origin to the read API
// and the KYC verification endpoint.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"http://localhost:8080"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", HeaderAcceptVersion, HeaderAPIKey, "Authorization", HeaderXRequestID},
		ExposeHeaders: []string{HeaderAPIVersion, HeaderXRequestID},
		MaxAge:        86400,
	}
}

// CORS guards the JSON API. Page routes are same-origin and never carry
// these headers. A preflight from an unknown origin is refused.
func CORS(config CORSConfig) gin.HandlerFunc {
	wildcard := false
	origins := make(map[string]bool, len(config.AllowOrigins))
	for _, o := range config.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		origins[o] = true
	}
	methods := strings.Join(config.AllowMethods, ", ")
	headers := strings.Join(config.AllowHeaders, ", ")
	expose := strings.Join(config.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions
		c.Writer.Header().Add("Vary", "Origin")

		if origin == "" || !(wildcard || origins[origin]) {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		allowed := origin
		if wildcard && !config.AllowCredentials {
			allowed = "*"
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		if expose != "" {
			h.Set("Access-Control-Expose-Headers", expose)
		}
		if config.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if preflight {
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
