package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig is one Cache-Control profile.
type CacheConfig struct {
	Public    bool
	MaxAge    int
	NoStore   bool
	Immutable bool
	Vary      []string
}

// PageCacheConfig is used for rendered pages and the JSON API. Both
// carry per-session toasts and scan state and must never be served from
// a cache.
func PageCacheConfig() CacheConfig {
	return CacheConfig{NoStore: true, Vary: []string{"Cookie"}}
}

// StaticCacheConfig is used for the embedded stylesheet and script,
// which only change with a new binary.
func StaticCacheConfig() CacheConfig {
	return CacheConfig{Public: true, MaxAge: 86400, Vary: []string{"Accept-Encoding"}}
}

func (c CacheConfig) header() string {
	directives := []string{"private"}
	if c.Public {
		directives[0] = "public"
	}
	if c.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(c.MaxAge))
	}
	if c.NoStore {
		directives = append(directives, "no-store")
	}
	if c.Immutable {
		directives = append(directives, "immutable")
	}
	return strings.Join(directives, ", ")
}

// Cache sets Cache-Control for reads. Anything else is never stored.
func Cache(config CacheConfig) gin.HandlerFunc {
	value := config.header()
	vary := strings.Join(config.Vary, ", ")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}
		c.Header("Cache-Control", value)
		if vary != "" {
			c.Header("Vary", vary)
		}
		c.Next()
	}
}
