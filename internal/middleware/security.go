package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds the response headers that lock the dashboard
// down in the browser.
type SecurityConfig struct {
	// HSTS is off by default: the dashboard usually sits behind a TLS
	// terminating proxy that sets it.
	HSTS              bool
	HSTSMaxAge        int
	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy string
	// CSP maps a directive to its sources. Directives are emitted in
	// cspOrder; unknown ones follow in the order given by CSPExtra.
	CSP      map[string]string
	CSPExtra []string
}

var cspOrder = []string{
	"default-src", "script-src", "style-src", "img-src", "connect-src", "form-action", "frame-ancestors",
}

// DefaultSecurityConfig allows only same-origin assets. Inline styles
// stay allowed for the chart bar widths.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:        31536000,
		FrameOptions:      "DENY",
		ReferrerPolicy:    "same-origin",
		PermissionsPolicy: "camera=(), microphone=(), geolocation=()",
		CSP: map[string]string{
			"default-src":     "'self'",
			"script-src":      "'self'",
			"style-src":       "'self' 'unsafe-inline'",
			"img-src":         "'self' data:",
			"connect-src":     "'self'",
			"form-action":     "'self'",
			"frame-ancestors": "'none'",
		},
	}
}

func (s SecurityConfig) policy() string {
	parts := make([]string, 0, len(s.CSP)+len(s.CSPExtra))
	for _, d := range cspOrder {
		if v, ok := s.CSP[d]; ok {
			parts = append(parts, d+" "+v)
		}
	}
	parts = append(parts, s.CSPExtra...)
	return strings.Join(parts, "; ")
}

// SecurityHeaders adds the configured headers to every response.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	csp := config.policy()
	hsts := "max-age=" + strconv.Itoa(config.HSTSMaxAge) + "; includeSubDomains"
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if config.HSTS {
			h.Set("Strict-Transport-Security", hsts)
		}
		h.Set("X-Frame-Options", config.FrameOptions)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", config.ReferrerPolicy)
		if config.PermissionsPolicy != "" {
			h.Set("Permissions-Policy", config.PermissionsPolicy)
		}
		if csp != "" {
			h.Set("Content-Security-Policy", csp)
		}
		c.Next()
	}
}
