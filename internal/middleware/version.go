package middleware

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/fraudshield/admin-dashboard/internal/handler"
)

const (
	HeaderAcceptVersion = "Accept-Version"
	HeaderAPIVersion    = "X-API-Version"
	ContextAPIVersion   = "api_version"
)

// VersionDeprecation holds deprecation info sent with a retired version.
type VersionDeprecation struct {
	Date       string
	SunsetDate string
	Info       string
}

// VersionConfig lists the JSON API versions the dashboard answers.
type VersionConfig struct {
	DefaultVersion string
	Versions       map[string]*VersionDeprecation
	// Strict rejects well-formed but unknown versions with 406.
	Strict bool
}

func DefaultVersionConfig() VersionConfig {
	return VersionConfig{
		DefaultVersion: "1.0",
		Versions:       map[string]*VersionDeprecation{"1.0": nil},
		Strict:         true,
	}
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// Version negotiates the API version from Accept-Version and echoes the
// served one in X-API-Version.
func Version(config VersionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		requested := c.GetHeader(HeaderAcceptVersion)
		if requested == "" {
			requested = config.DefaultVersion
		}

		if !versionPattern.MatchString(requested) {
			c.AbortWithStatusJSON(http.StatusBadRequest, handler.NewErrorResponse(
				"Invalid version format. Use: major.minor",
			))
			return
		}

		deprecation, ok := config.Versions[requested]
		if !ok && config.Strict {
			c.AbortWithStatusJSON(http.StatusNotAcceptable, handler.NewErrorResponse(
				fmt.Sprintf("API version %s not supported", requested),
			))
			return
		}

		c.Set(ContextAPIVersion, requested)
		c.Header(HeaderAPIVersion, requested)
		if deprecation != nil {
			c.Header("Deprecation", deprecation.Date)
			if deprecation.SunsetDate != "" {
				c.Header("Sunset", deprecation.SunsetDate)
			}
			if deprecation.Info != "" {
				c.Header("Link", fmt.Sprintf(`<%s>; rel="deprecation"; type="text/html"`, deprecation.Info))
			}
		}

		c.Next()
	}
}
