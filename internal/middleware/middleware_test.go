package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type keyVerifier string

func (k keyVerifier) VerifyAPIKey(key string) error {
	if key != string(k) {
		return errors.New("key mismatch")
	}
	return nil
}

func TestRequireAPIKey(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/verify", RequireAPIKey(keyVerifier("sk_live_good")), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"header", HeaderAPIKey, "sk_live_good", http.StatusNoContent},
		{"bearer", "Authorization", "Bearer sk_live_good", http.StatusNoContent},
		{"wrong key", HeaderAPIKey, "sk_live_bad", http.StatusUnauthorized},
		{"basic scheme", "Authorization", "Basic sk_live_good", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/verify", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			assert.Equal(t, tt.want, do(r, req).Code)
		})
	}
}

func TestErrorHandlerUsesAppErrorStatus(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("case", nil))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(HeaderXRequestID, "req-1")
	w := do(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"message":"case not found","trace_id":"req-1"}`, w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(HeaderXRequestID))

	w = do(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}

func TestRequestIDReplacesUnfitIDs(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "req-42")
	assert.Equal(t, "req-42", do(r, req).Body.String())

	for _, bad := range []string{"line\nbreak", strings.Repeat("a", 65), "a b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, bad)
		w := do(r, req)
		assert.NotEqual(t, bad, w.Body.String())
		assert.Len(t, w.Body.String(), 36, "uuid")
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/api/v1/panic", func(*gin.Context) { panic("api") })
	r.GET("/panic", func(*gin.Context) { panic("page") })

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Internal server error"`)

	w = do(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", w.Body.String())
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.Use(Cache(PageCacheConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "Cookie", w.Header().Get("Vary"))

	w = do(r, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	static := gin.New()
	static.Use(Cache(StaticCacheConfig()))
	static.GET("/app.css", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = do(static, httptest.NewRequest(http.MethodGet, "/app.css", nil))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/api/v1/cases", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/api/v1/cases", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	w := do(r, req)
	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/cases", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/cases", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; form-action 'self'; frame-ancestors 'none'",
		w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	cfg := DefaultSecurityConfig()
	cfg.HSTS = true
	cfg.CSPExtra = []string{"upgrade-insecure-requests"}
	r = gin.New()
	r.Use(SecurityHeaders(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.True(t, strings.HasSuffix(w.Header().Get("Content-Security-Policy"), "; upgrade-insecure-requests"))
}

func TestSizeLimit(t *testing.T) {
	cfg := DefaultSizeLimitConfig()
	cfg.MaxBodySize = 16
	r := gin.New()
	r.Use(SizeLimit(cfg))
	r.POST("/form", func(c *gin.Context) { c.String(http.StatusOK, c.PostForm("q")) })

	form := url.Values{"q": {"ok"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	big := url.Values{"q": {strings.Repeat("x", 64)}}.Encode()
	req = httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(r, req).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, rl.Allow("10.0.0.2"), "other clients keep their own bucket")

	r := gin.New()
	r.Use(NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1}).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestLoggerAndAudit(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), Logger(base), Audit())
	r.POST("/chargebacks/:id/flag", func(c *gin.Context) { c.Status(http.StatusSeeOther) })
	r.GET("/cases", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/chargebacks/CB-001/flag", strings.NewReader("return=%2Fchargebacks"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(HeaderXRequestID, "req-42")
	do(r, req)

	out := buf.String()
	assert.Contains(t, out, `"audit":"dashboard_action"`)
	assert.Contains(t, out, `"entity_id":"CB-001"`)
	assert.Contains(t, out, `"request_id":"req-42"`)
	assert.Contains(t, out, `"message":"Request processed"`)

	buf.Reset()
	do(r, httptest.NewRequest(http.MethodGet, "/cases", nil))
	assert.NotContains(t, buf.String(), "dashboard_action", "reads are not audited")
}

func TestLoggerLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(zerolog.New(&buf)))
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	do(r, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	buf.Reset()
	do(r, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestValidationListsFields(t *testing.T) {
	require.NoError(t, RegisterBindingRules(DefaultValidationConfig()))

	type query struct {
		Status string `form:"status" binding:"omitempty,oneof=open closed"`
	}
	r := gin.New()
	r.Use(ErrorHandler(), Validation(DefaultValidationConfig()))
	r.GET("/cases", func(c *gin.Context) {
		var q query
		if err := c.ShouldBindQuery(&q); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/cases?status=lost", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"status"`)
	assert.Contains(t, w.Body.String(), "Value is not one of the allowed options")
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/cases?status=open", nil)).Code)
}

func TestVersionNegotiation(t *testing.T) {
	cfg := DefaultVersionConfig()
	cfg.Versions["0.9"] = &VersionDeprecation{Date: "2024-01-01", SunsetDate: "2024-06-01", Info: "/api/v1/docs"}
	r := gin.New()
	r.Use(Version(cfg))
	r.GET("/api/v1/cases", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextAPIVersion)) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Body.String())
	assert.Equal(t, "1.0", w.Header().Get(HeaderAPIVersion))

	tests := []struct {
		version string
		want    int
	}{
		{"0.9", http.StatusOK},
		{"2.0", http.StatusNotAcceptable},
		{"v1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
			req.Header.Set(HeaderAcceptVersion, tt.version)
			w := do(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.version == "0.9" {
				assert.Equal(t, "2024-06-01", w.Header().Get("Sunset"))
			}
		})
	}
}

func TestTimeoutReportsGatewayTimeout(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), Timeout(TimeoutConfig{Duration: time.Millisecond}))
	r.GET("/api/v1/kyc", func(c *gin.Context) {
		<-c.Request.Context().Done()
		_ = c.Error(c.Request.Context().Err())
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/kyc", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.MsgTimeout)
}
