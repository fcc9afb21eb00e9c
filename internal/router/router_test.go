package router

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/handler/casework"
	"github.com/fraudshield/admin-dashboard/internal/handler/detection"
	"github.com/fraudshield/admin-dashboard/internal/handler/fingerprint"
	"github.com/fraudshield/admin-dashboard/internal/handler/health"
	"github.com/fraudshield/admin-dashboard/internal/handler/integration"
	"github.com/fraudshield/admin-dashboard/internal/handler/kyc"
	"github.com/fraudshield/admin-dashboard/internal/handler/overview"
	"github.com/fraudshield/admin-dashboard/internal/handler/prometheus"
	"github.com/fraudshield/admin-dashboard/internal/handler/user"
	"github.com/fraudshield/admin-dashboard/internal/middleware"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	caseworkService "github.com/fraudshield/admin-dashboard/internal/service/casework"
	detectionService "github.com/fraudshield/admin-dashboard/internal/service/detection"
	fingerprintService "github.com/fraudshield/admin-dashboard/internal/service/fingerprint"
	integrationService "github.com/fraudshield/admin-dashboard/internal/service/integration"
	kycService "github.com/fraudshield/admin-dashboard/internal/service/kyc"
	overviewService "github.com/fraudshield/admin-dashboard/internal/service/overview"
	"github.com/fraudshield/admin-dashboard/internal/service/scan"
	userService "github.com/fraudshield/admin-dashboard/internal/service/user"
	"github.com/fraudshield/admin-dashboard/internal/session"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	"github.com/fraudshield/admin-dashboard/pkg/metrics"
	"github.com/fraudshield/admin-dashboard/pkg/security"
)

var bindOnce sync.Once

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	bindOnce.Do(func() {
		require.NoError(t, middleware.RegisterBindingRules(middleware.DefaultValidationConfig()))
	})

	views, err := view.New()
	require.NoError(t, err)

	fake := clock.Fake(time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC))
	stores := memory.Seed()
	registry := promclient.NewRegistry()
	m := metrics.NewMetrics("fraudshield", registry)

	scanSvc := scan.NewService(scan.Config{}, fake, stores.Orders, stores.Fingerprints)
	sessions := session.NewStore(session.DefaultConfig(), fake, scanSvc, m)
	t.Cleanup(sessions.Flush)

	pages := handler.NewPages(views, fake, m)
	r := NewRouter(sessions,
		health.NewHandler(map[string]health.Check{"orders": func(ctx context.Context) error {
			_, err := stores.Orders.List(ctx)
			return err
		}}),
		prometheus.New("fraudshield", registry),
		RouterConfig{
			Mode:             gin.TestMode,
			Logger:           zerolog.Nop(),
			RateLimitEnabled: false,
			CORSConfig:       middleware.DefaultCORSConfig(),
			ValidationConfig: middleware.DefaultValidationConfig(),
		},
		handler.NewHandler(pages),
		overview.NewHandler(overviewService.NewService(overviewService.Stores{Orders: stores.Orders, Blog: stores.Blog}), pages),
		casework.NewHandler(caseworkService.NewService(caseworkService.Stores{
			Cases: stores.Cases, Chargebacks: stores.Chargebacks, Warranty: stores.Warranty, Tracking: stores.Tracking,
		}), pages),
		detection.NewHandler(detectionService.NewService(detectionService.Stores{
			Patterns: stores.Patterns, SOPs: stores.SOPs, AccessLogs: stores.AccessLogs, Orders: stores.Orders,
		}, fake), pages),
		fingerprint.NewHandler(fingerprintService.NewService(fingerprintService.Stores{Orders: stores.Orders, Fingerprints: stores.Fingerprints}), pages),
		kyc.NewHandler(kycService.NewService(stores.KYC, fake,
			kycService.WithLatency(kycService.Latency{}),
			kycService.WithHasher(security.NewBcryptHasher(bcrypt.MinCost)),
		), pages),
		user.NewHandler(userService.NewService(stores.Users), pages),
		integration.NewHandler(integrationService.NewService(integrationService.Stores{
			Connectors: stores.Connectors, Integrations: stores.Integrations,
		}, memory.ConnectorCategories, fake), pages),
	)
	r.Setup()
	return r.Engine()
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestEveryRouteRenders(t *testing.T) {
	r := newTestRouter(t)

	routes := view.Routes()
	require.Len(t, routes, 16)
	for _, path := range routes {
		t.Run(path, func(t *testing.T) {
			w := get(r, path)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			body := w.Body.String()
			assert.Contains(t, body, fmt.Sprintf(`href="%s" class="nav-link active"`, path))
			assert.Equal(t, 1, strings.Count(body, "nav-link active"))
			assert.NotContains(t, body, `role="alert"`, "no error banner on a clean load")
		})
	}
}

func TestPageHeaders(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/cases")
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "pages start a session")
}

func TestAPIRoutes(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/orders", "/api/v1/cases", "/api/v1/chargebacks", "/api/v1/kyc", "/api/v1/users",
		"/api/v1/patterns", "/api/v1/sops", "/api/v1/fingerprints", "/api/v1/insiders",
		"/api/v1/tracking", "/api/v1/integrations",
	} {
		w := get(r, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"status":"success"`, path)
		assert.Equal(t, "1.0", w.Header().Get("X-API-Version"), path)
	}

	w := get(r, "/api/v1/cases?status=lost")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set(middleware.HeaderAcceptVersion, "2.0")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestHealthMetricsAndFallbacks(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/v1/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies(), "probes do not start sessions")
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/health/ready").Code)

	get(r, "/cases")
	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fraudshield_page_renders_total{page="cases"} 1`)
	assert.Contains(t, w.Body.String(), `fraudshield_http_requests_total{method="GET",path="/cases",status="200"} 1`)

	w = get(r, "/static/app.css")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "page not found")
}

func TestToastRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	form := url.Values{"return": {"/chargebacks"}}
	req := httptest.NewRequest(http.MethodPost, "/chargebacks/CB-001/flag", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/chargebacks", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `class="toast`)
}
