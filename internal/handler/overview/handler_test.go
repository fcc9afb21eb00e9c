package overview

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/handler/handlertest"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	overviewService "github.com/fraudshield/admin-dashboard/internal/service/overview"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
)

func setup(t *testing.T) (*handlertest.Env, *memory.Stores) {
	t.Helper()
	env := handlertest.New(t)
	stores := memory.Seed()
	svc := overviewService.NewService(overviewService.Stores{Orders: stores.Orders, Blog: stores.Blog})
	NewHandler(svc, env.Pages).RegisterRoutes(env.Engine, env.API)
	return env, stores
}

func TestDashboardRiskFilter(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/?risk=high")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "John Doe")
	assert.Contains(t, body, "Mike Johnson")
	assert.NotContains(t, body, "Jane Smith")
	assert.Contains(t, body, `href="/orders/export?risk=high"`)
	assert.Contains(t, body, "Integration Status")
}

func TestDashboardNoMatches(t *testing.T) {
	env, _ := setup(t)

	body := env.Get("/?country=US&compensation=Replacement").Body.String()
	assert.Contains(t, body, `colspan="8"`)
	assert.Contains(t, body, "No data available")
}

func TestDashboardBadFilterShowsBanner(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/?risk=extreme")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `Invalid value for filter &#34;risk&#34;`)
	assert.Contains(t, body, "Jane Smith", "a rejected filter falls back to all orders")
}

func TestExportOrders(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/orders/export?compensation=Replacement")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="compensations.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	body := w.Body.String()
	assert.Contains(t, body, "Order ID,Customer,Email")
	assert.Contains(t, body, "ORD-005")
	assert.NotContains(t, body, "ORD-001")

	cur, ok := env.Toast(t)
	require.True(t, ok)
	assert.Equal(t, MsgExported, cur.Message)

	assert.Equal(t, http.StatusBadRequest, env.Get("/orders/export?risk=extreme").Code)
}

func TestPushToReview(t *testing.T) {
	env, stores := setup(t)

	w := env.Post("/orders/review", url.Values{"return": {"/?risk=high"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?risk=high", w.Header().Get("Location"))

	cur, ok := env.Toast(t)
	require.True(t, ok)
	assert.Equal(t, toast.Success, cur.Type)
	assert.Equal(t, "2 orders pushed to review queue", cur.Message)

	o, err := stores.Orders.Get(context.Background(), "ORD-001")
	require.NoError(t, err)
	assert.Equal(t, model.OrderUnderReview, o.Status)

	w = env.Post("/orders/review", url.Values{"return": {"https://evil.example/"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cur, _ = env.Toast(t)
	assert.Equal(t, toast.Warning, cur.Type)
	assert.Equal(t, "No flagged orders to push", cur.Message)
}

func TestAnalyticsTrend(t *testing.T) {
	env, _ := setup(t)

	body := env.Get("/analytics?metric=prevented&range=30d").Body.String()
	assert.Contains(t, body, "Prevented Fraud · Last 30 days")
	assert.Contains(t, body, `class="tab active" href="/analytics?metric=prevented&amp;range=30d"`)
	assert.Contains(t, body, "Detection Performance")

	body = env.Get("/analytics?range=1y").Body.String()
	assert.Contains(t, body, `Invalid value for filter &#34;range&#34;`)
	assert.Contains(t, body, "Fraud Cases · Last 7 days")
}

func TestTrendAPI(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/api/v1/analytics/trend?range=90d")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fraud Cases · Last 90 days")

	w = env.Get("/api/v1/analytics/trend?metric=losses")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"metric"`)
}

func TestBlogSearchAndPost(t *testing.T) {
	env, _ := setup(t)

	body := env.Get("/blog?q=insider").Body.String()
	assert.Contains(t, body, "Insider Threats: A Growing Concern")
	assert.NotContains(t, body, "Best Practices for Chargeback Prevention")
	assert.Contains(t, body, `href="/blog?id=3&amp;modal=post&amp;q=insider"`)

	w := env.Get("/blog?modal=post&id=2")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, `id="modal-title">Best Practices for Chargeback Prevention`)
	assert.Contains(t, body, "Michael Chen")
	assert.Contains(t, body, `class="overflow-hidden"`)

	body = env.Get("/blog?modal=post&id=99").Body.String()
	assert.NotContains(t, body, `role="dialog"`)
	assert.Contains(t, body, "post not found")
}

func TestListOrdersAPI(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/api/v1/orders?q=ORD-006")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
	assert.Contains(t, w.Body.String(), "Emma Davis")
}
