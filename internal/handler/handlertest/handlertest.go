// Package handlertest wires a gin engine the way the router does, for
// page handler tests.
package handlertest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/middleware"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/service/scan"
	"github.com/fraudshield/admin-dashboard/internal/session"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
)

// Epoch is the fake clock's start time.
var Epoch = time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)

var bindOnce sync.Once

// Env is a test server with one browser session.
type Env struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Pages  *handler.Pages
	Store  *session.Store
	Clock  *clock.FakeClock

	cookie *http.Cookie
}

// Scanner is a Scanner stub that answers immediately.
type Scanner struct {
	Err error
}

func (s Scanner) Scan(ctx context.Context, ip string) (model.ScanResult, error) {
	if s.Err != nil {
		return model.ScanResult{}, s.Err
	}
	return model.ScanResult{Target: model.ScanTarget{IP: ip}, RiskLabel: "Proxy Detected"}, nil
}

// New builds an engine with the error, validation and session
// middleware. Register handlers on Engine and API before sending
// requests.
func New(t *testing.T) *Env {
	return NewWithScanner(t, Scanner{})
}

func NewWithScanner(t *testing.T, scanner scan.Scanner) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	bindOnce.Do(func() {
		require.NoError(t, middleware.RegisterBindingRules(middleware.DefaultValidationConfig()))
	})

	views, err := view.New()
	require.NoError(t, err)

	fake := clock.Fake(Epoch)
	store := session.NewStore(session.DefaultConfig(), fake, scanner, nil)
	t.Cleanup(store.Flush)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Validation(middleware.DefaultValidationConfig()))
	r.Use(store.Middleware())

	return &Env{
		Engine: r,
		API:    r.Group("/api/v1"),
		Pages:  handler.NewPages(views, fake, nil),
		Store:  store,
		Clock:  fake,
	}
}

func (e *Env) do(req *http.Request) *httptest.ResponseRecorder {
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.Engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			e.cookie = c
		}
	}
	return w
}

// Get issues a GET in the env's session.
func (e *Env) Get(target string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, target, nil))
}

// Post submits form values in the env's session.
func (e *Env) Post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

// Session returns the env's session, creating it with a first request
// if needed.
func (e *Env) Session(t *testing.T) *session.Session {
	t.Helper()
	if e.cookie == nil {
		e.Engine.GET("/__session", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		e.Get("/__session")
	}
	require.NotNil(t, e.cookie, "no session cookie issued")
	sess, ok := e.Store.Get(e.cookie.Value)
	require.True(t, ok)
	return sess
}

// Toast returns the session's visible toast.
func (e *Env) Toast(t *testing.T) (toast.Toast, bool) {
	t.Helper()
	return e.Session(t).Toasts.Current()
}
