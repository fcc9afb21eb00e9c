package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/fraudshield/admin-dashboard/internal/handler/health"
	"github.com/fraudshield/admin-dashboard/internal/handler/prometheus"
	"github.com/fraudshield/admin-dashboard/internal/middleware"
	"github.com/fraudshield/admin-dashboard/internal/session"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
)

// Handler registers page routes on the page group and JSON routes on
// /api/v1.
type Handler interface {
	RegisterRoutes(pages gin.IRoutes, api *gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	sessions *session.Store
	health   *health.Handler
	metrics  *prometheus.Handler
	handlers []Handler
	config   RouterConfig
}

type RouterConfig struct {
	Mode             string
	Logger           zerolog.Logger
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	CORSConfig       middleware.CORSConfig
	SecurityConfig   middleware.SecurityConfig
	SizeLimitConfig  middleware.SizeLimitConfig
	ValidationConfig middleware.ValidationConfig
	MetricsPath      string
}

func NewRouter(
	sessions *session.Store,
	healthH *health.Handler,
	metrics *prometheus.Handler,
	config RouterConfig,
	handlers ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	if config.SizeLimitConfig.MaxBodySize <= 0 {
		config.SizeLimitConfig = middleware.DefaultSizeLimitConfig()
	}
	if config.SecurityConfig.FrameOptions == "" {
		config.SecurityConfig = middleware.DefaultSecurityConfig()
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		sessions: sessions,
		health:   healthH,
		metrics:  metrics,
		handlers: handlers,
		config:   config,
	}

	// Add core middlewares. Recovery is outermost so a panic anywhere
	// below still gets a response and a log line.
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(config.Logger),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(
		middleware.ErrorHandler(),
		middleware.Validation(config.ValidationConfig),
		middleware.SecurityHeaders(config.SecurityConfig),
		middleware.SizeLimit(config.SizeLimitConfig),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.Group("", middleware.Cache(middleware.StaticCacheConfig())).StaticFS("/static", view.Static())
	r.engine.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if r.metrics != nil {
		path := r.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, r.metrics.Handler())
	}

	// Health checks skip the session so probes do not mint cookies.
	if r.health != nil {
		r.health.RegisterRoutes(r.engine.Group("/api/v1"))
	}

	pages := r.engine.Group("")
	pages.Use(
		middleware.Cache(middleware.PageCacheConfig()),
		r.sessions.Middleware(),
		middleware.Audit(),
	)

	api := r.engine.Group("/api/v1")
	api.Use(
		middleware.CORS(r.config.CORSConfig),
		middleware.Version(middleware.DefaultVersionConfig()),
		middleware.Cache(middleware.PageCacheConfig()),
		r.sessions.Middleware(),
	)

	for _, h := range r.handlers {
		h.RegisterRoutes(pages, api)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "page not found",
			TraceID: c.GetString(middleware.ContextRequestID),
		})
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
