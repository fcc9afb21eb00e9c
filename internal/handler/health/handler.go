package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Check reports whether one dependency can serve traffic.
type Check func(ctx context.Context) error

type Handler struct {
	checks   map[string]Check
	timeout  time.Duration
	draining atomic.Bool
}

func NewHandler(checks map[string]Check) *Handler {
	return &Handler{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

// Drain makes readiness fail so a load balancer stops sending traffic
// before shutdown.
func (h *Handler) Drain() {
	h.draining.Store(true)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.draining.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": "Server is shutting down",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		check := h.checks[name]
		g.Go(func() error {
			if err := check(gctx); err != nil {
				results[i] = "DOWN"
				return err
			}
			results[i] = "UP"
			return nil
		})
	}
	err := g.Wait()

	status := make(gin.H, len(names))
	for i, name := range names {
		if results[i] == "" {
			results[i] = "UNKNOWN"
		}
		status[name] = results[i]
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": err.Error(),
			"checks": status,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP", "checks": status})
}
