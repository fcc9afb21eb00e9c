package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Page related metrics
	PageRenders  *prometheus.CounterVec
	PageLatency  *prometheus.HistogramVec
	ModalActions *prometheus.CounterVec

	// Notification metrics
	ToastsShown   *prometheus.CounterVec
	ToastsExpired prometheus.Counter

	// Simulated backend metrics
	Scans          *prometheus.CounterVec
	ScanCacheHits  prometheus.Counter
	KYCSubmissions *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates and registers all application metrics on reg. A nil
// registerer creates unregistered collectors, which is what tests use.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PageRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "renders_total",
			Help:      "Total number of rendered dashboard pages",
		}, []string{"page"}),
		PageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "render_duration_seconds",
			Help:      "Time spent loading data and rendering a page",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"page"}),
		ModalActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "modal",
			Name:      "actions_total",
			Help:      "Modal actions by label and result",
		}, []string{"action", "result"}),
		ToastsShown: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toast",
			Name:      "shown_total",
			Help:      "Toasts shown by type",
		}, []string{"type"}),
		ToastsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toast",
			Name:      "expired_total",
			Help:      "Toasts removed by the auto-dismiss timer",
		}),
		Scans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "total",
			Help:      "TCP fingerprint scans by outcome",
		}, []string{"outcome"}),
		ScanCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "cache_hits_total",
			Help:      "Scans answered from the result cache",
		}),
		KYCSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kyc",
			Name:      "submissions_total",
			Help:      "KYC verification submissions by outcome",
		}, []string{"outcome"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Current number of live dashboard sessions",
		}),
	}
}

// Nop returns metrics that are never registered anywhere.
func Nop() *Metrics {
	return NewMetrics("fraudshield", nil)
}
