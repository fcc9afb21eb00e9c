// Package scan runs simulated TCP fingerprint scans against order IPs.
package scan

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
	"github.com/fraudshield/admin-dashboard/pkg/circuitbreaker"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
	"github.com/fraudshield/admin-dashboard/pkg/metrics"
	"github.com/fraudshield/admin-dashboard/pkg/validator"
)

// MsgScanFailed is shown to the user when a scan does not complete.
const MsgScanFailed = "Scan failed. Please try again."

var ErrScanFailed = errors.New("scanner did not respond")

// Scanner is what a session needs to run scans.
type Scanner interface {
	Scan(ctx context.Context, ip string) (model.ScanResult, error)
}

type Config struct {
	Latency     time.Duration
	FailureRate float64
	CacheTTL    time.Duration
	// BreakerThreshold consecutive probe failures stop scans for
	// BreakerCooldown. Zero disables the breaker.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Latency:          2 * time.Second,
		CacheTTL:         10 * time.Minute,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

type Option func(*Service)

// WithRand replaces the failure draw. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(s *Service) { s.rand = fn }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

type Service struct {
	cfg          Config
	clock        clock.Clock
	orders       repository.OrderRepository
	fingerprints repository.FingerprintRepository
	results      *cache.Cache
	validator    validator.Validator
	metrics      *metrics.Metrics
	breaker      *circuitbreaker.CircuitBreaker
	rand         func() float64
}

func NewService(cfg Config, c clock.Clock, orders repository.OrderRepository, fingerprints repository.FingerprintRepository, opts ...Option) *Service {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = cache.NoExpiration
	}
	s := &Service{
		cfg:          cfg,
		clock:        c,
		orders:       orders,
		fingerprints: fingerprints,
		results:      cache.New(ttl, 2*ttl),
		validator:    validator.New(),
		metrics:      metrics.Nop(),
		rand:         rand.Float64,
	}
	s.breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "scanner",
		MaxFailures: cfg.BreakerThreshold,
		Timeout:     cfg.BreakerCooldown,
		Now:         c.Now,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
	})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan fingerprints ip. Repeated scans of one address are served from
// the result cache without the simulated delay.
func (s *Service) Scan(ctx context.Context, ip string) (model.ScanResult, error) {
	if err := s.validator.ValidateField("ip", ip, "required", "ip"); err != nil {
		s.metrics.Scans.WithLabelValues("invalid").Inc()
		return model.ScanResult{}, apperrors.BadRequest("invalid IP address", err)
	}

	if v, ok := s.results.Get(ip); ok {
		s.metrics.ScanCacheHits.Inc()
		return cloneResult(v.(model.ScanResult)), nil
	}

	var target model.ScanTarget
	err := s.breaker.Execute(func() error {
		var err error
		target, err = s.probe(ctx, ip)
		return err
	})
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		s.metrics.Scans.WithLabelValues("rejected").Inc()
		return model.ScanResult{}, apperrors.Unavailable(MsgScanFailed, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.metrics.Scans.WithLabelValues("cancelled").Inc()
		return model.ScanResult{}, err
	case err != nil:
		s.metrics.Scans.WithLabelValues("failed").Inc()
		return model.ScanResult{}, err
	}

	res := fixedResult(target)
	s.results.SetDefault(ip, cloneResult(res))
	s.metrics.Scans.WithLabelValues("ok").Inc()
	return res, nil
}

// probe waits out the simulated latency, then either fails or resolves
// ip.
func (s *Service) probe(ctx context.Context, ip string) (model.ScanTarget, error) {
	if err := clock.Sleep(ctx, s.clock, s.cfg.Latency); err != nil {
		return model.ScanTarget{}, err
	}
	if s.cfg.FailureRate > 0 && s.rand() < s.cfg.FailureRate {
		return model.ScanTarget{}, apperrors.Unavailable(MsgScanFailed, ErrScanFailed)
	}
	target, err := s.lookup(ctx, ip)
	if err != nil {
		return target, apperrors.Unavailable(MsgScanFailed, err)
	}
	return target, nil
}

// lookup builds the network identity of ip from what the dashboard
// already knows about it. No external service is called.
func (s *Service) lookup(ctx context.Context, ip string) (model.ScanTarget, error) {
	target := model.ScanTarget{
		IP:         ip,
		ISP:        "Unknown",
		ASN:        "Unknown",
		Country:    "Unknown",
		City:       "Unknown",
		ReverseDNS: "Unknown",
	}

	orders, err := s.orders.List(ctx)
	if err != nil {
		return target, fmt.Errorf("failed to list orders: %w", err)
	}
	for _, o := range orders {
		if o.IPAddress == ip {
			target.Country = o.ShippingCountry
			break
		}
	}

	prints, err := s.fingerprints.List(ctx)
	if err != nil {
		return target, fmt.Errorf("failed to list fingerprints: %w", err)
	}
	for _, fp := range prints {
		if fp.IP != ip || fp.IPInfo == nil {
			continue
		}
		target.ASN = fp.IPInfo.ASN
		target.ISP = fp.IPInfo.Type
		if target.Country == "Unknown" {
			target.Country = fp.IPInfo.Country
		}
		break
	}
	return target, nil
}

func fixedResult(target model.ScanTarget) model.ScanResult {
	return model.ScanResult{
		Target:         target,
		ProxyDetected:  true,
		ProxyType:      "Residential",
		Confidence:     "High",
		Anomaly:        "TCP TTL mismatch",
		TCPWindowSize:  65280,
		TTL:            64,
		TCPOptions:     []string{"MSS", "SACK", "Timestamps"},
		OSGuess:        "Linux / Android",
		SynDelay:       5,
		KnownSignature: true,
		RiskLabel:      "Proxy Detected",
	}
}

func cloneResult(r model.ScanResult) model.ScanResult {
	r.TCPOptions = append([]string(nil), r.TCPOptions...)
	return r
}
