package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fraudshield/admin-dashboard/config"
	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/handler/casework"
	"github.com/fraudshield/admin-dashboard/internal/handler/detection"
	"github.com/fraudshield/admin-dashboard/internal/handler/fingerprint"
	"github.com/fraudshield/admin-dashboard/internal/handler/health"
	"github.com/fraudshield/admin-dashboard/internal/handler/integration"
	"github.com/fraudshield/admin-dashboard/internal/handler/kyc"
	"github.com/fraudshield/admin-dashboard/internal/handler/overview"
	promhandler "github.com/fraudshield/admin-dashboard/internal/handler/prometheus"
	"github.com/fraudshield/admin-dashboard/internal/handler/user"
	"github.com/fraudshield/admin-dashboard/internal/middleware"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	"github.com/fraudshield/admin-dashboard/internal/router"
	caseworkService "github.com/fraudshield/admin-dashboard/internal/service/casework"
	detectionService "github.com/fraudshield/admin-dashboard/internal/service/detection"
	fingerprintService "github.com/fraudshield/admin-dashboard/internal/service/fingerprint"
	integrationService "github.com/fraudshield/admin-dashboard/internal/service/integration"
	kycService "github.com/fraudshield/admin-dashboard/internal/service/kyc"
	overviewService "github.com/fraudshield/admin-dashboard/internal/service/overview"
	"github.com/fraudshield/admin-dashboard/internal/service/scan"
	userService "github.com/fraudshield/admin-dashboard/internal/service/user"
	"github.com/fraudshield/admin-dashboard/internal/session"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	"github.com/fraudshield/admin-dashboard/internal/worker"
	"github.com/fraudshield/admin-dashboard/pkg/logger"
	"github.com/fraudshield/admin-dashboard/pkg/metrics"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (default: search . ./config /app /app/config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	baseLogger := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.Install(baseLogger)

	if err := middleware.RegisterBindingRules(middleware.DefaultValidationConfig()); err != nil {
		log.Fatal().Err(err).Msg("failed to register validation rules")
	}

	views, err := view.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse page templates")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(cfg.Monitoring.Namespace, registry)
	var httpMetrics *promhandler.Handler
	if cfg.Monitoring.PrometheusEnabled {
		httpMetrics = promhandler.New(cfg.Monitoring.Namespace, registry)
	}

	// Initialize repositories
	clk := clock.Real()
	stores := memory.Seed()

	// Initialize services
	overviewSvc := overviewService.NewService(overviewService.Stores{Orders: stores.Orders, Blog: stores.Blog})
	caseworkSvc := caseworkService.NewService(caseworkService.Stores{
		Cases:       stores.Cases,
		Chargebacks: stores.Chargebacks,
		Warranty:    stores.Warranty,
		Tracking:    stores.Tracking,
	})
	detectionSvc := detectionService.NewService(detectionService.Stores{
		Patterns:   stores.Patterns,
		SOPs:       stores.SOPs,
		AccessLogs: stores.AccessLogs,
		Orders:     stores.Orders,
	}, clk)
	fingerprintSvc := fingerprintService.NewService(fingerprintService.Stores{Orders: stores.Orders, Fingerprints: stores.Fingerprints})
	kycSvc := kycService.NewService(stores.KYC, clk,
		kycService.WithLatency(kycService.Latency{Read: cfg.Mock.KYCReadLatency, Submit: cfg.Mock.KYCSubmitLatency}),
		kycService.WithMetrics(appMetrics),
	)
	userSvc := userService.NewService(stores.Users)
	integrationSvc := integrationService.NewService(integrationService.Stores{
		Connectors:   stores.Connectors,
		Integrations: stores.Integrations,
	}, memory.ConnectorCategories, clk)
	scanSvc := scan.NewService(scan.Config{
		Latency:          cfg.Mock.ScanLatency,
		FailureRate:      cfg.Mock.ScanFailureRate,
		CacheTTL:         cfg.Mock.ScanCacheTTL,
		BreakerThreshold: cfg.Mock.ScanBreakerThreshold,
		BreakerCooldown:  cfg.Mock.ScanBreakerCooldown,
	}, clk, stores.Orders, stores.Fingerprints, scan.WithMetrics(appMetrics))

	sessions := session.NewStore(session.Config{
		TTL:          cfg.Session.TTL,
		CleanupEvery: cfg.Session.CleanupInterval,
		SecureCookie: cfg.Session.SecureCookie,
	}, clk, scanSvc, appMetrics, toast.WithDuration(cfg.Toast.Duration))

	// Initialize handlers
	pages := handler.NewPages(views, clk, appMetrics)
	healthHandler := health.NewHandler(map[string]health.Check{
		"templates": func(context.Context) error {
			if n := len(views.Pages()); n < len(view.Routes()) {
				return fmt.Errorf("only %d of %d page templates loaded", n, len(view.Routes()))
			}
			return nil
		},
		"orders": func(ctx context.Context) error {
			_, err := stores.Orders.List(ctx)
			return err
		},
		"connectors": func(ctx context.Context) error {
			_, err := stores.Connectors.List(ctx)
			return err
		},
	})

	// Setup router
	r := router.NewRouter(sessions, healthHandler, httpMetrics, router.RouterConfig{
		Mode:             cfg.Server.Mode,
		Logger:           baseLogger,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		RequestTimeout:   cfg.Server.RequestTimeout,
		CORSConfig:       corsConfig(cfg),
		SecurityConfig:   securityConfig(cfg),
		SizeLimitConfig:  sizeLimitConfig(cfg),
		ValidationConfig: middleware.DefaultValidationConfig(),
		MetricsPath:      cfg.Monitoring.MetricsPath,
	},
		handler.NewHandler(pages),
		overview.NewHandler(overviewSvc, pages),
		casework.NewHandler(caseworkSvc, pages),
		detection.NewHandler(detectionSvc, pages),
		fingerprint.NewHandler(fingerprintSvc, pages),
		kyc.NewHandler(kycSvc, pages),
		user.NewHandler(userSvc, pages),
		integration.NewHandler(integrationSvc, pages),
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background connector sync
	syncWorker := worker.NewConnectorSyncWorker(integrationSvc, clk, cfg.Mock.ConnectorSync)
	go syncWorker.Start(baseLogger.WithContext(ctx))

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting FraudShield dashboard")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info().Msg("shutting down server...")
	healthHandler.Drain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Cancels pending toast timers and in-flight scans.
	sessions.Flush()

	log.Info().Msg("server exited properly")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		c.AllowOrigins = cfg.Security.AllowedOrigins
	}
	return c
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	c := middleware.DefaultSecurityConfig()
	c.HSTS = cfg.Security.HSTS
	return c
}

func sizeLimitConfig(cfg *config.Config) middleware.SizeLimitConfig {
	c := middleware.DefaultSizeLimitConfig()
	if cfg.Security.MaxBodyBytes > 0 {
		c.MaxBodySize = cfg.Security.MaxBodyBytes
	}
	return c
}
