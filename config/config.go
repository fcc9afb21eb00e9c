package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// FRAUDSHIELD_SERVER_PORT.
const EnvPrefix = "FRAUDSHIELD"

type ServerConfig struct {
	Port            int           `mapstructure:"port" envconfig:"port"`
	Mode            string        `mapstructure:"mode" envconfig:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" envconfig:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" envconfig:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" envconfig:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" envconfig:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"level"`
	Pretty bool   `mapstructure:"pretty" envconfig:"pretty"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl" envconfig:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" envconfig:"cleanup_interval"`
	SecureCookie    bool          `mapstructure:"secure_cookie" envconfig:"secure_cookie"`
}

type ToastConfig struct {
	Duration time.Duration `mapstructure:"duration" envconfig:"duration"`
}

// MockConfig tunes the simulated backends.
type MockConfig struct {
	KYCReadLatency       time.Duration `mapstructure:"kyc_read_latency" envconfig:"kyc_read_latency"`
	KYCSubmitLatency     time.Duration `mapstructure:"kyc_submit_latency" envconfig:"kyc_submit_latency"`
	ScanLatency          time.Duration `mapstructure:"scan_latency" envconfig:"scan_latency"`
	ScanFailureRate      float64       `mapstructure:"scan_failure_rate" envconfig:"scan_failure_rate"`
	ScanCacheTTL         time.Duration `mapstructure:"scan_cache_ttl" envconfig:"scan_cache_ttl"`
	ScanBreakerThreshold int           `mapstructure:"scan_breaker_threshold" envconfig:"scan_breaker_threshold"`
	ScanBreakerCooldown  time.Duration `mapstructure:"scan_breaker_cooldown" envconfig:"scan_breaker_cooldown"`
	// ConnectorSync re-syncs connected integrations in the background;
	// zero disables it.
	ConnectorSync time.Duration `mapstructure:"connector_sync" envconfig:"connector_sync"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"requests_per_second"`
	Burst             int     `mapstructure:"burst" envconfig:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" envconfig:"allowed_origins"`
	HSTS           bool     `mapstructure:"hsts" envconfig:"hsts"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes" envconfig:"max_body_bytes"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled" envconfig:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path" envconfig:"metrics_path"`
	Namespace         string `mapstructure:"namespace" envconfig:"namespace"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server" envconfig:"server"`
	Log        LogConfig        `mapstructure:"log" envconfig:"log"`
	Session    SessionConfig    `mapstructure:"session" envconfig:"session"`
	Toast      ToastConfig      `mapstructure:"toast" envconfig:"toast"`
	Mock       MockConfig       `mapstructure:"mock" envconfig:"mock"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" envconfig:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security" envconfig:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" envconfig:"monitoring"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.cleanup_interval", "5m")
	v.SetDefault("session.secure_cookie", false)

	v.SetDefault("toast.duration", "3s")

	v.SetDefault("mock.kyc_read_latency", "500ms")
	v.SetDefault("mock.kyc_submit_latency", "1s")
	v.SetDefault("mock.scan_latency", "2s")
	v.SetDefault("mock.scan_failure_rate", 0.0)
	v.SetDefault("mock.scan_cache_ttl", "10m")
	v.SetDefault("mock.scan_breaker_threshold", 5)
	v.SetDefault("mock.scan_breaker_cooldown", "30s")
	v.SetDefault("mock.connector_sync", "15m")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("security.allowed_origins", []string{"http://localhost:8080"})
	v.SetDefault("security.hsts", false)
	v.SetDefault("security.max_body_bytes", 64<<10)

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.namespace", "fraudshield")
}

// Load reads configuration in three layers: built-in defaults, then an
// optional config.yml, then FRAUDSHIELD_* environment variables. An
// explicit file that cannot be read is an error; a missing file found
// by search is not.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")           // current directory
		v.AddConfigPath("./config")    // config subdirectory
		v.AddConfigPath("/app")        // container root directory
		v.AddConfigPath("/app/config") // container config directory
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("server.mode %q must be debug, release or test", c.Server.Mode))
	}
	if c.Toast.Duration <= 0 {
		problems = append(problems, "toast.duration must be positive")
	}
	if c.Mock.ScanBreakerThreshold < 0 {
		problems = append(problems, "mock.scan_breaker_threshold must not be negative")
	}
	if c.Mock.ConnectorSync < 0 {
		problems = append(problems, "mock.connector_sync must not be negative")
	}
	if c.Mock.ScanFailureRate < 0 || c.Mock.ScanFailureRate > 1 {
		problems = append(problems, "mock.scan_failure_rate must be within [0, 1]")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit needs positive requests_per_second and burst")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
