// Package config loads and validates the daemon configuration with the
// precedence ENV > config file > defaults.
package config

import (
	"time"
)

// ProviderConfig holds upstream exchange-rate API settings.
type ProviderConfig struct {
	// BaseURL is the upstream latest-rates endpoint.
	BaseURL string
	// APIKey authenticates against the upstream API (access_key parameter).
	APIKey string
	// BaseCurrency is the base currency requested from the upstream.
	BaseCurrency string
	// Timeout bounds a single upstream request.
	Timeout time.Duration
	// MaxRequestsPerSecond throttles outbound calls (0 disables throttling).
	MaxRequestsPerSecond float64
}

// RedisConfig holds the optional Redis cache backend settings.
type RedisConfig struct {
	Addr     string // empty disables Redis, falling back to the in-memory cache
	Password string
	DB       int
}

// SnapshotConfig selects the persistent rate-snapshot fallback store.
type SnapshotConfig struct {
	// Backend is one of "sqlite", "badger", "file" or "memory".
	Backend string
	// Path is the backend-specific location (directory for badger,
	// file path for file; ignored for sqlite and memory).
	Path string
}

// RateLimitConfig holds API ingress rate limiting settings.
type RateLimitConfig struct {
	Enabled      bool
	RequestLimit int
	Window       time.Duration
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool
	Exporter     string // "grpc" or "http"
	Endpoint     string
	SamplingRate float64
}

// AppConfig is the complete daemon configuration.
type AppConfig struct {
	ListenAddr string
	DataDir    string
	DBPath     string

	LogLevel   string
	LogService string
	Version    string

	Provider ProviderConfig
	CacheTTL time.Duration
	Redis    RedisConfig
	Snapshot SnapshotConfig

	// Currencies is the supported ISO 4217 code set.
	Currencies []string

	MetricsEnabled bool
	MetricsAddr    string

	AllowedOrigins []string

	RateLimit RateLimitConfig
	Tracing   TracingConfig

	ReadyStrict bool
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr: ":8080",
		DataDir:    "/var/lib/ratesd",
		DBPath:     "", // resolved to <DataDir>/ratesd.db by the loader
		LogLevel:   "info",
		LogService: "ratesd",
		Provider: ProviderConfig{
			BaseURL:              "http://api.exchangeratesapi.io/latest",
			BaseCurrency:         "EUR",
			Timeout:              10 * time.Second,
			MaxRequestsPerSecond: 2,
		},
		CacheTTL: time.Hour,
		Snapshot: SnapshotConfig{Backend: "sqlite"},
		Currencies: []string{
			"USD", "EUR", "GBP", "JPY", "AUD", "CAD",
			"CHF", "CNY", "SEK", "NZD", "BRL",
		},
		MetricsEnabled: true,
		MetricsAddr:    ":9090",
		RateLimit: RateLimitConfig{
			Enabled:      true,
			RequestLimit: 600,
			Window:       time.Minute,
		},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}
