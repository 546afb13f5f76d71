package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader resolves the effective configuration with the precedence
// ENV > config file > defaults.
type Loader struct {
	path    string // optional YAML config file
	version string
}

// NewLoader creates a loader for the given config file path. An empty path
// skips the file layer.
func NewLoader(path, version string) *Loader {
	return &Loader{path: path, version: version}
}

// Load resolves and validates the configuration.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.path != "" {
		if _, err := os.Stat(l.path); err == nil {
			fc, err := ReadFile(l.path)
			if err != nil {
				return AppConfig{}, err
			}
			if err := mergeFile(&cfg, fc); err != nil {
				return AppConfig{}, err
			}
		} else if !os.IsNotExist(err) {
			return AppConfig{}, fmt.Errorf("config: stat %s: %w", l.path, err)
		}
	}

	mergeEnv(&cfg)

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "ratesd.db")
	}

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// mergeEnv overlays environment variables onto cfg. ENV always wins.
func mergeEnv(cfg *AppConfig) {
	cfg.ListenAddr = ParseString("RATESD_LISTEN", cfg.ListenAddr)
	cfg.DataDir = ParseString("RATESD_DATA", cfg.DataDir)
	cfg.DBPath = ParseString("RATESD_DB_PATH", cfg.DBPath)
	cfg.LogLevel = ParseString("RATESD_LOG_LEVEL", cfg.LogLevel)

	cfg.Provider.BaseURL = ParseString("RATESD_PROVIDER_URL", cfg.Provider.BaseURL)
	cfg.Provider.APIKey = ParseString("RATESD_PROVIDER_API_KEY", cfg.Provider.APIKey)
	cfg.Provider.BaseCurrency = ParseString("RATESD_BASE_CURRENCY", cfg.Provider.BaseCurrency)
	cfg.Provider.Timeout = ParseDuration("RATESD_PROVIDER_TIMEOUT", cfg.Provider.Timeout)
	cfg.Provider.MaxRequestsPerSecond = ParseFloat("RATESD_PROVIDER_MAX_RPS", cfg.Provider.MaxRequestsPerSecond)

	cfg.CacheTTL = ParseDuration("RATESD_CACHE_TTL", cfg.CacheTTL)

	cfg.Redis.Addr = ParseString("RATESD_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = ParseString("RATESD_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = ParseInt("RATESD_REDIS_DB", cfg.Redis.DB)

	cfg.Snapshot.Backend = ParseString("RATESD_SNAPSHOT_BACKEND", cfg.Snapshot.Backend)
	cfg.Snapshot.Path = ParseString("RATESD_SNAPSHOT_PATH", cfg.Snapshot.Path)

	cfg.Currencies = ParseStringSlice("RATESD_CURRENCIES", cfg.Currencies)

	cfg.MetricsEnabled = ParseBool("RATESD_METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MetricsAddr = ParseString("RATESD_METRICS_LISTEN", cfg.MetricsAddr)

	cfg.AllowedOrigins = ParseStringSlice("RATESD_ALLOWED_ORIGINS", cfg.AllowedOrigins)

	cfg.RateLimit.Enabled = ParseBool("RATESD_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestLimit = ParseInt("RATESD_RATE_LIMIT_REQUESTS", cfg.RateLimit.RequestLimit)
	cfg.RateLimit.Window = ParseDuration("RATESD_RATE_LIMIT_WINDOW", cfg.RateLimit.Window)

	cfg.Tracing.Enabled = ParseBool("RATESD_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = ParseString("RATESD_TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = ParseString("RATESD_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = ParseFloat("RATESD_TRACING_SAMPLING_RATE", cfg.Tracing.SamplingRate)

	cfg.ReadyStrict = ParseBool("RATESD_READY_STRICT", cfg.ReadyStrict)
}
