// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/ratesd/internal/api"
	"github.com/ManuGH/ratesd/internal/config"
	"github.com/ManuGH/ratesd/internal/convert"
	"github.com/ManuGH/ratesd/internal/currency"
	"github.com/ManuGH/ratesd/internal/daemon"
	"github.com/ManuGH/ratesd/internal/health"
	ratesdlog "github.com/ManuGH/ratesd/internal/log"
	"github.com/ManuGH/ratesd/internal/persistence/sqlite"
	"github.com/ManuGH/ratesd/internal/provider"
	"github.com/ManuGH/ratesd/internal/rates"
	"github.com/ManuGH/ratesd/internal/snapshot"
	"github.com/ManuGH/ratesd/internal/telemetry"
	"github.com/ManuGH/ratesd/internal/transactions"
	"github.com/ManuGH/ratesd/internal/version"
)

// maskURL removes user info and query parameters from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	parsedURL.RawQuery = ""
	return parsedURL.String()
}

func main() {
	// Handle command-line flags
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	ratesdlog.Configure(ratesdlog.Config{
		Level:   "info",
		Service: "ratesd",
		Version: version.Version,
	})

	logger := ratesdlog.WithComponent("daemon")

	// Create a context that listens for the interrupt signal from the OS
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Determine config path:
	// - Explicit via --config
	// - Otherwise auto-load ${RATESD_DATA}/config.yaml if it exists
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("RATESD_DATA", config.Defaults().DataDir))
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Re-configure logger with loaded configuration
	ratesdlog.Configure(ratesdlog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})

	if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	serverCfg := config.ParseServerConfig(cfg)

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", serverCfg.ListenAddr).
		Msg("starting ratesd")

	// Log key configuration
	logger.Info().Msgf("→ Provider: %s (auth: %v)", maskURL(cfg.Provider.BaseURL), cfg.Provider.APIKey != "")
	logger.Info().Msgf("→ Base currency: %s", cfg.Provider.BaseCurrency)
	logger.Info().Msgf("→ Currencies: %s", strings.Join(cfg.Currencies, ", "))
	logger.Info().Msgf("→ Cache TTL: %s", cfg.CacheTTL)
	if cfg.Redis.Addr != "" {
		logger.Info().Msgf("→ Cache: redis (%s)", cfg.Redis.Addr)
	} else {
		logger.Info().Msg("→ Cache: in-memory")
	}
	logger.Info().Msgf("→ Snapshot backend: %s", cfg.Snapshot.Backend)
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.datadir_failed").
			Str("path", cfg.DataDir).
			Msg("failed to create data directory")
	}

	// Open the transaction database and run migrations
	db, err := sqlite.Open(cfg.DBPath, sqlite.DefaultConfig())
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.db_open_failed").
			Str("path", cfg.DBPath).
			Msg("failed to open database")
	}
	if err := sqlite.Migrate(ctx, db); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.migrate_failed").
			Msg("failed to run database migrations")
	}

	// Supported currency set
	currencySet, err := currency.NewSet(cfg.Currencies)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.currencies_invalid").
			Msg("invalid currency configuration")
	}

	// Snapshot fallback store
	snapStore, err := snapshot.Open(cfg.Snapshot.Backend, cfg.Snapshot.Path, db)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.snapshot_open_failed").
			Str("backend", cfg.Snapshot.Backend).
			Msg("failed to open snapshot store")
	}

	// Rate cache: Redis when configured, in-memory otherwise
	var cache rates.Cache
	if cfg.Redis.Addr != "" {
		redisCache, redisErr := rates.NewRedisCache(rates.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, ratesdlog.WithComponent("cache"))
		if redisErr != nil {
			logger.Fatal().
				Err(redisErr).
				Str("event", "startup.redis_failed").
				Str("addr", cfg.Redis.Addr).
				Msg("failed to connect to Redis")
		}
		cache = redisCache
	} else {
		cache = rates.NewMemoryCache(cfg.CacheTTL)
	}

	// Upstream provider client
	client := provider.New(cfg.Provider.BaseURL, provider.Options{
		Timeout:              cfg.Provider.Timeout,
		APIKey:               cfg.Provider.APIKey,
		MaxRequestsPerSecond: cfg.Provider.MaxRequestsPerSecond,
	})

	// Services
	rateSvc := rates.NewService(client, cache, snapStore, currencySet, rates.Options{
		BaseCurrency: cfg.Provider.BaseCurrency,
		TTL:          cfg.CacheTTL,
	})
	txnSvc := transactions.NewService(transactions.NewStore(db))
	convertSvc := convert.NewService(rateSvc, txnSvc)

	// Warm the rate cache so the first request does not pay the upstream
	// round trip. Best-effort: fallback layers cover a failed warm-up.
	if err := rateSvc.Warm(ctx); err != nil {
		logger.Warn().
			Err(err).
			Str("event", "startup.warm_failed").
			Msg("initial rate fetch failed, serving from fallback layers")
	}

	// Distributed tracing (noop provider when disabled)
	tracerProvider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "ratesd",
		ServiceVersion: version.Version,
		Environment:    config.ParseString("RATESD_ENV", "production"),
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.tracing_failed").
			Msg("failed to initialize tracing")
	}
	if cfg.Tracing.Enabled {
		logger.Info().Msgf("→ Tracing: %s (%s)", cfg.Tracing.Exporter, cfg.Tracing.Endpoint)
	}

	// Health and readiness
	hm := health.NewManager(version.Version)
	hm.SetStrict(cfg.ReadyStrict)
	hm.RegisterChecker(health.NewDatabaseChecker(db))
	hm.RegisterChecker(health.NewProviderChecker(client.HealthCheck))
	hm.RegisterChecker(health.NewWritableDirChecker("data_dir", cfg.DataDir))

	// HTTP API
	apiServer := api.New(cfg, rateSvc, convertSvc, txnSvc, hm)

	// Hot reload support: watch config file and allow SIGHUP-triggered reload
	var cfgHolder *config.Holder
	if effectiveConfigPath != "" {
		cfgHolder = config.NewHolder(cfg, loader, effectiveConfigPath)
	}

	metricsAddr := ""
	var metricsHandler = promhttp.Handler()
	if !cfg.MetricsEnabled {
		metricsHandler = nil
	} else {
		metricsAddr = strings.TrimSpace(cfg.MetricsAddr)
		if metricsAddr == "" {
			metricsAddr = ":9090"
		}
	}

	deps := daemon.Deps{
		Logger:         logger,
		Config:         cfg,
		APIHandler:     apiServer,
		MetricsHandler: metricsHandler,
		MetricsAddr:    metricsAddr,
	}

	mgr, err := daemon.NewManager(serverCfg, deps)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.creation.failed").
			Msg("failed to create daemon manager")
	}

	// Resource cleanup on shutdown (LIFO: database closes last)
	mgr.RegisterShutdownHook("database", func(context.Context) error {
		return db.Close()
	})
	mgr.RegisterShutdownHook("snapshot_store", func(context.Context) error {
		return snapStore.Close()
	})
	mgr.RegisterShutdownHook("rate_cache", func(context.Context) error {
		if closer, ok := cache.(interface{ Close() error }); ok {
			return closer.Close()
		}
		if stopper, ok := cache.(interface{ Stop() }); ok {
			stopper.Stop()
		}
		return nil
	})
	mgr.RegisterShutdownHook("telemetry", func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	})

	// Start daemon app (blocks until shutdown)
	app := daemon.NewApp(logger, mgr, cfgHolder)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}
