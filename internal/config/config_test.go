package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader("", "1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "EUR", cfg.Provider.BaseCurrency)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "sqlite", cfg.Snapshot.Backend)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Contains(t, cfg.Currencies, "USD")
	// DBPath is derived from the data dir when not set explicitly.
	assert.Equal(t, filepath.Join(cfg.DataDir, "ratesd.db"), cfg.DBPath)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
listenAddr: ":9999"
provider:
  baseCurrency: USD
  timeout: 3s
cacheTTL: 30m
currencies: [USD, EUR, CHF]
rateLimit:
  enabled: false
`)

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "USD", cfg.Provider.BaseCurrency)
	assert.Equal(t, 3*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"USD", "EUR", "CHF"}, cfg.Currencies)
	assert.False(t, cfg.RateLimit.Enabled)
	// Untouched fields keep their defaults.
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `listenAddr: ":9999"`)
	t.Setenv("RATESD_LISTEN", ":7777")
	t.Setenv("RATESD_CACHE_TTL", "15m")
	t.Setenv("RATESD_CURRENCIES", "EUR, USD ,GBP")

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.ListenAddr)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"EUR", "USD", "GBP"}, cfg.Currencies)
}

func TestLoader_RejectsUnknownKeys(t *testing.T) {
	path := writeConfigFile(t, `listenAdr: ":9999"`)

	_, err := NewLoader(path, "test").Load()
	assert.Error(t, err)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"), "test").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(*AppConfig) {}},
		{
			name:    "no currencies",
			mutate:  func(c *AppConfig) { c.Currencies = nil },
			wantErr: ErrNoCurrencies,
		},
		{
			name:   "unknown currency code",
			mutate: func(c *AppConfig) { c.Currencies = []string{"EUR", "XQZ"} },
		},
		{
			name:    "base not in supported set",
			mutate:  func(c *AppConfig) { c.Provider.BaseCurrency = "ZAR" },
			wantErr: ErrBaseNotSupported,
		},
		{
			name:    "invalid provider URL",
			mutate:  func(c *AppConfig) { c.Provider.BaseURL = "not a url" },
			wantErr: ErrInvalidProviderURL,
		},
		{
			name:   "non-positive cache TTL",
			mutate: func(c *AppConfig) { c.CacheTTL = 0 },
		},
		{
			name:   "unknown snapshot backend",
			mutate: func(c *AppConfig) { c.Snapshot.Backend = "etcd" },
		},
		{
			name: "badger without path",
			mutate: func(c *AppConfig) {
				c.Snapshot.Backend = "badger"
				c.Snapshot.Path = ""
				c.DataDir = ""
			},
		},
		{
			name: "invalid tracing exporter",
			mutate: func(c *AppConfig) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "udp"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.name == "defaults are valid" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	assert.Equal(t, "value", ParseString("TEST_STR", "default"))
	assert.Equal(t, "default", ParseString("TEST_STR_UNSET", "default"))

	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")
	assert.Equal(t, 42, ParseInt("TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("TEST_INT_BAD", 1))

	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BOOL_BAD", "yep")
	assert.True(t, ParseBool("TEST_BOOL", false))
	assert.False(t, ParseBool("TEST_BOOL_BAD", false))

	t.Setenv("TEST_DUR", "90s")
	t.Setenv("TEST_DUR_BAD", "soon")
	assert.Equal(t, 90*time.Second, ParseDuration("TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("TEST_DUR_BAD", time.Minute))

	t.Setenv("TEST_FLOAT", "2.5")
	assert.InDelta(t, 2.5, ParseFloat("TEST_FLOAT", 1.0), 0.0001)

	t.Setenv("TEST_SLICE", "a, b ,,c")
	assert.Equal(t, []string{"a", "b", "c"}, ParseStringSlice("TEST_SLICE", nil))
	assert.Equal(t, []string{"x"}, ParseStringSlice("TEST_SLICE_UNSET", []string{"x"}))
}

func TestParseServerConfig(t *testing.T) {
	cfg := Defaults()
	sc := ParseServerConfig(cfg)
	assert.Equal(t, cfg.ListenAddr, sc.ListenAddr)
	assert.Equal(t, defaultReadTimeout, sc.ReadTimeout)
	assert.Equal(t, defaultShutdownTimeout, sc.ShutdownTimeout)

	t.Setenv("RATESD_LISTEN", ":4444")
	t.Setenv("RATESD_SERVER_SHUTDOWN_TIMEOUT", "1s")
	sc = ParseServerConfig(cfg)
	assert.Equal(t, ":4444", sc.ListenAddr)
	// Shutdown timeout is floored so in-flight requests get a chance.
	assert.Equal(t, 3*time.Second, sc.ShutdownTimeout)
}

func TestHolder_Reload(t *testing.T) {
	path := writeConfigFile(t, `listenAddr: ":9999"`)
	loader := NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	holder := NewHolder(cfg, loader, path)
	assert.Equal(t, ":9999", holder.Current().ListenAddr)

	var reloaded AppConfig
	holder.OnReload(func(c AppConfig) { reloaded = c })

	require.NoError(t, os.WriteFile(path, []byte(`listenAddr: ":8888"`), 0o600))
	require.NoError(t, holder.Reload(context.Background()))
	assert.Equal(t, ":8888", holder.Current().ListenAddr)
	assert.Equal(t, ":8888", reloaded.ListenAddr)
}

func TestHolder_FailedReloadKeepsPrevious(t *testing.T) {
	path := writeConfigFile(t, `listenAddr: ":9999"`)
	loader := NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	holder := NewHolder(cfg, loader, path)
	require.NoError(t, os.WriteFile(path, []byte(`currencies: [NOPE]`), 0o600))

	assert.Error(t, holder.Reload(context.Background()))
	assert.Equal(t, ":9999", holder.Current().ListenAddr)
}
