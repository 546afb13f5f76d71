package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML representation of the daemon configuration.
// All fields are optional; absent fields keep their current value.
type FileConfig struct {
	ListenAddr *string `yaml:"listenAddr,omitempty"`
	DataDir    *string `yaml:"dataDir,omitempty"`
	DBPath     *string `yaml:"dbPath,omitempty"`
	LogLevel   *string `yaml:"logLevel,omitempty"`

	Provider *struct {
		BaseURL              *string  `yaml:"baseURL,omitempty"`
		APIKey               *string  `yaml:"apiKey,omitempty"`
		BaseCurrency         *string  `yaml:"baseCurrency,omitempty"`
		Timeout              *string  `yaml:"timeout,omitempty"`
		MaxRequestsPerSecond *float64 `yaml:"maxRequestsPerSecond,omitempty"`
	} `yaml:"provider,omitempty"`

	CacheTTL *string `yaml:"cacheTTL,omitempty"`

	Redis *struct {
		Addr     *string `yaml:"addr,omitempty"`
		Password *string `yaml:"password,omitempty"`
		DB       *int    `yaml:"db,omitempty"`
	} `yaml:"redis,omitempty"`

	Snapshot *struct {
		Backend *string `yaml:"backend,omitempty"`
		Path    *string `yaml:"path,omitempty"`
	} `yaml:"snapshot,omitempty"`

	Currencies []string `yaml:"currencies,omitempty"`

	MetricsEnabled *bool   `yaml:"metricsEnabled,omitempty"`
	MetricsAddr    *string `yaml:"metricsAddr,omitempty"`

	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`

	RateLimit *struct {
		Enabled      *bool   `yaml:"enabled,omitempty"`
		RequestLimit *int    `yaml:"requestLimit,omitempty"`
		Window       *string `yaml:"window,omitempty"`
	} `yaml:"rateLimit,omitempty"`

	Tracing *struct {
		Enabled      *bool    `yaml:"enabled,omitempty"`
		Exporter     *string  `yaml:"exporter,omitempty"`
		Endpoint     *string  `yaml:"endpoint,omitempty"`
		SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	} `yaml:"tracing,omitempty"`

	ReadyStrict *bool `yaml:"readyStrict,omitempty"`
}

// ReadFile parses a YAML config file. Unknown keys are rejected so typos
// surface at startup instead of silently using defaults.
func ReadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &fc, nil
}

// mergeFile overlays file values onto cfg.
func mergeFile(cfg *AppConfig, fc *FileConfig) error {
	if fc == nil {
		return nil
	}
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.LogLevel, fc.LogLevel)

	if p := fc.Provider; p != nil {
		setString(&cfg.Provider.BaseURL, p.BaseURL)
		setString(&cfg.Provider.APIKey, p.APIKey)
		setString(&cfg.Provider.BaseCurrency, p.BaseCurrency)
		if err := setDuration(&cfg.Provider.Timeout, p.Timeout); err != nil {
			return fmt.Errorf("config: provider.timeout: %w", err)
		}
		if p.MaxRequestsPerSecond != nil {
			cfg.Provider.MaxRequestsPerSecond = *p.MaxRequestsPerSecond
		}
	}

	if err := setDuration(&cfg.CacheTTL, fc.CacheTTL); err != nil {
		return fmt.Errorf("config: cacheTTL: %w", err)
	}

	if r := fc.Redis; r != nil {
		setString(&cfg.Redis.Addr, r.Addr)
		setString(&cfg.Redis.Password, r.Password)
		if r.DB != nil {
			cfg.Redis.DB = *r.DB
		}
	}

	if s := fc.Snapshot; s != nil {
		setString(&cfg.Snapshot.Backend, s.Backend)
		setString(&cfg.Snapshot.Path, s.Path)
	}

	if len(fc.Currencies) > 0 {
		cfg.Currencies = fc.Currencies
	}

	if fc.MetricsEnabled != nil {
		cfg.MetricsEnabled = *fc.MetricsEnabled
	}
	setString(&cfg.MetricsAddr, fc.MetricsAddr)

	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}

	if rl := fc.RateLimit; rl != nil {
		if rl.Enabled != nil {
			cfg.RateLimit.Enabled = *rl.Enabled
		}
		if rl.RequestLimit != nil {
			cfg.RateLimit.RequestLimit = *rl.RequestLimit
		}
		if err := setDuration(&cfg.RateLimit.Window, rl.Window); err != nil {
			return fmt.Errorf("config: rateLimit.window: %w", err)
		}
	}

	if t := fc.Tracing; t != nil {
		if t.Enabled != nil {
			cfg.Tracing.Enabled = *t.Enabled
		}
		setString(&cfg.Tracing.Exporter, t.Exporter)
		setString(&cfg.Tracing.Endpoint, t.Endpoint)
		if t.SamplingRate != nil {
			cfg.Tracing.SamplingRate = *t.SamplingRate
		}
	}

	if fc.ReadyStrict != nil {
		cfg.ReadyStrict = *fc.ReadyStrict
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil || *src == "" {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
