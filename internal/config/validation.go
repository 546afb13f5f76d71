package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/currency"
)

// Validation errors surfaced at startup.
var (
	ErrNoCurrencies       = errors.New("config: no supported currencies configured")
	ErrBaseNotSupported   = errors.New("config: base currency is not in the supported set")
	ErrInvalidProviderURL = errors.New("config: invalid provider URL")
)

// Validate checks the resolved configuration for fail-fast startup errors.
func Validate(cfg AppConfig) error {
	if len(cfg.Currencies) == 0 {
		return ErrNoCurrencies
	}

	for _, code := range cfg.Currencies {
		if _, err := currency.ParseISO(code); err != nil {
			return fmt.Errorf("config: unknown ISO 4217 currency %q: %w", code, err)
		}
	}

	base := strings.ToUpper(strings.TrimSpace(cfg.Provider.BaseCurrency))
	found := false
	for _, code := range cfg.Currencies {
		if strings.EqualFold(code, base) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrBaseNotSupported, cfg.Provider.BaseCurrency)
	}

	u, err := url.Parse(cfg.Provider.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidProviderURL, cfg.Provider.BaseURL)
	}

	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("config: cache TTL must be positive, got %s", cfg.CacheTTL)
	}

	switch cfg.Snapshot.Backend {
	case "sqlite", "memory":
	case "badger", "file":
		if cfg.Snapshot.Path == "" && cfg.DataDir == "" {
			return fmt.Errorf("config: snapshot backend %q requires a path", cfg.Snapshot.Backend)
		}
	default:
		return fmt.Errorf("config: unknown snapshot backend %q", cfg.Snapshot.Backend)
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Exporter {
		case "grpc", "http":
		default:
			return fmt.Errorf("config: unsupported tracing exporter %q (supported: grpc, http)", cfg.Tracing.Exporter)
		}
	}

	return nil
}
