package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuGH/ratesd/internal/currency"
	"github.com/ManuGH/ratesd/internal/log"
	"github.com/ManuGH/ratesd/internal/metrics"
	"github.com/ManuGH/ratesd/internal/telemetry"
)

// ErrNoRates is returned when neither the upstream nor any fallback layer
// can produce rates.
var ErrNoRates = errors.New("rates: no exchange rates available")

// ratePrecision is the number of decimal places a derived rate carries.
const ratePrecision = 9

// Provider fetches latest rates from the upstream API.
type Provider interface {
	Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// SnapshotStore persists snapshots as the last-resort fallback.
// Latest returns (nil, nil) when no snapshot exists for the base currency.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Latest(ctx context.Context, base string) (*Snapshot, error)
}

// Options configures the Service.
type Options struct {
	// BaseCurrency is the base all rates are quoted against.
	BaseCurrency string
	// TTL is the freshness window for cached rates.
	TTL time.Duration
	// Retention is how long stale snapshots stay available for fallback.
	// Defaults to 24h and is never below TTL.
	Retention time.Duration
	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// Service resolves exchange rates with the lookup order
// fresh cache → upstream → stale cache → snapshot store.
type Service struct {
	provider   Provider
	cache      Cache
	store      SnapshotStore
	currencies *currency.Set

	base      string
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewService wires a rate service.
func NewService(p Provider, cache Cache, store SnapshotStore, currencies *currency.Set, opts Options) *Service {
	retention := opts.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if retention < opts.TTL {
		retention = opts.TTL
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		provider:   p,
		cache:      cache,
		store:      store,
		currencies: currencies,
		base:       currency.Normalize(opts.BaseCurrency),
		ttl:        opts.TTL,
		retention:  retention,
		now:        now,
	}
}

// Base returns the configured base currency.
func (s *Service) Base() string { return s.base }

// Rate returns the exchange rate from one currency to another, quantized
// to 9 decimal places. Both codes must be in the supported set.
func (s *Service) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	fromCode, err := s.currencies.Validate(from)
	if err != nil {
		return decimal.Zero, err
	}
	toCode, err := s.currencies.Validate(to)
	if err != nil {
		return decimal.Zero, err
	}

	// Same currency conversion.
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}

	rates, err := s.rates(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	one := decimal.NewFromInt(1)
	var rate decimal.Decimal
	switch {
	case fromCode == s.base:
		r, ok := rates[toCode]
		if !ok {
			return decimal.Zero, &currency.InvalidCurrencyError{Code: toCode}
		}
		rate = r
	case toCode == s.base:
		r, ok := rates[fromCode]
		if !ok {
			return decimal.Zero, &currency.InvalidCurrencyError{Code: fromCode}
		}
		rate = one.DivRound(r, ratePrecision+3)
	default:
		rTo, ok := rates[toCode]
		if !ok {
			return decimal.Zero, &currency.InvalidCurrencyError{Code: toCode}
		}
		rFrom, ok := rates[fromCode]
		if !ok {
			return decimal.Zero, &currency.InvalidCurrencyError{Code: fromCode}
		}
		rate = rTo.DivRound(rFrom, ratePrecision+3)
	}

	return rate.RoundBank(ratePrecision), nil
}

// Warm populates the cache once at startup so the first request does not
// pay the upstream round trip.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.rates(ctx)
	return err
}

// rates returns all rates quoted against the base currency.
func (s *Service) rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	ctx, span := telemetry.Tracer("ratesd.rates").Start(ctx, "rates.resolve")
	defer span.End()

	logger := log.WithComponentFromContext(ctx, "rates")

	cached, found := s.cache.Get(ctx, s.base)
	if found && cached.Age(s.now()) < s.ttl {
		span.SetAttributes(telemetry.RateAttributes(s.base, "cache")...)
		metrics.RecordRateLookup("cache")
		return cached.DecimalRates()
	}

	fetched, err := s.provider.Latest(ctx, s.base)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldBaseCurrency, s.base).Msg("upstream rate fetch failed")
		metrics.RecordRateFetchError()

		// Stale cache beats no data.
		if found {
			logger.Warn().
				Str(log.FieldBaseCurrency, s.base).
				Dur("age", cached.Age(s.now())).
				Msg("using expired cached exchange rates")
			span.SetAttributes(telemetry.RateAttributes(s.base, "stale_cache")...)
			metrics.RecordRateLookup("stale_cache")
			return cached.DecimalRates()
		}

		// Last resort: persisted snapshot.
		if s.store != nil {
			snap, storeErr := s.store.Latest(ctx, s.base)
			if storeErr != nil {
				logger.Error().Err(storeErr).Msg("snapshot store lookup failed")
			} else if snap != nil {
				logger.Warn().
					Str(log.FieldBaseCurrency, s.base).
					Time("fetched_at", snap.FetchedAt).
					Msg("using exchange rates from snapshot store")
				span.SetAttributes(telemetry.RateAttributes(s.base, "snapshot")...)
				metrics.RecordRateLookup("snapshot")
				return snap.DecimalRates()
			}
		}

		span.SetAttributes(telemetry.ErrorAttributes(err, "upstream_unavailable")...)
		return nil, fmt.Errorf("%w: %w", ErrNoRates, err)
	}

	span.SetAttributes(telemetry.RateAttributes(s.base, "upstream")...)
	metrics.RecordRateLookup("upstream")
	snap := NewSnapshot(s.base, fetched, s.now())
	s.cache.Set(ctx, snap, s.retention)

	if s.store != nil {
		saveErr := s.store.Save(ctx, snap)
		metrics.RecordSnapshotSave(saveErr)
		if saveErr != nil {
			// Fallback persistence is best-effort.
			logger.Error().Err(saveErr).Msg("failed to persist rate snapshot")
		}
	}

	return fetched, nil
}
