// Package rates resolves exchange rates through a cache, the upstream
// provider and a persistent snapshot fallback.
package rates

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a full set of rates for one base currency at one instant.
// Rates are kept as decimal strings so serialization (cache, stores) never
// loses precision.
type Snapshot struct {
	Base      string            `json:"base"`
	Rates     map[string]string `json:"rates"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// NewSnapshot builds a snapshot from decimal rates.
func NewSnapshot(base string, rates map[string]decimal.Decimal, fetchedAt time.Time) *Snapshot {
	out := &Snapshot{
		Base:      base,
		Rates:     make(map[string]string, len(rates)),
		FetchedAt: fetchedAt.UTC(),
	}
	for code, d := range rates {
		out.Rates[code] = d.String()
	}
	return out
}

// DecimalRates converts the stored strings back to decimals.
func (s *Snapshot) DecimalRates() (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(s.Rates))
	for code, str := range s.Rates {
		d, err := decimal.NewFromString(str)
		if err != nil {
			return nil, fmt.Errorf("rates: snapshot rate %s=%q: %w", code, str, err)
		}
		out[code] = d
	}
	return out, nil
}

// Age returns how old the snapshot is.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
