// Package currency validates ISO 4217 currency codes against the
// configured supported set.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// ErrInvalidCurrency is the sentinel for unsupported or malformed codes.
var ErrInvalidCurrency = errors.New("invalid currency code")

// InvalidCurrencyError carries the offending code for API error mapping.
type InvalidCurrencyError struct {
	Code string
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("invalid currency code: %s", e.Code)
}

func (e *InvalidCurrencyError) Unwrap() error { return ErrInvalidCurrency }

// Set is an immutable set of supported currency codes.
type Set struct {
	codes map[string]struct{}
}

// NewSet builds a supported-currency set. Codes that are not valid
// ISO 4217 are rejected so configuration mistakes surface early.
func NewSet(codes []string) (*Set, error) {
	s := &Set{codes: make(map[string]struct{}, len(codes))}
	for _, raw := range codes {
		code := Normalize(raw)
		if _, err := currency.ParseISO(code); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCurrency, raw)
		}
		s.codes[code] = struct{}{}
	}
	return s, nil
}

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Contains reports whether code is in the supported set.
func (s *Set) Contains(code string) bool {
	_, ok := s.codes[Normalize(code)]
	return ok
}

// Validate normalizes code and returns it, or an *InvalidCurrencyError if
// it is not a supported ISO 4217 code.
func (s *Set) Validate(code string) (string, error) {
	norm := Normalize(code)
	if _, err := currency.ParseISO(norm); err != nil {
		return "", &InvalidCurrencyError{Code: code}
	}
	if _, ok := s.codes[norm]; !ok {
		return "", &InvalidCurrencyError{Code: code}
	}
	return norm, nil
}

// Codes returns the supported codes in unspecified order.
func (s *Set) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for code := range s.codes {
		out = append(out, code)
	}
	return out
}
