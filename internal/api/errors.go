// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/ratesd/internal/convert"
	"github.com/ManuGH/ratesd/internal/currency"
	"github.com/ManuGH/ratesd/internal/log"
	"github.com/ManuGH/ratesd/internal/provider"
	"github.com/ManuGH/ratesd/internal/rates"
	"github.com/ManuGH/ratesd/internal/transactions"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeBadRequest writes a 400 response with the given message
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeDomainError maps domain errors to HTTP status codes:
// invalid input yields 400, unknown users 404, rate unavailability 503.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, currency.ErrInvalidCurrency),
		errors.Is(err, convert.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, transactions.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})

	case errors.Is(err, rates.ErrNoRates),
		errors.Is(err, provider.ErrUnavailable),
		errors.Is(err, provider.ErrUpstream),
		errors.Is(err, provider.ErrBadResponse),
		errors.Is(err, provider.ErrTimeout),
		errors.Is(err, provider.ErrThrottled):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "exchange rates are currently unavailable",
		})

	default:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(log.FieldPath, r.URL.Path).Msg("unhandled error in HTTP handler")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}
