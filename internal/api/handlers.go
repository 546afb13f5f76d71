// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ManuGH/ratesd/internal/convert"
	"github.com/ManuGH/ratesd/internal/log"
	"github.com/ManuGH/ratesd/internal/transactions"
)

type rateResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeBadRequest(w, "query parameters 'from' and 'to' are required")
		return
	}

	rate, err := s.rates.Rate(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rateResponse{
		From: from,
		To:   to,
		Rate: rate.String(),
	})
}

type convertRequest struct {
	UserID string          `json:"user_id"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type convertResponse struct {
	TransactionID int64  `json:"transaction_id"`
	UserID        string `json:"user_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	Amount        string `json:"amount"`
	Converted     string `json:"converted_amount"`
	ExchangeRate  string `json:"exchange_rate"`
	Timestamp     string `json:"timestamp"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	s.doConvert(w, r, req)
}

// handleConvertQuery is the query-parameter variant of conversion for
// clients that cannot send a JSON body.
func (s *Server) handleConvertQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amountStr := q.Get("amount")
	if amountStr == "" {
		writeBadRequest(w, "query parameter 'amount' is required")
		return
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		writeBadRequest(w, "invalid amount: "+amountStr)
		return
	}

	s.doConvert(w, r, convertRequest{
		UserID: q.Get("user_id"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Amount: amount,
	})
}

func (s *Server) doConvert(w http.ResponseWriter, r *http.Request, req convertRequest) {
	if req.UserID == "" {
		writeBadRequest(w, "'user_id' is required")
		return
	}
	if req.From == "" || req.To == "" {
		writeBadRequest(w, "'from' and 'to' are required")
		return
	}

	result, err := s.converter.Convert(r.Context(), convert.Request{
		UserID: req.UserID,
		From:   req.From,
		To:     req.To,
		Amount: req.Amount,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		TransactionID: result.TransactionID,
		UserID:        result.UserID,
		From:          result.SourceCurrency,
		To:            result.TargetCurrency,
		Amount:        result.SourceAmount.String(),
		Converted:     result.TargetAmount.String(),
		ExchangeRate:  result.ExchangeRate.String(),
		Timestamp:     result.CreatedAt.UTC().Format(time.RFC3339),
	})
}

type transactionResponse struct {
	ID           int64  `json:"id"`
	From         string `json:"from"`
	To           string `json:"to"`
	Amount       string `json:"amount"`
	Converted    string `json:"converted_amount"`
	ExchangeRate string `json:"exchange_rate"`
	Timestamp    string `json:"timestamp"`
}

type historyResponse struct {
	UserID       string                `json:"user_id"`
	Count        int                   `json:"count"`
	Total        int                   `json:"total"`
	Transactions []transactionResponse `json:"transactions"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeBadRequest(w, "user ID is required")
		return
	}

	filter, err := parseHistoryFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	history, err := s.txns.HistoryByUser(r.Context(), userID, filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := historyResponse{
		UserID:       history.UserID,
		Count:        history.Count,
		Total:        history.Total,
		Transactions: make([]transactionResponse, 0, len(history.Transactions)),
	}
	for _, tx := range history.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			ID:           tx.ID,
			From:         tx.SourceCurrency,
			To:           tx.TargetCurrency,
			Amount:       tx.SourceAmount.String(),
			Converted:    tx.TargetAmount.String(),
			ExchangeRate: tx.ExchangeRate.String(),
			Timestamp:    tx.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Debug().
		Str(log.FieldUserID, userID).
		Int("count", history.Count).
		Int("total", history.Total).
		Msg("transaction history served")

	writeJSON(w, http.StatusOK, resp)
}

// maxHistoryLimit caps page sizes to keep responses bounded.
const maxHistoryLimit = 1000

func parseHistoryFilter(r *http.Request) (transactions.Filter, error) {
	q := r.URL.Query()
	var f transactions.Filter

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errInvalidParam("limit", v)
		}
		f.Limit = n
	}
	if f.Limit == 0 || f.Limit > maxHistoryLimit {
		f.Limit = maxHistoryLimit
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errInvalidParam("offset", v)
		}
		f.Offset = n
	}

	if v := q.Get("from"); v != "" {
		t, err := parseDate(v, false)
		if err != nil {
			return f, errInvalidParam("from", v)
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDate(v, true)
		if err != nil {
			return f, errInvalidParam("to", v)
		}
		f.To = t
	}

	return f, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain date used
// as an upper bound covers the whole day.
func parseDate(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid value for '" + e.name + "': " + e.value
}

func errInvalidParam(name, value string) error {
	return &paramError{name: name, value: value}
}
