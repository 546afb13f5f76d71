package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/ratesd/internal/log"
	"github.com/ManuGH/ratesd/internal/metrics"
)

// History is the result of a history query: one page of transactions plus
// the count of everything the filter matched.
type History struct {
	UserID       string
	Transactions []Transaction
	Count        int // transactions in this page
	Total        int // transactions matching the filter, before pagination
}

// Service answers per-user history queries and records new transactions.
type Service struct {
	store  *Store
	logger zerolog.Logger
}

// NewService wires the store.
func NewService(store *Store) *Service {
	return &Service{
		store:  store,
		logger: log.WithComponent("transactions"),
	}
}

// Record persists a completed conversion for the given user.
func (s *Service) Record(ctx context.Context, tx *Transaction) error {
	if err := s.store.Insert(ctx, tx); err != nil {
		return err
	}
	s.logger.Debug().
		Str(log.FieldUserID, tx.UserID).
		Str(log.FieldSourceCurrency, tx.SourceCurrency).
		Str(log.FieldTargetCurrency, tx.TargetCurrency).
		Int64("transaction_id", tx.ID).
		Msg("transaction recorded")
	return nil
}

// HistoryByUser returns the user's transactions newest first. A user with
// no transactions at all yields UserNotFoundError, even when the filter
// alone would have matched nothing. Date bounds are normalized to UTC.
func (s *Service) HistoryByUser(ctx context.Context, userID string, f Filter) (*History, error) {
	metrics.RecordHistoryQuery()

	f.From = normalizeUTC(f.From)
	f.To = normalizeUTC(f.To)

	exists, err := s.store.CountByUser(ctx, userID, Filter{})
	if err != nil {
		return nil, fmt.Errorf("transactions: history for %s: %w", userID, err)
	}
	if exists == 0 {
		return nil, &UserNotFoundError{UserID: userID}
	}

	matched, err := s.store.CountByUser(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("transactions: history for %s: %w", userID, err)
	}

	list, err := s.store.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("transactions: history for %s: %w", userID, err)
	}

	return &History{
		UserID:       userID,
		Transactions: list,
		Count:        len(list),
		Total:        matched,
	}, nil
}

func normalizeUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
