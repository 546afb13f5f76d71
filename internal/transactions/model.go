// Package transactions records conversions and serves per-user history.
package transactions

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUserNotFound is the sentinel for users without any transactions.
var ErrUserNotFound = errors.New("user not found")

// UserNotFoundError carries the user ID for API error mapping.
type UserNotFoundError struct {
	UserID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

func (e *UserNotFoundError) Unwrap() error { return ErrUserNotFound }

// Transaction is one recorded currency conversion.
type Transaction struct {
	ID             int64
	UserID         string
	SourceCurrency string
	TargetCurrency string
	SourceAmount   decimal.Decimal
	TargetAmount   decimal.Decimal
	ExchangeRate   decimal.Decimal
	CreatedAt      time.Time
}
