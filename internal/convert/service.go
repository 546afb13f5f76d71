// Package convert performs currency conversions and records them as
// transactions.
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ManuGH/ratesd/internal/currency"
	"github.com/ManuGH/ratesd/internal/log"
	"github.com/ManuGH/ratesd/internal/metrics"
	"github.com/ManuGH/ratesd/internal/rates"
	"github.com/ManuGH/ratesd/internal/telemetry"
	"github.com/ManuGH/ratesd/internal/transactions"
)

// ErrInvalidAmount is the sentinel for non-positive conversion amounts.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// InvalidAmountError carries the offending amount for API error mapping.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: must be greater than zero", e.Amount)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// amountPrecision is the number of decimal places monetary results carry.
const amountPrecision = 2

// Request is one conversion to perform.
type Request struct {
	UserID string
	From   string
	To     string
	Amount decimal.Decimal
}

// Result is a completed conversion.
type Result struct {
	TransactionID  int64
	UserID         string
	SourceCurrency string
	TargetCurrency string
	SourceAmount   decimal.Decimal
	TargetAmount   decimal.Decimal
	ExchangeRate   decimal.Decimal
	CreatedAt      time.Time
}

// Service converts amounts between currencies using the rate service and
// records each conversion.
type Service struct {
	rates  *rates.Service
	txns   *transactions.Service
	logger zerolog.Logger
	now    func() time.Time
}

// NewService wires the rate and transaction services.
func NewService(r *rates.Service, txns *transactions.Service) *Service {
	return &Service{
		rates:  r,
		txns:   txns,
		logger: log.WithComponent("convert"),
		now:    time.Now,
	}
}

// Convert validates the request, resolves the exchange rate, and records
// the transaction. Rate and converted amount are quantized to 2 decimal
// places with banker's rounding.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	ctx, span := telemetry.Tracer("ratesd.convert").Start(ctx, "convert")
	defer span.End()

	start := s.now()

	if !req.Amount.IsPositive() {
		return nil, &InvalidAmountError{Amount: req.Amount}
	}

	rate, err := s.rates.Rate(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}

	rate = rate.RoundBank(amountPrecision)
	target := req.Amount.Mul(rate).RoundBank(amountPrecision)

	tx := &transactions.Transaction{
		UserID:         req.UserID,
		SourceCurrency: currency.Normalize(req.From),
		TargetCurrency: currency.Normalize(req.To),
		SourceAmount:   req.Amount,
		TargetAmount:   target,
		ExchangeRate:   rate,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.txns.Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("convert: record transaction: %w", err)
	}

	span.SetAttributes(telemetry.ConversionAttributes(
		tx.SourceCurrency, tx.TargetCurrency,
		tx.SourceAmount.String(), tx.ExchangeRate.String(),
	)...)

	// Runtime provider lookup keeps the counter bound to whatever meter
	// provider is installed, noop included.
	meter := telemetry.Meter("ratesd.convert")
	conversions, _ := meter.Int64Counter("ratesd_conversions_total",
		metric.WithDescription("Total currency conversions"))
	conversions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(telemetry.SourceCurrencyKey, tx.SourceCurrency),
		attribute.String(telemetry.TargetCurrencyKey, tx.TargetCurrency),
	))

	metrics.RecordConversion(tx.SourceCurrency, tx.TargetCurrency, s.now().Sub(start))
	s.logger.Info().
		Str(log.FieldUserID, tx.UserID).
		Str(log.FieldSourceCurrency, tx.SourceCurrency).
		Str(log.FieldTargetCurrency, tx.TargetCurrency).
		Str(log.FieldAmount, tx.SourceAmount.String()).
		Str(log.FieldRate, tx.ExchangeRate.String()).
		Msg("conversion completed")

	return &Result{
		TransactionID:  tx.ID,
		UserID:         tx.UserID,
		SourceCurrency: tx.SourceCurrency,
		TargetCurrency: tx.TargetCurrency,
		SourceAmount:   tx.SourceAmount,
		TargetAmount:   tx.TargetAmount,
		ExchangeRate:   tx.ExchangeRate,
		CreatedAt:      tx.CreatedAt,
	}, nil
}
