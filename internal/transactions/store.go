package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timeLayout is fixed-width so TEXT comparisons and ORDER BY in SQLite
// agree with chronological order (RFC3339Nano trims fractional zeros and
// breaks lexicographic ordering).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Filter narrows history queries. Zero time values disable the bound.
type Filter struct {
	From   time.Time
	To     time.Time
	Limit  int // <= 0 means no limit
	Offset int // <= 0 means no offset
}

// Store persists transactions in SQLite. Decimal columns are TEXT and
// round-trip exactly.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-opened database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert stores tx and populates tx.ID.
func (s *Store) Insert(ctx context.Context, tx *Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (user_id, source_currency, target_currency, source_amount, target_amount, exchange_rate, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID,
		tx.SourceCurrency,
		tx.TargetCurrency,
		tx.SourceAmount.String(),
		tx.TargetAmount.String(),
		tx.ExchangeRate.String(),
		tx.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("transactions: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transactions: last insert id: %w", err)
	}
	tx.ID = id
	return nil
}

// CountByUser counts a user's transactions within the filter's date range.
// Pagination fields are ignored.
func (s *Store) CountByUser(ctx context.Context, userID string, f Filter) (int, error) {
	query, args := buildWhere(userID, f)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("transactions: count: %w", err)
	}
	return count, nil
}

// ListByUser returns a user's transactions newest first, honoring the
// filter's date range and pagination.
func (s *Store) ListByUser(ctx context.Context, userID string, f Filter) ([]Transaction, error) {
	query, args := buildWhere(userID, f)
	query = `SELECT id, user_id, source_currency, target_currency,
	                source_amount, target_amount, exchange_rate, created_at
	         FROM transactions` + query + " ORDER BY created_at DESC, id DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	} else if f.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		query += " LIMIT -1 OFFSET ?"
		args = append(args, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transactions: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transactions: list: %w", err)
	}
	return out, nil
}

func buildWhere(userID string, f Filter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if !f.From.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.From.UTC().Format(timeLayout))
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.To.UTC().Format(timeLayout))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanTransaction(rows *sql.Rows) (Transaction, error) {
	var tx Transaction
	var srcAmount, tgtAmount, rate, created string
	if err := rows.Scan(
		&tx.ID, &tx.UserID, &tx.SourceCurrency, &tx.TargetCurrency,
		&srcAmount, &tgtAmount, &rate, &created,
	); err != nil {
		return Transaction{}, fmt.Errorf("transactions: scan: %w", err)
	}

	var err error
	if tx.SourceAmount, err = decimal.NewFromString(srcAmount); err != nil {
		return Transaction{}, fmt.Errorf("transactions: source amount %q: %w", srcAmount, err)
	}
	if tx.TargetAmount, err = decimal.NewFromString(tgtAmount); err != nil {
		return Transaction{}, fmt.Errorf("transactions: target amount %q: %w", tgtAmount, err)
	}
	if tx.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
		return Transaction{}, fmt.Errorf("transactions: exchange rate %q: %w", rate, err)
	}
	if tx.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return Transaction{}, fmt.Errorf("transactions: created_at %q: %w", created, err)
	}
	return tx, nil
}
