package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/ratesd/internal/rates"
)

// timeLayout is fixed-width so ORDER BY on the TEXT column agrees with
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore persists snapshots in the rate_snapshots table of the shared
// SQLite database.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an already-opened database handle. Close is a no-op;
// the handle is owned by the daemon.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, snap *rates.Snapshot) error {
	blob, err := json.Marshal(snap.Rates)
	if err != nil {
		return fmt.Errorf("snapshot: marshal rates: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rate_snapshots (base_currency, rates, fetched_at) VALUES (?, ?, ?)`,
		snap.Base, string(blob), snap.FetchedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("snapshot: insert: %w", err)
	}
	return nil
}

func (s *SQLStore) Latest(ctx context.Context, base string) (*rates.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT rates, fetched_at FROM rate_snapshots
		 WHERE base_currency = ?
		 ORDER BY fetched_at DESC, id DESC
		 LIMIT 1`,
		base,
	)

	var blob, fetchedAt string
	if err := row.Scan(&blob, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: query: %w", err)
	}

	snap := &rates.Snapshot{Base: base}
	if err := json.Unmarshal([]byte(blob), &snap.Rates); err != nil {
		return nil, fmt.Errorf("snapshot: parse rates: %w", err)
	}

	ts, err := time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse fetched_at: %w", err)
	}
	snap.FetchedAt = ts
	return snap, nil
}

func (s *SQLStore) Close() error { return nil }
