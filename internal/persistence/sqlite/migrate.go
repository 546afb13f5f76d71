package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied idempotently at startup. Amount columns are TEXT:
// decimals are stored in their exact string form, never as floats.
const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id         TEXT NOT NULL,
	source_currency TEXT NOT NULL,
	target_currency TEXT NOT NULL,
	source_amount   TEXT NOT NULL,
	target_amount   TEXT NOT NULL,
	exchange_rate   TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS rate_snapshots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	base_currency TEXT NOT NULL,
	rates         TEXT NOT NULL,
	fetched_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rate_snapshots_base ON rate_snapshots(base_currency, fetched_at);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate failed: %w", err)
	}
	return nil
}
