// Package snapshot persists exchange-rate snapshots for upstream-outage
// fallback. Backends: memory, file (atomic JSON), sqlite, badger.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ManuGH/ratesd/internal/rates"
)

// Store persists and retrieves rate snapshots. Latest returns (nil, nil)
// when no snapshot exists for the base currency.
type Store interface {
	Save(ctx context.Context, snap *rates.Snapshot) error
	Latest(ctx context.Context, base string) (*rates.Snapshot, error)
	Close() error
}

// Open creates a Store for the configured backend.
// The sqlite backend reuses the shared database handle; file and badger
// operate on path.
func Open(backend, path string, db *sql.DB) (Store, error) {
	switch backend {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		if path == "" {
			return nil, fmt.Errorf("snapshot: file backend requires a path")
		}
		return NewFileStore(path), nil
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("snapshot: sqlite backend requires a database handle")
		}
		return NewSQLStore(db), nil
	case "badger":
		if path == "" {
			return nil, fmt.Errorf("snapshot: badger backend requires a path")
		}
		return OpenBadgerStore(path)
	default:
		if backend == "" {
			return NewMemoryStore(), nil
		}
		return nil, fmt.Errorf("snapshot: unknown store backend: %s", backend)
	}
}
