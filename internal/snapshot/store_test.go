package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/ratesd/internal/persistence/sqlite"
	"github.com/ManuGH/ratesd/internal/rates"
)

func testSnapshot(base string, fetchedAt time.Time) *rates.Snapshot {
	return rates.NewSnapshot(base, map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("1.087612345"),
		"GBP": decimal.RequireFromString("0.8652"),
	}, fetchedAt)
}

// roundTrip exercises the Store contract shared by every backend.
func roundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Empty store yields (nil, nil).
	snap, err := store.Latest(ctx, "EUR")
	require.NoError(t, err)
	require.Nil(t, snap)

	first := testSnapshot("EUR", time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, first))

	got, err := store.Latest(ctx, "EUR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "EUR", got.Base)
	if diff := cmp.Diff(first.Rates, got.Rates); diff != "" {
		t.Errorf("rates mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.FetchedAt.Equal(first.FetchedAt))

	// A newer save wins.
	second := testSnapshot("EUR", time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC))
	second.Rates["USD"] = "1.09"
	require.NoError(t, store.Save(ctx, second))

	got, err = store.Latest(ctx, "EUR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1.09", got.Rates["USD"])

	// Other bases stay independent.
	snap, err = store.Latest(ctx, "USD")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestMemoryStore(t *testing.T) {
	roundTrip(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	store := NewFileStore(t.TempDir())
	roundTrip(t, store)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	store := NewFileStore(dir)

	err := store.Save(context.Background(), testSnapshot("EUR", time.Now()))
	require.NoError(t, err)

	got, err := store.Latest(context.Background(), "EUR")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestSQLStore(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), sqlite.DefaultConfig())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	require.NoError(t, sqlite.Migrate(context.Background(), db))

	roundTrip(t, NewSQLStore(db))
}

func TestBadgerStore(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	roundTrip(t, store)
}

func TestOpen_BackendSelection(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), sqlite.DefaultConfig())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tests := []struct {
		name    string
		backend string
		path    string
		wantErr bool
	}{
		{name: "memory", backend: "memory"},
		{name: "empty defaults to memory", backend: ""},
		{name: "file", backend: "file", path: t.TempDir()},
		{name: "file without path", backend: "file", wantErr: true},
		{name: "sqlite", backend: "sqlite"},
		{name: "badger without path", backend: "badger", wantErr: true},
		{name: "unknown", backend: "etcd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.backend, tt.path, db)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, store)
			_ = store.Close()
		})
	}
}
