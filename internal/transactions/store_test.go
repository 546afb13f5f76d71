package transactions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/ratesd/internal/persistence/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), sqlite.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db))

	return NewStore(db)
}

func testTransaction(userID string, createdAt time.Time) *Transaction {
	return &Transaction{
		UserID:         userID,
		SourceCurrency: "USD",
		TargetCurrency: "EUR",
		SourceAmount:   decimal.RequireFromString("100.00"),
		TargetAmount:   decimal.RequireFromString("91.95"),
		ExchangeRate:   decimal.RequireFromString("0.92"),
		CreatedAt:      createdAt,
	}
}

func TestStore_InsertAssignsID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx := testTransaction("alice", time.Now())
	require.NoError(t, store.Insert(ctx, tx))
	assert.Positive(t, tx.ID)

	tx2 := testTransaction("alice", time.Now())
	require.NoError(t, store.Insert(ctx, tx2))
	assert.Greater(t, tx2.ID, tx.ID)
}

func TestStore_DecimalRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx := testTransaction("alice", time.Date(2026, 3, 1, 12, 30, 45, 123456789, time.UTC))
	tx.SourceAmount = decimal.RequireFromString("0.000000001")
	tx.ExchangeRate = decimal.RequireFromString("123456789.987654321")
	require.NoError(t, store.Insert(ctx, tx))

	list, err := store.ListByUser(ctx, "alice", Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, "0.000000001", got.SourceAmount.String())
	assert.Equal(t, "123456789.987654321", got.ExchangeRate.String())
	assert.True(t, got.CreatedAt.Equal(tx.CreatedAt))
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, testTransaction("alice", base.Add(time.Duration(i)*time.Hour))))
	}

	list, err := store.ListByUser(ctx, "alice", Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
	assert.True(t, list[1].CreatedAt.After(list[2].CreatedAt))
}

func TestStore_Pagination(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Insert(ctx, testTransaction("alice", base.Add(time.Duration(i)*time.Minute))))
	}

	page, err := store.ListByUser(ctx, "alice", Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	// Newest is skipped by the offset.
	assert.True(t, page[0].CreatedAt.Equal(base.Add(3*time.Minute)))
	assert.True(t, page[1].CreatedAt.Equal(base.Add(2*time.Minute)))
}

func TestStore_DateFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{day1, day2, day3} {
		require.NoError(t, store.Insert(ctx, testTransaction("alice", ts)))
	}

	list, err := store.ListByUser(ctx, "alice", Filter{From: day2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = store.ListByUser(ctx, "alice", Filter{To: day2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = store.ListByUser(ctx, "alice", Filter{From: day2, To: day2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].CreatedAt.Equal(day2))

	count, err := store.CountByUser(ctx, "alice", Filter{From: day2})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_UserIsolation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTransaction("alice", time.Now())))
	require.NoError(t, store.Insert(ctx, testTransaction("bob", time.Now())))

	list, err := store.ListByUser(ctx, "alice", Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].UserID)

	count, err := store.CountByUser(ctx, "carol", Filter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}
