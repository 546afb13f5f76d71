package transactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_UnknownUser(t *testing.T) {
	svc := NewService(openTestStore(t))

	_, err := svc.HistoryByUser(context.Background(), "ghost", Filter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var notFound *UserNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghost", notFound.UserID)
}

func TestHistory_FilterMatchesNothing(t *testing.T) {
	store := openTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, testTransaction("alice", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))))

	// The user exists, so an empty filtered result is not a 404 case.
	h, err := svc.HistoryByUser(ctx, "alice", Filter{From: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Zero(t, h.Count)
	assert.Zero(t, h.Total)
	assert.Empty(t, h.Transactions)
}

func TestHistory_CountAndTotal(t *testing.T) {
	store := openTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.Record(ctx, testTransaction("alice", base.AddDate(0, 0, i))))
	}

	h, err := svc.HistoryByUser(ctx, "alice", Filter{
		From:  base.AddDate(0, 0, 1),
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", h.UserID)
	assert.Equal(t, 2, h.Count, "count is the page size")
	assert.Equal(t, 3, h.Total, "total reflects the date filter, not the pagination")
	assert.Len(t, h.Transactions, 2)
}

func TestHistory_FiltersNormalizedToUTC(t *testing.T) {
	store := openTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	require.NoError(t, svc.Record(ctx, testTransaction("alice", at)))

	// 2026-03-02 01:00 +02:00 is 23:00 UTC on March 1st.
	zone := time.FixedZone("EET", 2*60*60)
	h, err := svc.HistoryByUser(ctx, "alice", Filter{
		From: time.Date(2026, 3, 2, 1, 0, 0, 0, zone),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.Total)
}

func TestRecord_AssignsID(t *testing.T) {
	svc := NewService(openTestStore(t))

	tx := testTransaction("alice", time.Now())
	require.NoError(t, svc.Record(context.Background(), tx))
	assert.Positive(t, tx.ID)
}
