package rates

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(base string, fetchedAt time.Time) *Snapshot {
	return NewSnapshot(base, map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("1.1"),
		"GBP": decimal.RequireFromString("0.85"),
	}, fetchedAt)
}

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache(0) // No cleanup for this test
	ctx := context.Background()

	snap := testSnapshot("EUR", time.Now())
	cache.Set(ctx, snap, 5*time.Minute)

	got, ok := cache.Get(ctx, "EUR")
	require.True(t, ok, "expected to find EUR snapshot")
	assert.Equal(t, snap.Rates, got.Rates)

	_, ok = cache.Get(ctx, "USD")
	assert.False(t, ok, "expected not to find USD snapshot")
}

func TestMemoryCache_RetentionExpiry(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	cache.Set(ctx, testSnapshot("EUR", time.Now()), 50*time.Millisecond)

	_, ok := cache.Get(ctx, "EUR")
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok = cache.Get(ctx, "EUR")
	assert.False(t, ok, "expected entry to be dropped after retention")
}

func TestMemoryCache_KeepsStaleWithinRetention(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	// Snapshot fetched an hour ago is stale for a typical TTL but must
	// stay retrievable for fallback while retention lasts.
	old := testSnapshot("EUR", time.Now().Add(-time.Hour))
	cache.Set(ctx, old, 24*time.Hour)

	got, ok := cache.Get(ctx, "EUR")
	require.True(t, ok)
	assert.True(t, got.Age(time.Now()) > 30*time.Minute)
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	cache.Set(ctx, testSnapshot("EUR", time.Now()), 5*time.Minute)
	cache.Delete(ctx, "EUR")

	_, ok := cache.Get(ctx, "EUR")
	assert.False(t, ok)
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	cache.Set(ctx, testSnapshot("EUR", time.Now()), 5*time.Minute)
	cache.Get(ctx, "EUR")
	cache.Get(ctx, "MISSING")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestMemoryCache_JanitorEvicts(t *testing.T) {
	cache := NewMemoryCache(20 * time.Millisecond)
	defer cache.(*memoryCache).Stop()
	ctx := context.Background()

	cache.Set(ctx, testSnapshot("EUR", time.Now()), 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return cache.Stats().CurrentSize == 0
	}, time.Second, 10*time.Millisecond, "janitor should evict expired entry")
}

func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	cache.Set(ctx, testSnapshot("EUR", time.Now()), time.Hour)
	_, ok := cache.Get(ctx, "EUR")
	assert.False(t, ok)
	assert.Equal(t, CacheStats{}, cache.Stats())
}
