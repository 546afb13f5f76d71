package rates

import (
	"context"
	"sync"
	"time"
)

// Cache holds rate snapshots keyed by base currency. Entries are kept past
// their freshness window so the service can fall back to stale data when
// the upstream is down; freshness itself is decided by the service from
// Snapshot.FetchedAt.
type Cache interface {
	// Get retrieves the snapshot for a base currency, if present.
	Get(ctx context.Context, base string) (*Snapshot, bool)
	// Set stores a snapshot, retained for at most keep.
	Set(ctx context.Context, snap *Snapshot, keep time.Duration)
	// Delete removes the snapshot for a base currency.
	Delete(ctx context.Context, base string)
	// Stats returns cache statistics.
	Stats() CacheStats
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Hits        int64 // successful Get operations
	Misses      int64 // failed Get operations (not found or evicted)
	Sets        int64 // Set operations
	Evictions   int64 // expired entries cleaned up
	CurrentSize int   // current number of cached entries
}

// entry represents a cached snapshot with its retention deadline.
type entry struct {
	snap   *Snapshot
	dropAt time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.dropAt)
}

// memoryCache is an in-memory implementation of Cache.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   CacheStats
	janitor *janitor
}

// NewMemoryCache creates a new in-memory cache with automatic cleanup.
// The cleanupInterval determines how often retained entries are dropped.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
	}

	if cleanupInterval > 0 {
		c.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
		}
		go c.janitor.run(c)
	}

	return c
}

func (c *memoryCache) Get(_ context.Context, base string) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[base]
	if !found || e.isExpired(time.Now()) {
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return e.snap, true
}

func (c *memoryCache) Set(_ context.Context, snap *Snapshot, keep time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[snap.Base] = &entry{
		snap:   snap,
		dropAt: time.Now().Add(keep),
	}
	c.stats.Sets++
}

func (c *memoryCache) Delete(_ context.Context, base string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, base)
}

func (c *memoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.CurrentSize = len(c.entries)
	return stats
}

// deleteExpired removes all entries past retention.
func (c *memoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	count := 0
	for base, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, base)
			count++
		}
	}

	c.stats.Evictions += int64(count)
	return count
}

// Stop stops the background cleanup goroutine.
func (c *memoryCache) Stop() {
	if c.janitor != nil {
		c.janitor.stop <- struct{}{}
	}
}

// janitor performs periodic cleanup of expired entries.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
}

func (j *janitor) run(c *memoryCache) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

// noOpCache is a cache that does nothing (useful for disabling caching).
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache anything.
func NewNoOpCache() Cache {
	return &noOpCache{}
}

func (c *noOpCache) Get(context.Context, string) (*Snapshot, bool) { return nil, false }
func (c *noOpCache) Set(context.Context, *Snapshot, time.Duration) {}
func (c *noOpCache) Delete(context.Context, string)                {}
func (c *noOpCache) Stats() CacheStats                             { return CacheStats{} }
