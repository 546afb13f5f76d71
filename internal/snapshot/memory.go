package snapshot

import (
	"context"
	"sync"

	"github.com/ManuGH/ratesd/internal/rates"
)

// MemoryStore keeps the newest snapshot per base currency in memory.
// Useful for tests and for deployments that accept losing the fallback
// on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*rates.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*rates.Snapshot)}
}

func (s *MemoryStore) Save(_ context.Context, snap *rates.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Base] = snap
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, base string) (*rates.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snaps[base], nil
}

func (s *MemoryStore) Close() error { return nil }
