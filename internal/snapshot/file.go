package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/ratesd/internal/rates"
)

// FileStore persists one JSON file per base currency under a directory.
// Writes are atomic (write-to-temp + rename) so readers never observe a
// partially written snapshot.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(base string) string {
	return filepath.Join(s.dir, strings.ToLower(base)+".json")
}

func (s *FileStore) Save(_ context.Context, snap *rates.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("snapshot: create dir %s: %w", s.dir, err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}

	if err := renameio.WriteFile(s.path(snap.Base), data, 0o640); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", s.path(snap.Base), err)
	}
	return nil
}

func (s *FileStore) Latest(_ context.Context, base string) (*rates.Snapshot, error) {
	data, err := os.ReadFile(s.path(base)) // #nosec G304 -- path is derived from the configured dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", s.path(base), err)
	}

	var snap rates.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", s.path(base), err)
	}
	return &snap, nil
}

func (s *FileStore) Close() error { return nil }
