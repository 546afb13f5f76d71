package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/ratesd/internal/rates"
)

// BadgerStore keeps the newest snapshot per base currency in a Badger
// database. Keys are "snap:<base>" with JSON values.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a Badger database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open badger at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func key(base string) []byte {
	return []byte("snap:" + base)
}

func (s *BadgerStore) Save(_ context.Context, snap *rates.Snapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(snap.Base), buf)
	})
}

func (s *BadgerStore) Latest(_ context.Context, base string) (*rates.Snapshot, error) {
	var out rates.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(base))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: badger get: %w", err)
	}
	return &out, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
