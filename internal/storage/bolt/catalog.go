package bolt

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"

	"github.com/merchpoint/poscart/internal/domain/catalog"
)

// SnapshotStore persists the last known good catalog snapshot as one JSON
// value, so all four catalog lists are replaced together or not at all.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore returns a SnapshotStore over db.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save atomically replaces the stored snapshot.
func (s *SnapshotStore) Save(_ context.Context, snap *catalog.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	err = s.db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCatalog).Put(keySnapshot, data)
	})
	if err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	return nil
}

// Load returns the stored snapshot, or nil when none has been saved yet.
func (s *SnapshotStore) Load(_ context.Context) (*catalog.Snapshot, error) {
	var data []byte
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketCatalog).Get(keySnapshot); v != nil {
			data = append(data, v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}
	if data == nil {
		return nil, nil
	}
	var snap catalog.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot")
	}
	return &snap, nil
}
