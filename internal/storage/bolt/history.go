package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"

	"github.com/merchpoint/poscart/internal/domain/order"
)

var _ order.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is the append-only order history. Records are keyed by a
// monotonic sequence number so List returns them in submission order.
type HistoryStore struct {
	db *DB
}

// NewHistoryStore returns a HistoryStore over db.
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append adds rec at the end of the history.
func (s *HistoryStore) Append(_ context.Context, rec order.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal record")
	}
	err = s.db.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketOrders)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
	if err != nil {
		return errors.Wrap(err, "write record")
	}
	return nil
}

// List returns all records in submission order.
func (s *HistoryStore) List(_ context.Context) ([]order.Record, error) {
	var recs []order.Record
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOrders).ForEach(func(_, v []byte) error {
			var rec order.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return errors.Wrap(err, "unmarshal record")
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "read history")
	}
	return recs, nil
}
