package bolt

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"

	"github.com/merchpoint/poscart/internal/domain/cart"
)

var _ cart.Store = (*CartStore)(nil)

// CartStore persists the cart's full ordered line item sequence as one JSON
// value per write, matching the aggregate's write-through contract.
type CartStore struct {
	db *DB
}

// NewCartStore returns a CartStore over db.
func NewCartStore(db *DB) *CartStore {
	return &CartStore{db: db}
}

// Save atomically replaces the stored cart with items.
func (s *CartStore) Save(_ context.Context, items []cart.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "marshal cart")
	}
	err = s.db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCart).Put(keyItems, data)
	})
	if err != nil {
		return errors.Wrap(err, "write cart")
	}
	return nil
}

// Load returns the stored line items, or nil when the cart has never been
// written.
func (s *CartStore) Load(_ context.Context) ([]cart.LineItem, error) {
	var data []byte
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketCart).Get(keyItems); v != nil {
			data = append(data, v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "read cart")
	}
	if data == nil {
		return nil, nil
	}
	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}
	return items, nil
}
