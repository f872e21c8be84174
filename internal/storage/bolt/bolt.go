// Package bolt persists the terminal's local state in a single bbolt file:
// the last known catalog snapshot, the in-progress cart, and the order
// history. Every write happens in one transaction, so readers never observe
// a partial update.
package bolt

import (
	"time"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"
)

// Bucket names. One bucket per logical key from the storage contract.
var (
	bucketCatalog = []byte("catalog")
	bucketCart    = []byte("cart")
	bucketOrders  = []byte("orders")
)

// Value keys for the single-value buckets.
var (
	keySnapshot = []byte("snapshot")
	keyItems    = []byte("items")
)

// DB wraps the bbolt handle shared by the stores.
type DB struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the store file and ensures all buckets
// exist.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCatalog, bucketCart, bucketOrders} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the underlying file.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping verifies the store file is still usable, for the readiness probe.
func (d *DB) Ping() error {
	return d.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketCart) == nil {
			return errors.New("cart bucket missing")
		}
		return nil
	})
}
