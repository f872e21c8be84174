// Package catalog implements the catalog cache: a network fetch with a
// durable local fallback, so the terminal stays usable when the backend is
// unreachable.
package catalog

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/merchpoint/poscart/internal/domain/catalog"
)

// Fetcher retrieves the full catalog from the backend.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (*catalog.Snapshot, error)
}

// SnapshotStore persists the last known good catalog snapshot. Save replaces
// all four lists in one atomic write; Load returns nil when nothing has been
// stored yet.
type SnapshotStore interface {
	Save(ctx context.Context, snap *catalog.Snapshot) error
	Load(ctx context.Context) (*catalog.Snapshot, error)
}

// Cache serves the catalog, preferring a fresh fetch and falling back to the
// stored snapshot. Concurrent Load calls are collapsed into a single fetch.
type Cache struct {
	fetcher Fetcher
	store   SnapshotStore
	group   singleflight.Group
	current atomic.Pointer[loadResult]
}

// NewCache returns a Cache over the given fetcher and store.
func NewCache(fetcher Fetcher, store SnapshotStore) *Cache {
	return &Cache{fetcher: fetcher, store: store}
}

type loadResult struct {
	snap      *catalog.Snapshot
	freshness catalog.Freshness
}

// Load returns the catalog and a tag describing where it came from.
//
// On a well-formed fetch with at least one product the durable snapshot is
// replaced and the result is tagged Fresh. On any fetch failure the stored
// snapshot is served tagged Stale. With no stored snapshot either, an empty
// snapshot is returned tagged Unavailable and the caller must block
// ordering. Load itself only fails when the durable store does.
func (c *Cache) Load(ctx context.Context) (*catalog.Snapshot, catalog.Freshness, error) {
	v, err, _ := c.group.Do("catalog", func() (any, error) {
		res, err := c.load(ctx)
		if err == nil {
			c.current.Store(&res)
		}
		return res, err
	})
	if err != nil {
		return nil, catalog.Unavailable, err
	}
	res := v.(loadResult)
	return res.snap, res.freshness, nil
}

// Current returns the snapshot served by the most recent Load, loading one
// when none has been served yet. Line item configuration reads the catalog
// through this, so an in-flight refresh never swaps entities mid-dialog.
func (c *Cache) Current(ctx context.Context) (*catalog.Snapshot, catalog.Freshness, error) {
	if res := c.current.Load(); res != nil {
		return res.snap, res.freshness, nil
	}
	return c.Load(ctx)
}

func (c *Cache) load(ctx context.Context) (loadResult, error) {
	lg := zctx.From(ctx)

	snap, err := c.fetcher.FetchCatalog(ctx)
	if err == nil && len(snap.Products) == 0 {
		err = errors.New("catalog response has no products")
	}
	if err == nil {
		if saveErr := c.store.Save(ctx, snap); saveErr != nil {
			// A fresh catalog beats a durable one; serve it and keep the
			// previous snapshot on disk for the next offline start.
			lg.Warn("Catalog snapshot write failed", zap.Error(saveErr))
		}
		return loadResult{snap: snap, freshness: catalog.Fresh}, nil
	}

	lg.Warn("Catalog fetch failed, falling back to stored snapshot", zap.Error(err))

	stored, loadErr := c.store.Load(ctx)
	if loadErr != nil {
		return loadResult{}, errors.Wrap(loadErr, "load stored snapshot")
	}
	if stored == nil || len(stored.Products) == 0 {
		return loadResult{snap: &catalog.Snapshot{}, freshness: catalog.Unavailable}, nil
	}
	return loadResult{snap: stored, freshness: catalog.Stale}, nil
}
