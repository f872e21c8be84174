package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrIndexOutOfRange is returned for cart operations addressing a position
// that does not exist. Indices are positional and shift on removal, so a
// caller holding a stale index is a defect, not a user-facing condition.
var ErrIndexOutOfRange = errors.New("cart index out of range")

// Store persists the full ordered sequence of line items. Save must be
// atomic: a reader never observes a partially written cart.
type Store interface {
	Save(ctx context.Context, items []LineItem) error
	Load(ctx context.Context) ([]LineItem, error)
}

// Aggregate is the in-progress order: an ordered, index-addressable sequence
// of configured line items. Every mutation is written through to the Store
// before it returns; if the write fails the in-memory state is left exactly
// as it was. Mutations are serialized by an internal mutex.
type Aggregate struct {
	mu    sync.Mutex
	items []LineItem
	store Store
}

// New returns an empty cart persisting through store.
func New(store Store) *Aggregate {
	return &Aggregate{store: store}
}

// Load restores the cart from the durable store. The store is the sole
// source of truth on process restart.
func Load(ctx context.Context, store Store) (*Aggregate, error) {
	items, err := store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return &Aggregate{items: items, store: store}, nil
}

// Append adds item at the end of the cart.
func (a *Aggregate) Append(ctx context.Context, item LineItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := make([]LineItem, len(a.items)+1)
	copy(next, a.items)
	next[len(a.items)] = item

	return a.commit(ctx, next)
}

// RemoveAt removes the item at index. Items after it shift down by one.
func (a *Aggregate) RemoveAt(ctx context.Context, index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.items) {
		return ErrIndexOutOfRange
	}

	next := make([]LineItem, 0, len(a.items)-1)
	next = append(next, a.items[:index]...)
	next = append(next, a.items[index+1:]...)

	return a.commit(ctx, next)
}

// ReplaceAt swaps the item at index for item, keeping its position.
func (a *Aggregate) ReplaceAt(ctx context.Context, index int, item LineItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.items) {
		return ErrIndexOutOfRange
	}

	next := make([]LineItem, len(a.items))
	copy(next, a.items)
	next[index] = item

	return a.commit(ctx, next)
}

// Clear empties the cart.
func (a *Aggregate) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.commit(ctx, nil)
}

// commit persists next and, only on success, makes it the current state.
// Callers must hold a.mu.
func (a *Aggregate) commit(ctx context.Context, next []LineItem) error {
	if err := a.store.Save(ctx, next); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	a.items = next
	return nil
}

// Snapshot returns a copy of the current ordered sequence, nested extras
// and sauces included. Mutating the result does not affect the cart.
func (a *Aggregate) Snapshot() []LineItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]LineItem, len(a.items))
	for i, item := range a.items {
		item.Extras = slices.Clone(item.Extras)
		item.Sauces = slices.Clone(item.Sauces)
		out[i] = item
	}
	return out
}

// Len returns the number of line items.
func (a *Aggregate) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Total sums the line item prices. It is recomputed on every call, never
// stored.
func (a *Aggregate) Total() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := decimal.Zero
	for _, item := range a.items {
		total = total.Add(item.Price)
	}
	return total
}
