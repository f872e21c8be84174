package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchpoint/poscart/internal/domain/cart"
	"github.com/merchpoint/poscart/internal/domain/catalog"
	"github.com/merchpoint/poscart/internal/domain/order"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "poscart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPing(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Ping())
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	store := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	snap := &catalog.Snapshot{
		Products: []catalog.Product{
			{
				ID:        1,
				Name:      "Pizza",
				BasePrice: decimal.RequireFromString("6.00"),
				Variants:  []catalog.Variant{{ID: 11, Label: "Small", Price: decimal.RequireFromString("5.00")}},
				Flavors:   []catalog.Flavor{{ID: 21, Label: "BBQ"}},
			},
		},
		Extras:         []catalog.Extra{{ID: 5, Name: "Cheese", Price: decimal.RequireFromString("1.00")}},
		Sauces:         []catalog.Sauce{{ID: 7, Name: "Garlic"}},
		PaymentMethods: []catalog.PaymentMethod{{ID: 1, Name: "Cash"}},
	}
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Pizza", got.Products[0].Name)
	assert.True(t, snap.Products[0].BasePrice.Equal(got.Products[0].BasePrice))
	assert.Len(t, got.Extras, 1)
	assert.Len(t, got.Sauces, 1)
	assert.Len(t, got.PaymentMethods, 1)
}

func TestSnapshotStore_EmptyLoad(t *testing.T) {
	store := NewSnapshotStore(openTestDB(t))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

// Serializing the cart and reloading it yields an identical ordered
// sequence.
func TestCartStore_RoundTrip(t *testing.T) {
	store := NewCartStore(openTestDB(t))
	ctx := context.Background()

	items := []cart.LineItem{
		{
			ID:           "line-1",
			ProductID:    1,
			ProductName:  "Pizza",
			VariantID:    12,
			VariantLabel: "Large",
			Extras:       []cart.ExtraLine{{ID: 5, Name: "Cheese", Price: decimal.RequireFromString("1.00"), Quantity: 2}},
			Sauces:       []cart.SauceLine{{ID: 7, Name: "Garlic"}},
			Comment:      "no onions",
			Quantity:     3,
			Price:        decimal.RequireFromString("30.00"),
		},
		{ID: "line-2", ProductID: 2, ProductName: "Soda", Quantity: 1, Price: decimal.RequireFromString("1.50")},
	}
	require.NoError(t, store.Save(ctx, items))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "line-1", got[0].ID)
	assert.Equal(t, "line-2", got[1].ID)
	assert.Equal(t, "Cheese", got[0].Extras[0].Name)
	assert.True(t, items[0].Price.Equal(got[0].Price))
}

func TestCartStore_SaveReplacesWholesale(t *testing.T) {
	store := NewCartStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []cart.LineItem{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, store.Save(ctx, []cart.LineItem{{ID: "b"}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestCartStore_EmptyLoad(t *testing.T) {
	store := NewCartStore(openTestDB(t))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHistoryStore_AppendOrder(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		rec := order.Record{
			OrderID: i * 10,
			Document: order.Document{
				ClientName: "Alice",
				Lines:      []order.LineDTO{{ProductID: i, Quantity: 1}},
			},
			SubmittedAt: at,
		}
		require.NoError(t, store.Append(ctx, rec))
	}

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Submission order is preserved.
	assert.Equal(t, int64(10), got[0].OrderID)
	assert.Equal(t, int64(20), got[1].OrderID)
	assert.Equal(t, int64(30), got[2].OrderID)
	assert.Equal(t, "Alice", got[0].Document.ClientName)
	assert.True(t, at.Equal(got[0].SubmittedAt))
}

func TestHistoryStore_EmptyList(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))

	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

// The stores share one file; writes to one bucket never disturb another.
func TestBucketsAreIndependent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cartStore := NewCartStore(db)
	snapStore := NewSnapshotStore(db)

	require.NoError(t, cartStore.Save(ctx, []cart.LineItem{{ID: "a"}}))
	require.NoError(t, snapStore.Save(ctx, &catalog.Snapshot{
		Products: []catalog.Product{{ID: 1, Name: "Pizza"}},
	}))
	require.NoError(t, cartStore.Save(ctx, nil))

	snap, err := snapStore.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Products, 1)
}
