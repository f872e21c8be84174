package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Products: []Product{
			{ID: 1, Name: "Burger", BasePrice: decimal.RequireFromString("6.50"), CategoryID: 10},
			{ID: 2, Name: "Fries", BasePrice: decimal.RequireFromString("2.50"), CategoryID: 20},
			{ID: 3, Name: "Cheeseburger", BasePrice: decimal.RequireFromString("7.50"), CategoryID: 10},
		},
		Extras: []Extra{
			{ID: 5, Name: "Cheese", Price: decimal.RequireFromString("1.00")},
		},
		Sauces: []Sauce{
			{ID: 7, Name: "Garlic"},
		},
	}
}

func TestFilterByCategory_All(t *testing.T) {
	snap := testSnapshot()

	got := FilterByCategory(snap, 0)

	require.Len(t, got, 3)
	// Snapshot order is preserved.
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)
}

func TestFilterByCategory_Match(t *testing.T) {
	snap := testSnapshot()

	got := FilterByCategory(snap, 10)

	require.Len(t, got, 2)
	assert.Equal(t, "Burger", got[0].Name)
	assert.Equal(t, "Cheeseburger", got[1].Name)
}

func TestFilterByCategory_NoMatch(t *testing.T) {
	got := FilterByCategory(testSnapshot(), 99)
	assert.Empty(t, got)
}

func TestSnapshotLookups(t *testing.T) {
	snap := testSnapshot()

	require.NotNil(t, snap.Product(2))
	assert.Equal(t, "Fries", snap.Product(2).Name)
	assert.Nil(t, snap.Product(42))

	require.NotNil(t, snap.Extra(5))
	assert.Nil(t, snap.Extra(42))

	require.NotNil(t, snap.Sauce(7))
	assert.Nil(t, snap.Sauce(42))
}

func TestProductLookups(t *testing.T) {
	p := Product{
		ID: 1,
		Variants: []Variant{
			{ID: 11, Label: "Small", Price: decimal.RequireFromString("5.00")},
			{ID: 12, Label: "Large", Price: decimal.RequireFromString("8.00")},
		},
		Flavors: []Flavor{{ID: 21, Label: "Spicy"}},
	}

	require.NotNil(t, p.Variant(12))
	assert.Equal(t, "Large", p.Variant(12).Label)
	assert.Nil(t, p.Variant(99))

	require.NotNil(t, p.Flavor(21))
	assert.Nil(t, p.Flavor(99))
}
