// Package catalog holds the product catalog entities served to the terminal:
// products with their variants and flavors, global extras and sauces, and the
// accepted payment methods. Entities are immutable once loaded.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog item available for ordering. BasePrice applies when
// the product has no variants; otherwise the selected variant's price wins.
type Product struct {
	ID         int64
	Name       string
	BasePrice  decimal.Decimal
	CategoryID int64
	Image      string
	Variants   []Variant
	Flavors    []Flavor
}

// Variant is a size or tier choice for a single product. Selecting a variant
// replaces the product's base price with the variant price.
type Variant struct {
	ID    int64
	Label string
	Price decimal.Decimal
}

// Flavor is a named preparation choice for a single product. Flavors carry
// no price of their own.
type Flavor struct {
	ID    int64
	Label string
}

// Extra is a catalog-wide add-on priced per unit, referenced by line items
// with a quantity.
type Extra struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Sauce is a catalog-wide add-on with no price, referenced by line items as
// a boolean inclusion.
type Sauce struct {
	ID    int64
	Name  string
	Image string
}

// PaymentMethod is an accepted way to pay, chosen at submission time.
type PaymentMethod struct {
	ID   int64
	Name string
}

// Snapshot is the full catalog as fetched from the backend or restored from
// the durable store. All four lists are replaced together, never piecewise.
type Snapshot struct {
	Products       []Product
	Extras         []Extra
	Sauces         []Sauce
	PaymentMethods []PaymentMethod
}

// Freshness tags where a snapshot came from.
type Freshness string

const (
	// Fresh means the snapshot was just fetched from the backend.
	Fresh Freshness = "fresh"
	// Stale means the fetch failed and the snapshot was served from the
	// durable local store. Callers should surface an informational notice.
	Stale Freshness = "stale"
	// Unavailable means the fetch failed and no stored snapshot exists.
	// The snapshot is empty and ordering is not possible.
	Unavailable Freshness = "unavailable"
)

// Product returns the product with the given id, or nil.
func (s *Snapshot) Product(id int64) *Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

// Extra returns the extra with the given id, or nil.
func (s *Snapshot) Extra(id int64) *Extra {
	for i := range s.Extras {
		if s.Extras[i].ID == id {
			return &s.Extras[i]
		}
	}
	return nil
}

// Sauce returns the sauce with the given id, or nil.
func (s *Snapshot) Sauce(id int64) *Sauce {
	for i := range s.Sauces {
		if s.Sauces[i].ID == id {
			return &s.Sauces[i]
		}
	}
	return nil
}

// Variant returns the variant of p with the given id, or nil.
func (p *Product) Variant(id int64) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// Flavor returns the flavor of p with the given id, or nil.
func (p *Product) Flavor(id int64) *Flavor {
	for i := range p.Flavors {
		if p.Flavors[i].ID == id {
			return &p.Flavors[i]
		}
	}
	return nil
}

// FilterByCategory returns the products of snap matching categoryID, in
// snapshot order. A zero categoryID selects all products.
func FilterByCategory(snap *Snapshot, categoryID int64) []Product {
	if categoryID == 0 {
		return snap.Products
	}
	var out []Product
	for _, p := range snap.Products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}
