// Package cart implements the product configuration engine and the cart
// aggregate: turning a product plus user selections into a priced line item,
// and holding those line items in an ordered, durably persisted collection.
package cart

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpoint/poscart/internal/domain/catalog"
)

// Problem identifies a single validation failure in a Selection.
type Problem string

const (
	ProblemMissingVariant  Problem = "missing_variant"
	ProblemMissingFlavor   Problem = "missing_flavor"
	ProblemInvalidQuantity Problem = "invalid_quantity"
)

// ValidationError reports every problem found in a Selection so the caller
// can display all of them at once.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = string(p)
	}
	return fmt.Sprintf("invalid selection: %s", strings.Join(parts, ", "))
}

// Has reports whether the error contains the given problem.
func (e *ValidationError) Has(p Problem) bool {
	for _, got := range e.Problems {
		if got == p {
			return true
		}
	}
	return false
}

// Selection is the user's input for configuring one product. VariantID and
// FlavorID are zero when nothing is selected; Extras maps extra id to
// quantity, with zero quantities treated as "not selected".
type Selection struct {
	VariantID int64
	FlavorID  int64
	Extras    map[int64]int
	Sauces    []int64
	Comment   string
	Quantity  int
}

// ExtraLine is one chosen extra on a configured line item.
type ExtraLine struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// SauceLine is one chosen sauce on a configured line item.
type SauceLine struct {
	ID   int64
	Name string
}

// LineItem is a fully configured, priced cart entry. It is a deep copy of
// everything it was built from: later catalog mutations never reach it.
// Once created it is only ever replaced wholesale, never edited.
type LineItem struct {
	ID           string
	ProductID    int64
	ProductName  string
	VariantID    int64
	VariantLabel string
	FlavorID     int64
	FlavorLabel  string
	Extras       []ExtraLine
	Sauces       []SauceLine
	Comment      string
	Quantity     int
	Price        decimal.Decimal
}

// Selection rebuilds the Selection that produced this line item, for use as
// defaults when the item is edited.
func (li *LineItem) Selection() Selection {
	sel := Selection{
		VariantID: li.VariantID,
		FlavorID:  li.FlavorID,
		Comment:   li.Comment,
		Quantity:  li.Quantity,
	}
	if len(li.Extras) > 0 {
		sel.Extras = make(map[int64]int, len(li.Extras))
		for _, e := range li.Extras {
			sel.Extras[e.ID] = e.Quantity
		}
	}
	for _, s := range li.Sauces {
		sel.Sauces = append(sel.Sauces, s.ID)
	}
	return sel
}

// Configure validates sel against p and the catalog snapshot and produces an
// immutable priced line item.
//
// Validation runs in full rather than stopping at the first failure, so the
// caller can surface every problem next to its selector. A variant or flavor
// is mandatory exactly when the product defines a non-empty list of that
// kind. Extras with quantity zero are dropped. Unknown extra and sauce ids
// are dropped as well: they can only appear when the catalog changed under
// an edit, and silently narrowing the selection beats rejecting the item.
//
// Pricing: (variant price, or base price when the product has no variant
// selected) plus the extras subtotal, times the line quantity. All
// arithmetic is decimal; nothing is rounded until display.
func Configure(snap *catalog.Snapshot, p catalog.Product, sel Selection) (LineItem, error) {
	var verr ValidationError

	variant := p.Variant(sel.VariantID)
	if len(p.Variants) > 0 && variant == nil {
		verr.Problems = append(verr.Problems, ProblemMissingVariant)
	}

	flavor := p.Flavor(sel.FlavorID)
	if len(p.Flavors) > 0 && flavor == nil {
		verr.Problems = append(verr.Problems, ProblemMissingFlavor)
	}

	if sel.Quantity < 1 {
		verr.Problems = append(verr.Problems, ProblemInvalidQuantity)
	}

	if len(verr.Problems) > 0 {
		return LineItem{}, &verr
	}

	item := LineItem{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Comment:     sel.Comment,
		Quantity:    sel.Quantity,
	}

	unitPrice := p.BasePrice
	if variant != nil {
		unitPrice = variant.Price
		item.VariantID = variant.ID
		item.VariantLabel = variant.Label
	}
	if flavor != nil {
		item.FlavorID = flavor.ID
		item.FlavorLabel = flavor.Label
	}

	extrasTotal := decimal.Zero
	for _, id := range sortedExtraIDs(sel.Extras) {
		qty := sel.Extras[id]
		if qty <= 0 {
			continue
		}
		extra := snap.Extra(id)
		if extra == nil {
			continue
		}
		item.Extras = append(item.Extras, ExtraLine{
			ID:       extra.ID,
			Name:     extra.Name,
			Price:    extra.Price,
			Quantity: qty,
		})
		extrasTotal = extrasTotal.Add(extra.Price.Mul(decimal.NewFromInt(int64(qty))))
	}

	for _, id := range sel.Sauces {
		sauce := snap.Sauce(id)
		if sauce == nil {
			continue
		}
		item.Sauces = append(item.Sauces, SauceLine{ID: sauce.ID, Name: sauce.Name})
	}

	item.Price = unitPrice.Add(extrasTotal).Mul(decimal.NewFromInt(int64(sel.Quantity)))

	return item, nil
}

// sortedExtraIDs returns the map keys in ascending order so that extras land
// on the line item deterministically.
func sortedExtraIDs(extras map[int64]int) []int64 {
	ids := make([]int64, 0, len(extras))
	for id := range extras {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
