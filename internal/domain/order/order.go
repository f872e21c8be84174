// Package order builds transport-level order documents from the cart and
// drives the submission workflow against the backend.
package order

import (
	"context"
	"time"

	"github.com/merchpoint/poscart/internal/domain/cart"
)

// ExtraDTO is one chosen extra on an order line, wire form.
type ExtraDTO struct {
	ExtraID  int64
	Quantity int
}

// LineDTO is one cart line in wire form. VariantID and FlavorID are zero
// when the product has none.
type LineDTO struct {
	ProductID int64
	Quantity  int
	VariantID int64
	FlavorID  int64
	Extras    []ExtraDTO
	SauceIDs  []int64
	Comment   string
}

// Document is the order as submitted to the backend. It is a pure projection
// of a cart snapshot: building it twice from the same snapshot yields the
// same document.
type Document struct {
	ClientName      string
	PaymentMethodID int64
	Comment         string
	Lines           []LineDTO
}

// Record is a successfully submitted order: the document plus the
// server-assigned id. Records are appended to local history and never
// mutated afterwards.
type Record struct {
	OrderID     int64
	Document    Document
	SubmittedAt time.Time
}

// BuildDocument projects a cart snapshot into a Document.
func BuildDocument(clientName string, paymentMethodID int64, comment string, items []cart.LineItem) Document {
	doc := Document{
		ClientName:      clientName,
		PaymentMethodID: paymentMethodID,
		Comment:         comment,
		Lines:           make([]LineDTO, len(items)),
	}
	for i, item := range items {
		line := LineDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			VariantID: item.VariantID,
			FlavorID:  item.FlavorID,
			Comment:   item.Comment,
		}
		for _, e := range item.Extras {
			line.Extras = append(line.Extras, ExtraDTO{ExtraID: e.ID, Quantity: e.Quantity})
		}
		for _, s := range item.Sauces {
			line.SauceIDs = append(line.SauceIDs, s.ID)
		}
		doc.Lines[i] = line
	}
	return doc
}

// Submitter sends a document to the backend and returns the server-assigned
// order id. A response without an order id is an error, never a success.
type Submitter interface {
	SubmitOrder(ctx context.Context, doc Document) (int64, error)
}

// HistoryStore persists the append-only order history.
type HistoryStore interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
}
