// Package handler exposes the ordering core to the terminal's UI shell over
// a localhost JSON API: catalog browsing, cart editing, and order
// submission.
package handler

import (
	"net/http"

	catalogcache "github.com/merchpoint/poscart/internal/catalog"
	"github.com/merchpoint/poscart/internal/domain/cart"
	"github.com/merchpoint/poscart/internal/domain/order"
)

// Handler wires the facade routes to the core components. It contains no
// business logic of its own: requests are decoded, delegated, and mapped
// back to JSON.
type Handler struct {
	catalog  *catalogcache.Cache
	cart     *cart.Aggregate
	workflow *order.Workflow
	history  order.HistoryStore
}

// New constructs a Handler over the core components.
func New(cache *catalogcache.Cache, c *cart.Aggregate, wf *order.Workflow, history order.HistoryStore) *Handler {
	return &Handler{
		catalog:  cache,
		cart:     c,
		workflow: wf,
		history:  history,
	}
}

// Routes returns the facade route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/catalog", h.getCatalog)
	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PUT /api/cart/items/{index}", h.replaceCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{index}", h.removeCartItem)
	mux.HandleFunc("POST /api/cart/clear", h.clearCart)
	mux.HandleFunc("POST /api/orders", h.submitOrder)
	mux.HandleFunc("GET /api/orders/history", h.orderHistory)
	mux.HandleFunc("GET /api/orders/state", h.orderState)
	return mux
}
