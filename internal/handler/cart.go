package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/merchpoint/poscart/internal/domain/cart"
	"github.com/merchpoint/poscart/internal/domain/catalog"
)

// lineItemReq is the canonical add/edit request body. Legacy shells used
// several field names for the flavor id; decodeLineItemReq canonicalizes
// them here at the boundary so the engine only ever sees one shape.
type lineItemReq struct {
	ProductID int64
	Selection cart.Selection
}

// decodeLineItemReq parses the request body. Accepted flavor aliases:
// idFlavor (canonical), flavor, taste.
func decodeLineItemReq(body []byte) (lineItemReq, error) {
	req := lineItemReq{Selection: cart.Selection{Quantity: 1}}
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "idProduct":
			req.ProductID, err = d.Int64()
		case "idVariant":
			req.Selection.VariantID, err = d.Int64()
		case "idFlavor", "flavor", "taste":
			req.Selection.FlavorID, err = d.Int64()
		case "quantity":
			req.Selection.Quantity, err = d.Int()
		case "comment":
			req.Selection.Comment, err = d.Str()
		case "extras":
			err = d.Arr(func(d *jx.Decoder) error {
				var id int64
				var qty int
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "idExtra":
						id, err = d.Int64()
					case "quantity":
						qty, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				if req.Selection.Extras == nil {
					req.Selection.Extras = make(map[int64]int)
				}
				req.Selection.Extras[id] = qty
				return nil
			})
		case "sauces":
			err = d.Arr(func(d *jx.Decoder) error {
				id, err := d.Int64()
				if err != nil {
					return err
				}
				req.Selection.Sauces = append(req.Selection.Sauces, id)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

// configureFromRequest decodes the body and runs the configuration engine
// against the currently served catalog.
func (h *Handler) configureFromRequest(w http.ResponseWriter, r *http.Request) (cart.LineItem, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return cart.LineItem{}, false
	}
	req, err := decodeLineItemReq(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return cart.LineItem{}, false
	}

	snap, freshness, err := h.catalog.Current(r.Context())
	if err != nil {
		mapError(w, r, err)
		return cart.LineItem{}, false
	}
	if freshness == catalog.Unavailable {
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return cart.LineItem{}, false
	}

	product := snap.Product(req.ProductID)
	if product == nil {
		writeError(w, http.StatusNotFound, "unknown product")
		return cart.LineItem{}, false
	}

	item, err := cart.Configure(snap, *product, req.Selection)
	if err != nil {
		mapError(w, r, err)
		return cart.LineItem{}, false
	}
	return item, true
}

// addCartItem serves POST /api/cart/items: configure and append.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.configureFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.cart.Append(r.Context(), item); err != nil {
		mapError(w, r, err)
		return
	}
	h.writeCartState(w, http.StatusCreated)
}

// replaceCartItem serves PUT /api/cart/items/{index}: re-configure and swap
// in place. Editing is not special-cased; this is the same engine run as an
// append, the position just stays.
func (h *Handler) replaceCartItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	item, ok := h.configureFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.cart.ReplaceAt(r.Context(), index, item); err != nil {
		mapError(w, r, err)
		return
	}
	h.writeCartState(w, http.StatusOK)
}

// removeCartItem serves DELETE /api/cart/items/{index}. Later items shift
// down; the shell must re-read the cart rather than cache indices.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	if err := h.cart.RemoveAt(r.Context(), index); err != nil {
		mapError(w, r, err)
		return
	}
	h.writeCartState(w, http.StatusOK)
}

// clearCart serves POST /api/cart/clear.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		mapError(w, r, err)
		return
	}
	h.writeCartState(w, http.StatusOK)
}

// getCart serves GET /api/cart.
func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	h.writeCartState(w, http.StatusOK)
}

// writeCartState responds with the full cart: items, count, total. Count
// and total are derived on every call, never stored.
func (h *Handler) writeCartState(w http.ResponseWriter, status int) {
	items := h.cart.Snapshot()

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range items {
					encodeLineItem(e, &items[i])
				}
			})
		})
		e.Field("count", func(e *jx.Encoder) { e.Int(len(items)) })
		e.Field("total", func(e *jx.Encoder) { encodeMoney(e, h.cart.Total()) })
	})
	writeJSON(w, status, &e)
}

func encodeLineItem(e *jx.Encoder, item *cart.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(item.ID) })
		e.Field("idProduct", func(e *jx.Encoder) { e.Int64(item.ProductID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(item.ProductName) })
		e.Field("idVariant", func(e *jx.Encoder) { e.Int64(item.VariantID) })
		e.Field("variant", func(e *jx.Encoder) { e.Str(item.VariantLabel) })
		e.Field("idFlavor", func(e *jx.Encoder) { e.Int64(item.FlavorID) })
		e.Field("flavor", func(e *jx.Encoder) { e.Str(item.FlavorLabel) })
		e.Field("extras", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, x := range item.Extras {
					e.Obj(func(e *jx.Encoder) {
						e.Field("idExtra", func(e *jx.Encoder) { e.Int64(x.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(x.Name) })
						e.Field("price", func(e *jx.Encoder) { encodeMoney(e, x.Price) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(x.Quantity) })
					})
				}
			})
		})
		e.Field("sauces", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, s := range item.Sauces {
					e.Obj(func(e *jx.Encoder) {
						e.Field("idSauce", func(e *jx.Encoder) { e.Int64(s.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
					})
				}
			})
		})
		e.Field("comment", func(e *jx.Encoder) { e.Str(item.Comment) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
		e.Field("price", func(e *jx.Encoder) { encodeMoney(e, item.Price) })
	})
}
