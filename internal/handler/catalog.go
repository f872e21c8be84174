package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/merchpoint/poscart/internal/domain/catalog"
)

// getCatalog serves GET /api/catalog. The optional category query parameter
// filters products; freshness tells the shell whether to show the stale
// banner. An unavailable catalog (no network, no local snapshot) is 503:
// the shell must block ordering.
func (h *Handler) getCatalog(w http.ResponseWriter, r *http.Request) {
	snap, freshness, err := h.catalog.Load(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}

	if freshness == catalog.Unavailable {
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable: no network and no local snapshot")
		return
	}

	var categoryID int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		categoryID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
	}
	products := catalog.FilterByCategory(snap, categoryID)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("freshness", func(e *jx.Encoder) { e.Str(string(freshness)) })
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range products {
					encodeProduct(e, &products[i])
				}
			})
		})
		e.Field("extras", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, x := range snap.Extras {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int64(x.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(x.Name) })
						e.Field("price", func(e *jx.Encoder) { encodeMoney(e, x.Price) })
					})
				}
			})
		})
		e.Field("sauces", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, s := range snap.Sauces {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int64(s.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
						e.Field("image", func(e *jx.Encoder) { e.Str(s.Image) })
					})
				}
			})
		})
		e.Field("paymentMethods", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, pm := range snap.PaymentMethods {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int64(pm.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(pm.Name) })
					})
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func encodeProduct(e *jx.Encoder, p *catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { encodeMoney(e, p.BasePrice) })
		e.Field("idCategory", func(e *jx.Encoder) { e.Int64(p.CategoryID) })
		e.Field("image", func(e *jx.Encoder) { e.Str(p.Image) })
		e.Field("variants", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range p.Variants {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int64(v.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(v.Label) })
						e.Field("price", func(e *jx.Encoder) { encodeMoney(e, v.Price) })
					})
				}
			})
		})
		e.Field("flavors", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, f := range p.Flavors {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int64(f.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(f.Label) })
					})
				}
			})
		})
	})
}

// encodeMoney emits a decimal as a JSON number with two decimal places.
// Rounding happens only here, at the display boundary.
func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.StringFixed(2)))
}
