package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/merchpoint/poscart/internal/domain/cart"
	"github.com/merchpoint/poscart/internal/domain/order"
)

// writeJSON sends an encoded body with the given status.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError sends the {code, message} error shape.
func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, status, &e)
}

// mapError translates core errors to facade responses.
//
// Validation problems come back as 422 with one entry per problem so the
// shell can mark every offending selector. Index errors are caller defects
// and map to 500. Submission failures map to 502 with the reason; the cart
// is untouched and the shell may offer a retry.
func mapError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *cart.ValidationError
	if errors.As(err, &verr) {
		var e jx.Encoder
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(http.StatusUnprocessableEntity) })
			e.Field("message", func(e *jx.Encoder) { e.Str("invalid selection") })
			e.Field("problems", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, p := range verr.Problems {
						e.Str(string(p))
					}
				})
			})
		})
		writeJSON(w, http.StatusUnprocessableEntity, &e)
		return
	}

	var serr *order.SubmissionError
	if errors.As(err, &serr) {
		writeError(w, http.StatusBadGateway, serr.Error())
		return
	}

	switch {
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, order.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "submission already in flight")
	case errors.Is(err, cart.ErrIndexOutOfRange):
		// Stale index from the shell: a defect, not a user message.
		zctx.From(r.Context()).Error("Cart index out of range", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		zctx.From(r.Context()).Error("Unhandled facade error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
