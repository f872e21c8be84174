package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/merchpoint/poscart/internal/domain/order"
)

// submitReq is the POST /api/orders body.
type submitReq struct {
	ClientName      string
	PaymentMethodID int64
	Comment         string
}

func decodeSubmitReq(body []byte) (submitReq, error) {
	var req submitReq
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "clientName":
			req.ClientName, err = d.Str()
		case "idPaymentMethod":
			req.PaymentMethodID, err = d.Int64()
		case "comment":
			req.Comment, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

// submitOrder serves POST /api/orders: one full submission attempt.
//
// A blank client name is a user abort, answered 200 with aborted=true and
// no side effects. Success answers 201 with the server-assigned order id.
// Failures map through mapError: the cart is intact and the shell may
// re-trigger.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	req, err := decodeSubmitReq(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}

	rec, err := h.workflow.Submit(r.Context(), req.ClientName, req.PaymentMethodID, req.Comment)
	if err != nil {
		mapError(w, r, err)
		return
	}

	var e jx.Encoder
	if rec == nil {
		// User abort: no submission happened.
		e.Obj(func(e *jx.Encoder) {
			e.Field("aborted", func(e *jx.Encoder) { e.Bool(true) })
		})
		writeJSON(w, http.StatusOK, &e)
		return
	}

	e.Obj(func(e *jx.Encoder) {
		e.Field("idOrder", func(e *jx.Encoder) { e.Int64(rec.OrderID) })
		e.Field("clientName", func(e *jx.Encoder) { e.Str(rec.Document.ClientName) })
		e.Field("submittedAt", func(e *jx.Encoder) { e.Str(rec.SubmittedAt.Format(time.RFC3339)) })
	})
	writeJSON(w, http.StatusCreated, &e)
}

// orderHistory serves GET /api/orders/history in submission order.
func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := h.history.List(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("orders", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, rec := range recs {
					encodeRecord(e, rec)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func encodeRecord(e *jx.Encoder, rec order.Record) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("idOrder", func(e *jx.Encoder) { e.Int64(rec.OrderID) })
		e.Field("clientName", func(e *jx.Encoder) { e.Str(rec.Document.ClientName) })
		e.Field("idPaymentMethod", func(e *jx.Encoder) { e.Int64(rec.Document.PaymentMethodID) })
		e.Field("comment", func(e *jx.Encoder) { e.Str(rec.Document.Comment) })
		e.Field("submittedAt", func(e *jx.Encoder) { e.Str(rec.SubmittedAt.Format(time.RFC3339)) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, line := range rec.Document.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("idProduct", func(e *jx.Encoder) { e.Int64(line.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(line.Quantity) })
						e.Field("idVariant", func(e *jx.Encoder) { e.Int64(line.VariantID) })
						e.Field("idFlavor", func(e *jx.Encoder) { e.Int64(line.FlavorID) })
					})
				}
			})
		})
	})
}

// orderState serves GET /api/orders/state: the workflow state plus the
// outcome of the last attempt, for display.
func (h *Handler) orderState(w http.ResponseWriter, _ *http.Request) {
	outcome, reason := h.workflow.LastOutcome()

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("state", func(e *jx.Encoder) { e.Str(string(h.workflow.State())) })
		e.Field("lastOutcome", func(e *jx.Encoder) { e.Str(string(outcome)) })
		e.Field("lastReason", func(e *jx.Encoder) { e.Str(reason) })
	})
	writeJSON(w, http.StatusOK, &e)
}
