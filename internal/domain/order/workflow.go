package order

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/merchpoint/poscart/internal/domain/cart"
)

// State names a position in the submission state machine.
type State string

const (
	StateIdle         State = "idle"
	StateAwaitingName State = "awaiting_name"
	StateSubmitting   State = "submitting"
	OutcomeSucceeded  State = "succeeded"
	OutcomeFailed     State = "failed"
	OutcomeNone       State = ""
)

// Sentinel errors for submission triggers.
var (
	// ErrEmptyCart means submission was triggered with nothing in the cart.
	// Callers treat it as a no-op, not a failure.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmissionInFlight means a submission is already running. Only one
	// may be in flight; the trigger is ignored until it resolves.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrNoOrderID means the backend answered without a server-assigned
	// order id. Per the wire contract that is the only success signal, so
	// its absence is a failure even on an otherwise well-formed response.
	ErrNoOrderID = errors.New("response carries no order id")
)

// SubmissionError wraps any failure between the Submitting transition and a
// confirmed order id. The cart is guaranteed untouched when it is returned.
type SubmissionError struct {
	Reason error
}

func (e *SubmissionError) Error() string {
	return "order submission failed: " + e.Reason.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Reason }

// Workflow runs order submissions: it collects the client name, projects the
// cart into a Document, submits it, and on confirmed acceptance appends the
// record to history and clears the cart. On any failure the cart is left
// exactly as it was and the user may re-trigger.
type Workflow struct {
	cart      *cart.Aggregate
	submitter Submitter
	history   HistoryStore
	now       func() time.Time

	mu          sync.Mutex
	state       State
	lastOutcome State
	lastReason  string
}

// NewWorkflow returns an idle workflow over the given cart.
func NewWorkflow(c *cart.Aggregate, submitter Submitter, history HistoryStore) *Workflow {
	return &Workflow{
		cart:      c,
		submitter: submitter,
		history:   history,
		now:       time.Now,
		state:     StateIdle,
	}
}

// State returns the current machine state for display.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastOutcome returns the outcome of the most recent submission attempt and
// its failure reason, if any. It is reset by the next attempt.
func (w *Workflow) LastOutcome() (State, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastOutcome, w.lastReason
}

// Submit runs one full submission attempt.
//
// An empty cart is a no-op and returns ErrEmptyCart. A blank clientName is a
// user-initiated abort: the machine returns to idle with no side effects and
// no error, and the returned record is nil. A second Submit while one is
// running returns ErrSubmissionInFlight.
//
// The cart snapshot is taken only after the machine has entered the
// submitting state, so a submission can never race a queued cart mutation.
// There is no cancellation once the network call has started; the attempt
// runs to success or failure before the machine goes idle again.
func (w *Workflow) Submit(ctx context.Context, clientName string, paymentMethodID int64, comment string) (*Record, error) {
	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if w.cart.Len() == 0 {
		w.mu.Unlock()
		return nil, ErrEmptyCart
	}
	w.state = StateAwaitingName
	w.lastOutcome, w.lastReason = OutcomeNone, ""
	w.mu.Unlock()

	if strings.TrimSpace(clientName) == "" {
		// User abort, not a failure.
		w.setState(StateIdle)
		return nil, nil
	}

	w.setState(StateSubmitting)

	items := w.cart.Snapshot()
	doc := BuildDocument(clientName, paymentMethodID, comment, items)

	orderID, err := w.submitter.SubmitOrder(ctx, doc)
	if err != nil {
		w.finish(OutcomeFailed, err.Error())
		return nil, &SubmissionError{Reason: err}
	}

	rec := Record{
		OrderID:     orderID,
		Document:    doc,
		SubmittedAt: w.now(),
	}
	lg := zctx.From(ctx)
	if err := w.history.Append(ctx, rec); err != nil {
		// The backend accepted the order; keeping the cart would re-submit
		// it, so the history write failure is logged and not propagated.
		lg.Warn("Order accepted but history write failed",
			zap.Int64("order_id", orderID), zap.Error(err))
	}
	if err := w.cart.Clear(ctx); err != nil {
		lg.Warn("Order accepted but cart clear failed",
			zap.Int64("order_id", orderID), zap.Error(err))
	}

	w.finish(OutcomeSucceeded, "")
	return &rec, nil
}

func (w *Workflow) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Workflow) finish(outcome State, reason string) {
	w.mu.Lock()
	w.state = StateIdle
	w.lastOutcome = outcome
	w.lastReason = reason
	w.mu.Unlock()
}
