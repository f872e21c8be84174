// Package health provides liveness and readiness probe endpoints for the
// terminal facade. Checks run in background goroutines at a fixed interval;
// probe handlers only read the last result, so a slow backend never slows a
// probe response.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
)

// CheckFunc reports nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// check holds one registered check and its last result.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	lastErr atomic.Pointer[error]
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.fn(ctx)
	c.lastErr.Store(&err)
}

func (c *check) err() error {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Health manages liveness and readiness checks.
type Health struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New returns a Health in a not-ready state; call SetReady(true) once
// initialization completes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness check. Register before Start.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, &check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a readiness check. Register before Start.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, &check{name: name, timeout: timeout, fn: fn})
}

// Start runs every registered check immediately and then at each interval,
// until Stop or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := append(append([]*check(nil), h.liveness...), h.readiness...)
	h.mu.Unlock()

	for _, c := range checks {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			c.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.run(ctx)
				}
			}
		}()
	}
}

// Stop cancels the background check goroutines.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady sets the manual readiness gate: true after initialization, false
// during graceful shutdown to shed traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint handles /livez: 200 while all liveness checks pass, else 503
// with per-check errors.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := append([]*check(nil), h.liveness...)
	h.mu.Unlock()
	writeStatus(w, failures(checks))
}

// ReadyEndpoint handles /readyz: 200 only when the manual gate is open and
// all readiness checks pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := append([]*check(nil), h.readiness...)
	h.mu.Unlock()

	fails := failures(checks)
	if !h.ready.Load() {
		fails["_readiness"] = "service is not ready"
	}
	writeStatus(w, fails)
}

func failures(checks []*check) map[string]string {
	fails := make(map[string]string)
	for _, c := range checks {
		if err := c.err(); err != nil {
			fails[c.name] = err.Error()
		}
	}
	return fails
}

func writeStatus(w http.ResponseWriter, fails map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	resp := statusResponse{Status: "ok"}
	if len(fails) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = fails
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GoroutineCountCheck returns a liveness CheckFunc that fails when the
// goroutine count exceeds threshold, to catch leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}
