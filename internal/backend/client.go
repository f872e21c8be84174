// Package backend is the HTTP client for the ordering backend: catalog
// fetch and order submission. Wire encoding and decoding live in codec.go.
package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/merchpoint/poscart/internal/domain/catalog"
	"github.com/merchpoint/poscart/internal/domain/order"
)

// maxBodySize caps response bodies; a catalog is a few hundred KB at most.
const maxBodySize = 8 << 20

// Client talks to the ordering backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the backend at baseURL (no trailing slash).
// Requests are instrumented via otelhttp.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// FetchCatalog retrieves the full catalog from GET /api/products. Any
// non-200 status or malformed body is an error; the caller decides whether
// a cached snapshot can stand in.
func (c *Client) FetchCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch catalog")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("catalog fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read catalog body")
	}

	snap, err := decodeCatalog(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return snap, nil
}

// SubmitOrder posts doc to POST /api/orders and returns the server-assigned
// order id. Success is identified solely by the presence of the order id in
// the response body; a 2xx response without one fails with
// order.ErrNoOrderID.
func (c *Client) SubmitOrder(ctx context.Context, doc order.Document) (int64, error) {
	payload := encodeOrder(doc)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(payload))
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "submit order")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, errors.Errorf("order submission: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, errors.Wrap(err, "read order response")
	}

	orderID, found, err := decodeOrderID(body)
	if err != nil {
		return 0, errors.Wrap(err, "decode order response")
	}
	if !found {
		return 0, order.ErrNoOrderID
	}
	return orderID, nil
}

// Ping checks backend reachability for the readiness probe. It only cares
// that the catalog endpoint answers, not what it says.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api/products", nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "backend unreachable")
	}
	_ = resp.Body.Close()
	return nil
}
