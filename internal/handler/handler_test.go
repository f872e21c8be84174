package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogcache "github.com/merchpoint/poscart/internal/catalog"
	"github.com/merchpoint/poscart/internal/domain/cart"
	"github.com/merchpoint/poscart/internal/domain/catalog"
	"github.com/merchpoint/poscart/internal/domain/order"
)

// --- Mock implementations ---

type mockFetcher struct {
	snap *catalog.Snapshot
	err  error
}

func (m *mockFetcher) FetchCatalog(_ context.Context) (*catalog.Snapshot, error) {
	return m.snap, m.err
}

type memSnapshotStore struct {
	stored *catalog.Snapshot
}

func (m *memSnapshotStore) Save(_ context.Context, snap *catalog.Snapshot) error {
	m.stored = snap
	return nil
}

func (m *memSnapshotStore) Load(_ context.Context) (*catalog.Snapshot, error) {
	return m.stored, nil
}

type memCartStore struct {
	items []cart.LineItem
}

func (m *memCartStore) Save(_ context.Context, items []cart.LineItem) error {
	m.items = items
	return nil
}

func (m *memCartStore) Load(_ context.Context) ([]cart.LineItem, error) {
	return m.items, nil
}

type mockSubmitter struct {
	orderID int64
	err     error
	calls   int
}

func (m *mockSubmitter) SubmitOrder(_ context.Context, _ order.Document) (int64, error) {
	m.calls++
	return m.orderID, m.err
}

type memHistory struct {
	records []order.Record
}

func (m *memHistory) Append(_ context.Context, rec order.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memHistory) List(_ context.Context) ([]order.Record, error) {
	return m.records, nil
}

// --- Fixture ---

type fixture struct {
	handler   http.Handler
	cart      *cart.Aggregate
	submitter *mockSubmitter
	history   *memHistory
	fetcher   *mockFetcher
}

func testCatalog() *catalog.Snapshot {
	return &catalog.Snapshot{
		Products: []catalog.Product{
			{
				ID:         1,
				Name:       "Pizza",
				BasePrice:  decimal.RequireFromString("6.00"),
				CategoryID: 10,
				Variants: []catalog.Variant{
					{ID: 11, Label: "Small", Price: decimal.RequireFromString("5.00")},
					{ID: 12, Label: "Large", Price: decimal.RequireFromString("8.00")},
				},
			},
			{ID: 2, Name: "Soda", BasePrice: decimal.RequireFromString("1.50"), CategoryID: 20},
		},
		Extras:         []catalog.Extra{{ID: 5, Name: "Cheese", Price: decimal.RequireFromString("1.00")}},
		Sauces:         []catalog.Sauce{{ID: 7, Name: "Garlic"}},
		PaymentMethods: []catalog.PaymentMethod{{ID: 1, Name: "Cash"}},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fetcher := &mockFetcher{snap: testCatalog()}
	cache := catalogcache.NewCache(fetcher, &memSnapshotStore{})
	agg := cart.New(&memCartStore{})
	submitter := &mockSubmitter{orderID: 42}
	history := &memHistory{}
	wf := order.NewWorkflow(agg, submitter, history)

	h := New(cache, agg, wf, history)
	return &fixture{
		handler:   h.Routes(),
		cart:      agg,
		submitter: submitter,
		history:   history,
		fetcher:   fetcher,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

const validItem = `{"idProduct":1,"idVariant":12,"extras":[{"idExtra":5,"quantity":2}],"sauces":[7],"quantity":3}`

// --- Tests ---

func TestGetCatalog(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/catalog", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", body["freshness"])
	assert.Len(t, body["products"], 2)
	assert.Len(t, body["extras"], 1)
	assert.Len(t, body["paymentMethods"], 1)
}

func TestGetCatalog_CategoryFilter(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/catalog?category=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	products := body["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "Pizza", products[0].(map[string]any)["name"])
}

func TestGetCatalog_Unavailable(t *testing.T) {
	f := newFixture(t)
	f.fetcher.snap = nil
	f.fetcher.err = errors.New("offline")

	rec, _ := f.do(t, http.MethodGet, "/api/catalog", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAddCartItem(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/cart/items", validItem)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	// (8 + 2*1) * 3
	assert.Equal(t, float64(30), body["total"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Large", items[0].(map[string]any)["variant"])
}

func TestAddCartItem_ValidationProblems(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/cart/items", `{"idProduct":1,"quantity":0}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problems := body["problems"].([]any)
	assert.Contains(t, problems, "missing_variant")
	assert.Contains(t, problems, "invalid_quantity")
	assert.Zero(t, f.cart.Len())
}

func TestAddCartItem_LegacyFlavorAlias(t *testing.T) {
	f := newFixture(t)
	// A product with flavors, addressed via the legacy "taste" field.
	f.fetcher.snap.Products[1].Flavors = []catalog.Flavor{{ID: 21, Label: "Cola"}}

	rec, _ := f.do(t, http.MethodPost, "/api/cart/items", `{"idProduct":2,"taste":21,"quantity":1}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	snap := f.cart.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(21), snap[0].FlavorID)
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/cart/items", `{"idProduct":99,"quantity":1}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceCartItem(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", validItem)

	rec, body := f.do(t, http.MethodPut, "/api/cart/items/0",
		`{"idProduct":1,"idVariant":11,"quantity":1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(5), body["total"])
}

func TestRemoveCartItem(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", validItem)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", `{"idProduct":2,"quantity":1}`)

	rec, body := f.do(t, http.MethodDelete, "/api/cart/items/0", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(1.5), body["total"])
}

// A stale index is a caller defect and maps to 500, not a user message.
func TestRemoveCartItem_OutOfRange(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodDelete, "/api/cart/items/5", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClearCart(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", validItem)

	rec, body := f.do(t, http.MethodPost, "/api/cart/clear", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])
}

// Blank client name: the submission endpoint is never called and the
// workflow stays idle.
func TestSubmitOrder_BlankNameAborts(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", validItem)

	rec, body := f.do(t, http.MethodPost, "/api/orders", `{"clientName":"","idPaymentMethod":1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["aborted"])
	assert.Zero(t, f.submitter.calls)
	assert.Equal(t, 1, f.cart.Len())

	_, state := f.do(t, http.MethodGet, "/api/orders/state", "")
	assert.Equal(t, "idle", state["state"])
}

func TestSubmitOrder_Success(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", validItem)

	rec, body := f.do(t, http.MethodPost, "/api/orders",
		`{"clientName":"Alice","idPaymentMethod":1,"comment":"table 4"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(42), body["idOrder"])
	assert.Zero(t, f.cart.Len())
	require.Len(t, f.history.records, 1)
	assert.Equal(t, int64(42), f.history.records[0].OrderID)
}

func TestSubmitOrder_FailurePreservesCart(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", validItem)
	f.submitter.err = errors.New("backend down")

	rec, body := f.do(t, http.MethodPost, "/api/orders", `{"clientName":"Alice","idPaymentMethod":1}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, body["message"], "backend down")
	assert.Equal(t, 1, f.cart.Len())
	assert.Empty(t, f.history.records)

	_, state := f.do(t, http.MethodGet, "/api/orders/state", "")
	assert.Equal(t, "failed", state["lastOutcome"])
}

func TestSubmitOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/orders", `{"clientName":"Alice","idPaymentMethod":1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.submitter.calls)
}

func TestOrderHistory(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/cart/items", validItem)
	_, _ = f.do(t, http.MethodPost, "/api/orders", `{"clientName":"Alice","idPaymentMethod":1}`)

	rec, body := f.do(t, http.MethodGet, "/api/orders/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	first := orders[0].(map[string]any)
	assert.Equal(t, float64(42), first["idOrder"])
	assert.Equal(t, "Alice", first["clientName"])
	assert.Len(t, first["items"], 1)
}

func TestOrderState_Idle(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/orders/state", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, "", body["lastOutcome"])
}
