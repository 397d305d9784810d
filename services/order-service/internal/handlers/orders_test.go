package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/orderflow-io/orderflow/services/order-service/internal/model"
	"github.com/orderflow-io/orderflow/services/order-service/internal/outbox"
)

// fakeStore mirrors the storage contract: an order row and its outbox
// event commit together or not at all, and a duplicate id is a no-op.
type fakeStore struct {
	orders   map[string]model.Order
	events   []outbox.Event
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]model.Order{}}
}

func (s *fakeStore) CreateWithEvent(_ context.Context, order model.Order, evt outbox.Event) (bool, error) {
	if s.failWith != nil {
		return false, s.failWith
	}
	if _, ok := s.orders[order.ID]; ok {
		return false, nil
	}
	s.orders[order.ID] = order
	s.events = append(s.events, evt)
	return true, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postOrder(t *testing.T, h *OrderHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	return rw
}

func TestCreateOrder(t *testing.T) {
	store := newFakeStore()
	h := NewOrderHandler(store, testLogger(), 0)

	rw := postOrder(t, h, `{"orderId":"abc123","status":"CREATED"}`)
	if rw.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rw.Code, rw.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["message"] != "Order created successfully" {
		t.Fatalf("unexpected message: %q", resp["message"])
	}

	order, ok := store.orders["abc123"]
	if !ok {
		t.Fatal("order row not written")
	}
	if order.Status != "CREATED" {
		t.Fatalf("unexpected status: %q", order.Status)
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(store.events))
	}
	evt := store.events[0]
	if evt.AggregateType != "order" || evt.AggregateID != "abc123" || evt.Type != "OrderCreated" {
		t.Fatalf("unexpected event fields: %+v", evt)
	}
	if evt.EventID == "" {
		t.Fatal("expected non-empty event id")
	}

	var payload struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if payload.OrderID != "abc123" || payload.Status != "CREATED" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	store := newFakeStore()
	h := NewOrderHandler(store, testLogger(), 0)

	cases := []struct {
		name string
		body string
	}{
		{"missing orderId", `{"status":"CREATED"}`},
		{"missing status", `{"orderId":"o1"}`},
		{"blank fields", `{"orderId":"  ","status":" "}`},
		{"invalid json", `{"orderId":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rw := postOrder(t, h, tc.body)
			if rw.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rw.Code)
			}
		})
	}

	if len(store.orders) != 0 || len(store.events) != 0 {
		t.Fatal("rejected requests must not reach storage")
	}
}

func TestCreateOrderIdempotent(t *testing.T) {
	store := newFakeStore()
	h := NewOrderHandler(store, testLogger(), 0)

	if rw := postOrder(t, h, `{"orderId":"o1","status":"NEW"}`); rw.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rw.Code)
	}
	if rw := postOrder(t, h, `{"orderId":"o1","status":"PAID"}`); rw.Code != http.StatusCreated {
		t.Fatalf("duplicate create: expected 201, got %d", rw.Code)
	}

	if len(store.orders) != 1 {
		t.Fatalf("expected 1 order row, got %d", len(store.orders))
	}
	if got := store.orders["o1"].Status; got != "NEW" {
		t.Fatalf("first write should win, got status %q", got)
	}
	if len(store.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(store.events))
	}
}

func TestCreateOrderStorageError(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("pq: connection refused")
	h := NewOrderHandler(store, testLogger(), 0)

	rw := postOrder(t, h, `{"orderId":"o1","status":"NEW"}`)
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["error"] != "Failed to create order" {
		t.Fatalf("unexpected error body: %q", resp["error"])
	}
	if strings.Contains(rw.Body.String(), "pq:") {
		t.Fatal("internal error text leaked to the caller")
	}
}

func TestCreateOrderMethodNotAllowed(t *testing.T) {
	h := NewOrderHandler(newFakeStore(), testLogger(), 0)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}

func TestGetOrder(t *testing.T) {
	store := newFakeStore()
	store.orders["o1"] = model.Order{ID: "o1", Status: "NEW"}
	h := NewOrderHandler(store, testLogger(), 0)

	req := httptest.NewRequest(http.MethodGet, "/orders/o1", nil)
	rw := httptest.NewRecorder()
	h.GetByID(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var got model.Order
	if err := json.Unmarshal(rw.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.ID != "o1" || got.Status != "NEW" {
		t.Fatalf("unexpected order: %+v", got)
	}

	reqMissing := httptest.NewRequest(http.MethodGet, "/orders/nope", nil)
	rwMissing := httptest.NewRecorder()
	h.GetByID(rwMissing, reqMissing)
	if rwMissing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rwMissing.Code)
	}
}
