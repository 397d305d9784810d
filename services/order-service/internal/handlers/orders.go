package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/orderflow-io/orderflow/services/order-service/internal/model"
	"github.com/orderflow-io/orderflow/services/order-service/internal/outbox"
)

// OrderStore is the transactional write path. CreateWithEvent must
// commit the order row and the outbox event as one atomic unit and
// report whether a new order was actually inserted.
type OrderStore interface {
	CreateWithEvent(ctx context.Context, order model.Order, evt outbox.Event) (bool, error)
	Get(ctx context.Context, id string) (model.Order, error)
}

type OrderHandler struct {
	store   OrderStore
	logger  *slog.Logger
	timeout time.Duration
}

func NewOrderHandler(store OrderStore, logger *slog.Logger, timeout time.Duration) *OrderHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OrderHandler{store: store, logger: logger, timeout: timeout}
}

type createOrderRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Status = strings.TrimSpace(req.Status)
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "orderId is required")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	evt, err := outbox.NewOrderCreated(req.OrderID, req.Status)
	if err != nil {
		h.logger.Error("encode order event failed", "order_id", req.OrderID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	// Bounded wait for a pool connection and the commit; a saturated
	// pool fails the request instead of hanging the caller.
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	created, err := h.store.CreateWithEvent(ctx, model.Order{ID: req.OrderID, Status: req.Status}, evt)
	if err != nil {
		h.logger.Error("order transaction failed", "order_id", req.OrderID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}
	if !created {
		h.logger.Info("duplicate order ignored", "order_id", req.OrderID)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Order created successfully"})
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.store.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.logger.Error("order lookup failed", "order_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
