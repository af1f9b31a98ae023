package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shoplite/apiserver/internal/services"
	"github.com/shoplite/apiserver/internal/store"
)

// OrderHandler provides HTTP handlers for orders.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs a handler over the order service.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// OrderRouter registers order routes on the given router. Placement is
// public; listing and detail are admin only.
func OrderRouter(
	r chi.Router,
	orders *services.OrderService,
	requireAuth func(http.Handler) http.Handler,
	requireAdmin func(http.Handler) http.Handler,
) {
	handler := NewOrderHandler(orders)

	r.Post("/", handler.PlaceOrder)
	r.With(requireAuth, requireAdmin).Get("/", handler.ListOrders)
	r.With(requireAuth, requireAdmin).Get("/{orderID}", handler.GetOrder)
}

// PlaceOrder places a new order: all requested items are validated,
// priced, and persisted in one transaction, or the whole request is
// rejected with field-keyed errors.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req services.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	order, err := h.orders.Place(r.Context(), req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeValidationErrors(w, verr.Fields)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	writeData(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	writeData(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "orderID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	writeData(w, http.StatusOK, order)
}
