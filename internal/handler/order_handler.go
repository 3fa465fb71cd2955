package handler

import (
	"net/http"

	"decor-shop/internal/model"
	"decor-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders. The order is built from the caller's cart.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), caller.UserID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filter := model.OrderFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		filter.Status = &status
	}

	orders, err := h.service.List(r.Context(), caller, filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID, err := orderIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), caller, orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.OrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// orderIDParam reads the {id} path parameter. A value that is not a UUID
// cannot name an order, so it is reported as not found.
func orderIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, model.ErrOrderNotFound
	}
	return id, nil
}
