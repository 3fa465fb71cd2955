package handler

import (
	"net/http"

	"decor-shop/internal/model"
	"decor-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles the authenticated user's cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), caller.UserID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// SetQuantity handles PUT /api/cart/items/{productId}.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CartQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.SetQuantity(r.Context(), caller.UserID, chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), caller.UserID, chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Clear(r.Context(), caller.UserID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
