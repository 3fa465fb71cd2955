package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinCartQuantity = 1
	MaxCartQuantity = 10
)

// Cart is the per-user staging area for products prior to checkout.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem is a product line in a cart together with the live product row.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Product   Product   `json:"-"`
}

// CartItemRequest is the payload for adding an item to the cart.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartQuantityRequest is the payload for changing a cart line quantity.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLine is a cart item as presented to the client.
type CartLine struct {
	ProductID      string          `json:"productId"`
	Quantity       int             `json:"quantity"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	Available      int             `json:"available"`
	Product        ProductSummary  `json:"product"`
}

// CartResponse is the cart view with a pricing preview.
type CartResponse struct {
	ID       uuid.UUID       `json:"id"`
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
