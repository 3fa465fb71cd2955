package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus converts a raw value into an OrderStatus. Only the exact
// enum strings are accepted; anything else yields ErrInvalidStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, s := range OrderStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransitionTo reports whether the strict workflow allows moving from s to
// next. Staying in the same status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress is the delivery address snapshot stored with an order.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

// Validate reports ErrInvalidShippingAddress when a required field is blank.
func (a *ShippingAddress) Validate() error {
	for _, field := range []string{a.FullName, a.Address, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return ErrInvalidShippingAddress
		}
	}
	return nil
}

// Order represents a completed purchase.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping" db:"shipping"`
	Tax             decimal.Decimal `json:"tax" db:"tax"`
	Total           decimal.Decimal `json:"total" db:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	StockRestored   bool            `json:"-" db:"stock_restored"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. Price is the effective unit
// price at the time the order was placed.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// OrderStatusRequest represents the request payload for changing order status.
type OrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *OrderStatus
	Limit  int
	Offset int
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	Items    []OrderItem      `json:"items"`
	Products []ProductSummary `json:"products"`
}
