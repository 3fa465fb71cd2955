// Package events publishes order lifecycle notifications to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"decor-shop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// Publisher delivers order events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Event is the envelope written to the broker.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	OrderID    uuid.UUID       `json:"orderId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderCreated is the payload of an order.created event.
type OrderCreated struct {
	UserID uuid.UUID       `json:"userId"`
	Total  decimal.Decimal `json:"total"`
	Items  []OrderLine     `json:"items"`
}

// OrderLine is a purchased product inside an OrderCreated payload.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderStatusChanged is the payload of an order.status_changed event.
type OrderStatusChanged struct {
	From          model.OrderStatus `json:"from"`
	To            model.OrderStatus `json:"to"`
	StockRestored bool              `json:"stockRestored"`
}

func newEvent(eventType string, orderID uuid.UUID, at time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: at.UTC(),
		Payload:    raw,
	}, nil
}

// NewOrderCreated builds the event announcing a new order.
func NewOrderCreated(order *model.Order, items []model.OrderItem) (Event, error) {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return newEvent(TypeOrderCreated, order.ID, order.CreatedAt, OrderCreated{
		UserID: order.UserID,
		Total:  order.Total,
		Items:  lines,
	})
}

// NewOrderStatusChanged builds the event announcing a status change.
func NewOrderStatusChanged(order *model.Order, from model.OrderStatus, stockRestored bool) (Event, error) {
	return newEvent(TypeOrderStatusChanged, order.ID, order.UpdatedAt, OrderStatusChanged{
		From:          from,
		To:            order.Status,
		StockRestored: stockRestored,
	})
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
