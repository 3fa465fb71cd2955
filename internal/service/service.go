package service

import (
	"context"

	"decor-shop/internal/auth"
	"decor-shop/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List retrieves a page of products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetRelated retrieves products related to the given one.
	GetRelated(ctx context.Context, id string, limit int) ([]model.Product, error)

	// Create adds a product to the catalogue.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update overwrites an existing product.
	Update(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error)
}

// CartService defines operations on a user's cart.
type CartService interface {
	// GetCart returns the user's cart with a pricing preview.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	// AddItem adds quantity units of a product, merging with an existing line.
	AddItem(ctx context.Context, userID uuid.UUID, req *model.CartItemRequest) (*model.CartResponse, error)

	// SetQuantity replaces the quantity of an existing line.
	SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error)

	// RemoveItem deletes a line from the cart.
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error)

	// Clear empties the cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder converts the user's cart into an order.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order visible to the caller with its items and product details.
	GetByID(ctx context.Context, caller auth.Identity, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves the caller's orders, or all orders for an admin.
	List(ctx context.Context, caller auth.Identity, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus moves an order to a new status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.OrderResponse, error)
}

// OperationRecorder counts order operations by outcome.
type OperationRecorder interface {
	RecordOrderOperation(operation string, success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordOrderOperation(string, bool) {}
