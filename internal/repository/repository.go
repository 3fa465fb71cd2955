package repository

import (
	"context"
	"time"

	"decor-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetAll retrieves products matching the filter, newest first.
	GetAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// GetRelated returns up to limit products other than the given one. Products in
	// the same category come first, then on-sale and newest products.
	GetRelated(ctx context.Context, id, category string, limit int) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *model.Product) error

	// Update overwrites the mutable fields of an existing product.
	Update(ctx context.Context, p *model.Product) error

	// UpsertBatch inserts or refreshes products within the provided transaction.
	UpsertBatch(ctx context.Context, tx pgx.Tx, products []model.Product) error

	// DecrementStock removes quantity units from stock within the provided
	// transaction. It reports false when stock would go negative.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error)

	// IncrementStock returns quantity units to stock within the provided transaction.
	IncrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating it on first use.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// GetForUpdate locks and returns the user's cart, or nil when the user has none.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)

	// GetItems returns the cart's items joined with their current product rows.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// GetItemsForUpdate returns the cart's items and locks the referenced product
	// rows in ascending product ID order.
	GetItemsForUpdate(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error)

	// GetItem returns a single cart line, or nil when the product is not in the cart.
	GetItem(ctx context.Context, cartID uuid.UUID, productID string) (*model.CartItem, error)

	// UpsertItem stores the item quantity, inserting the line if needed.
	UpsertItem(ctx context.Context, item *model.CartItem) error

	// UpdateQuantity sets the quantity of an existing line.
	UpdateQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error

	// RemoveItem deletes a line from the cart.
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error

	// Clear deletes every line from the cart. A nil tx runs outside a transaction.
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetForUpdate locks an order row and returns it with its items.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus writes the status and restoration flag within the provided transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, stockRestored bool, updatedAt time.Time) error
}
