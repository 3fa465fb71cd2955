// Package mocks provides testify mocks of the repository interfaces and of
// pgx.Tx for service-level tests.
package mocks

import (
	"context"
	"time"

	"decor-shop/internal/model"
	"decor-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

var (
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.CartRepository    = (*CartRepository)(nil)
	_ repository.OrderRepository   = (*OrderRepository)(nil)
	_ pgx.Tx                       = (*Tx)(nil)
)

func txOrNil(v any) pgx.Tx {
	if tx, ok := v.(pgx.Tx); ok {
		return tx
	}
	return nil
}

// ProductRepository is a mock implementation of repository.ProductRepository.
type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return txOrNil(args.Get(0)), args.Error(1)
}

func (m *ProductRepository) GetAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *ProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *ProductRepository) GetRelated(ctx context.Context, id, category string, limit int) ([]model.Product, error) {
	args := m.Called(ctx, id, category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepository) UpsertBatch(ctx context.Context, tx pgx.Tx, products []model.Product) error {
	return m.Called(ctx, tx, products).Error(0)
}

func (m *ProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error) {
	args := m.Called(ctx, tx, productID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *ProductRepository) IncrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	return m.Called(ctx, tx, productID, quantity).Error(0)
}

// CartRepository is a mock implementation of repository.CartRepository.
type CartRepository struct {
	mock.Mock
}

func (m *CartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *CartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *CartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *CartRepository) GetItemsForUpdate(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, tx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *CartRepository) GetItem(ctx context.Context, cartID uuid.UUID, productID string) (*model.CartItem, error) {
	args := m.Called(ctx, cartID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *CartRepository) UpsertItem(ctx context.Context, item *model.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *CartRepository) UpdateQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error {
	return m.Called(ctx, cartID, productID, quantity).Error(0)
}

func (m *CartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error {
	return m.Called(ctx, cartID, productID).Error(0)
}

func (m *CartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	return m.Called(ctx, tx, cartID).Error(0)
}

// OrderRepository is a mock implementation of repository.OrderRepository.
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return txOrNil(args.Get(0)), args.Error(1)
}

func (m *OrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

func (m *OrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

func (m *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *OrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *OrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, stockRestored bool, updatedAt time.Time) error {
	return m.Called(ctx, tx, id, status, stockRestored, updatedAt).Error(0)
}

// Tx is a minimal mock implementation of pgx.Tx. Only Commit and Rollback
// are recorded; the remaining methods are inert.
type Tx struct {
	mock.Mock
	Committed  bool
	RolledBack bool
}

func (m *Tx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.Committed = true
	return args.Error(0)
}

func (m *Tx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.RolledBack = true
	return args.Error(0)
}

func (m *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *Tx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *Tx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *Tx) Conn() *pgx.Conn                                               { return nil }
