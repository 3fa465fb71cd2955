package repository

import (
	"context"
	"errors"
	"fmt"

	"decor-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
	       p.id, p.name, p.category, p.price, p.stock, p.on_sale, p.discount, p.created_at, p.updated_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
`

func scanCartItem(row pgx.Row, item *model.CartItem) error {
	p := &item.Product
	return row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.Stock,
		&p.OnSale,
		&p.Discount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func collectCartItems(rows pgx.Rows) ([]model.CartItem, error) {
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := scanCartItem(rows, &item); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// GetOrCreate returns the user's cart, creating it on first use.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at, updated_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get or create cart")
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return &cart, nil
}

// GetForUpdate locks and returns the user's cart, or nil when the user has none.
func (r *cartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
		FOR UPDATE
	`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock cart")
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	return &cart, nil
}

// GetItems returns the cart's items joined with their current product rows.
func (r *cartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := cartItemSelect + `
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.product_id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}

	return collectCartItems(rows)
}

// GetItemsForUpdate returns the cart's items and locks the referenced product
// rows. Rows are locked in product ID order so concurrent checkouts sharing
// products cannot deadlock.
func (r *cartRepository) GetItemsForUpdate(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error) {
	query := cartItemSelect + `
		WHERE ci.cart_id = $1
		ORDER BY p.id
		FOR UPDATE OF p
	`

	rows, err := tx.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to lock cart items")
		return nil, fmt.Errorf("failed to lock cart items: %w", err)
	}

	return collectCartItems(rows)
}

// GetItem returns a single cart line, or nil when the product is not in the cart.
func (r *cartRepository) GetItem(ctx context.Context, cartID uuid.UUID, productID string) (*model.CartItem, error) {
	query := cartItemSelect + `WHERE ci.cart_id = $1 AND ci.product_id = $2`

	var item model.CartItem
	err := scanCartItem(r.pool.QueryRow(ctx, query, cartID, productID), &item)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}

// UpsertItem stores the item quantity, inserting the line if needed.
func (r *cartRepository) UpsertItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id
	`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query, item.ID, item.CartID, item.ProductID, item.Quantity).Scan(&item.ID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", item.CartID.String()).
			Str("product_id", item.ProductID).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return r.touch(ctx, r.pool, item.CartID)
}

// UpdateQuantity sets the quantity of an existing line.
func (r *cartRepository) UpdateQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error {
	query := `UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2`

	tag, err := r.pool.Exec(ctx, query, cartID, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return r.touch(ctx, r.pool, cartID)
}

// RemoveItem deletes a line from the cart.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	tag, err := r.pool.Exec(ctx, query, cartID, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return r.touch(ctx, r.pool, cartID)
}

// Clear deletes every line from the cart. A nil tx runs outside a transaction.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	q := pick(r.pool, tx)

	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return r.touch(ctx, q, cartID)
}

func (r *cartRepository) touch(ctx context.Context, q querier, cartID uuid.UUID) error {
	if _, err := q.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}
