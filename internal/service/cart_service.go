package service

import (
	"context"
	"fmt"
	"strings"

	"decor-shop/internal/model"
	"decor-shop/internal/pricing"
	"decor-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	calculator  *pricing.Calculator
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	calculator *pricing.Calculator,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		calculator:  calculator,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart returns the user's cart with a pricing preview.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return s.load(ctx, cart)
}

// AddItem adds quantity units of a product. The merged quantity must stay
// within the per-line limit and the product's current stock.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.CartItemRequest) (*model.CartResponse, error) {
	if req == nil {
		return nil, model.ErrInvalidQuantity
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return nil, model.ErrProductNotFound
	}
	if req.Quantity < model.MinCartQuantity || req.Quantity > model.MaxCartQuantity {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.requireProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	existing, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	item := &model.CartItem{CartID: cart.ID, ProductID: productID, Quantity: req.Quantity}
	if existing != nil {
		item.ID = existing.ID
		item.Quantity += existing.Quantity
	}

	if err := checkQuantity(product, item.Quantity); err != nil {
		s.logger.Debug().
			Str("product_id", productID).
			Int("quantity", item.Quantity).
			Int("stock", product.Stock).
			Msg("cart quantity rejected")
		return nil, err
	}

	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Str("product_id", productID).
		Int("quantity", item.Quantity).
		Msg("cart item added")

	return s.load(ctx, cart)
}

// SetQuantity replaces the quantity of an existing line.
func (s *cartService) SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error) {
	if quantity < model.MinCartQuantity || quantity > model.MaxCartQuantity {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.requireProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkQuantity(product, quantity); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.UpdateQuantity(ctx, cart.ID, product.ID, quantity); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.load(ctx, cart)
}

// RemoveItem deletes a line from the cart.
func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, strings.TrimSpace(productID)); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.load(ctx, cart)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.Clear(ctx, nil, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Str("cart_id", cart.ID.String()).Msg("cart cleared")

	return nil
}

func (s *cartService) requireProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

func checkQuantity(product *model.Product, quantity int) error {
	if quantity > model.MaxCartQuantity {
		return model.ErrInvalidQuantity
	}
	if quantity > product.Stock {
		return model.NewInsufficientStockError(product.ID, product.Name, product.Stock, quantity)
	}
	return nil
}

// load reads the cart lines and prices them with live product data.
func (s *cartService) load(ctx context.Context, cart *model.Cart) (*model.CartResponse, error) {
	items, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	return s.buildResponse(cart, items), nil
}

func (s *cartService) buildResponse(cart *model.Cart, items []model.CartItem) *model.CartResponse {
	resp := &model.CartResponse{
		ID:       cart.ID,
		Items:    make([]model.CartLine, 0, len(items)),
		Subtotal: decimal.Zero,
		Shipping: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
	if len(items) == 0 {
		return resp
	}

	breakdown := s.calculator.Calculate(pricingLines(items))

	for i, item := range items {
		price := breakdown.EffectivePrices[i]
		resp.Items = append(resp.Items, model.CartLine{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			EffectivePrice: price,
			LineTotal:      price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Available:      item.Product.Stock,
			Product:        item.Product.Summary(),
		})
	}

	resp.Subtotal = breakdown.Subtotal
	resp.Shipping = breakdown.Shipping
	resp.Tax = breakdown.Tax
	resp.Total = breakdown.Total

	return resp
}

func pricingLines(items []model.CartItem) []pricing.Line {
	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = pricing.Line{
			UnitPrice: item.Product.Price,
			Discount:  item.Product.Discount,
			OnSale:    item.Product.OnSale,
			Quantity:  item.Quantity,
		}
	}
	return lines
}
