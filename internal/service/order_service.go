package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"decor-shop/internal/auth"
	"decor-shop/internal/cache"
	"decor-shop/internal/events"
	"decor-shop/internal/model"
	"decor-shop/internal/pricing"
	"decor-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultOrderLimit = 20
	maxOrderLimit     = 100

	// afterCommitTimeout bounds cache eviction and event publishing once the
	// order is durable.
	afterCommitTimeout = 5 * time.Second
)

// orderService implements OrderService.
type orderService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	cartRepo          repository.CartRepository
	calculator        *pricing.Calculator
	cache             cache.Cache
	publisher         events.Publisher
	recorder          OperationRecorder
	strictTransitions bool
	logger            zerolog.Logger
	now               func() time.Time
}

// NewOrderService creates a new order service. A nil publisher or recorder
// disables events or metrics respectively.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	calculator *pricing.Calculator,
	productCache cache.Cache,
	publisher events.Publisher,
	recorder OperationRecorder,
	strictTransitions bool,
	logger zerolog.Logger,
) OrderService {
	if productCache == nil {
		productCache = cache.NewNop()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &orderService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		cartRepo:          cartRepo,
		calculator:        calculator,
		cache:             productCache,
		publisher:         publisher,
		recorder:          recorder,
		strictTransitions: strictTransitions,
		logger:            logger.With().Str("service", "order").Logger(),
		now:               time.Now,
	}
}

// CreateOrder converts the user's cart into an order. Stock checks, order
// rows, stock decrements and clearing the cart share one transaction, and the
// cart and product rows stay locked until it ends.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (resp *model.OrderResponse, err error) {
	defer func() {
		s.recorder.RecordOrderOperation("create", err == nil)
	}()

	if err = s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrEmptyCart
	}

	items, err := s.cartRepo.GetItemsForUpdate(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	for _, item := range items {
		if item.Product.Stock < item.Quantity {
			s.logger.Info().
				Str("user_id", userID.String()).
				Str("product_id", item.ProductID).
				Int("available", item.Product.Stock).
				Int("requested", item.Quantity).
				Msg("insufficient stock")
			return nil, model.NewInsufficientStockError(item.ProductID, item.Product.Name, item.Product.Stock, item.Quantity)
		}
	}

	breakdown := s.calculator.Calculate(pricingLines(items))

	now := s.now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          model.OrderStatusPending,
		Subtotal:        breakdown.Subtotal,
		Shipping:        breakdown.Shipping,
		Tax:             breakdown.Tax,
		Total:           breakdown.Total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(items))
	summaries := make([]model.ProductSummary, len(items))
	for i, item := range items {
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     breakdown.EffectivePrices[i],
		}
		summaries[i] = item.Product.Summary()
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	for _, item := range items {
		var ok bool
		ok, err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			err = model.NewInsufficientStockError(item.ProductID, item.Product.Name, item.Product.Stock, item.Quantity)
			return nil, err
		}
	}

	if err = s.cartRepo.Clear(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("item_count", len(orderItems)).
		Str("total", order.Total.String()).
		Msg("order created successfully")

	afterCtx, cancel := afterCommit(ctx)
	defer cancel()

	s.evictProducts(afterCtx, orderItems)

	if event, evErr := events.NewOrderCreated(order, orderItems); evErr == nil {
		s.publish(afterCtx, event)
	} else {
		s.logger.Error().Err(evErr).Msg("failed to build order event")
	}

	return &model.OrderResponse{
		Order:    *order,
		Items:    orderItems,
		Products: summaries,
	}, nil
}

// GetByID retrieves an order with its items and product details. Orders owned
// by someone else are reported as not found unless the caller is an admin.
func (s *orderService) GetByID(ctx context.Context, caller auth.Identity, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil || (!caller.IsAdmin() && order.UserID != caller.UserID) {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return s.buildResponse(ctx, order, items)
}

// List retrieves orders newest first. Non-admin callers only see their own.
func (s *orderService) List(ctx context.Context, caller auth.Identity, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultOrderLimit
	}
	if filter.Limit > maxOrderLimit {
		filter.Limit = maxOrderLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if !caller.IsAdmin() {
		userID := caller.UserID
		filter.UserID = &userID
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus moves an order to a new status. Entering CANCELLED returns the
// ordered quantities to stock once per order, however often it is cancelled.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, rawStatus string) (resp *model.OrderResponse, err error) {
	defer func() {
		s.recorder.RecordOrderOperation("update_status", err == nil)
	}()

	status, err := model.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, items, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	from := order.Status
	if s.strictTransitions && !from.CanTransitionTo(status) {
		return nil, model.NewInvalidTransitionError(from, status)
	}

	restored := false
	if status == model.OrderStatusCancelled && !order.StockRestored {
		for _, item := range items {
			if err = s.productRepo.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return nil, fmt.Errorf("failed to restore stock: %w", err)
			}
		}
		order.StockRestored = true
		restored = true
	}

	if from != status || restored {
		order.Status = status
		order.UpdatedAt = s.now().UTC()
		if err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status, order.StockRestored, order.UpdatedAt); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(from)).
		Str("to", string(status)).
		Bool("stock_restored", restored).
		Msg("order status updated")

	afterCtx, cancel := afterCommit(ctx)
	defer cancel()

	if restored {
		s.evictProducts(afterCtx, items)
	}

	if from != status {
		if event, evErr := events.NewOrderStatusChanged(order, from, restored); evErr == nil {
			s.publish(afterCtx, event)
		} else {
			s.logger.Error().Err(evErr).Msg("failed to build order event")
		}
	}

	return s.buildResponse(ctx, order, items)
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.ErrInvalidShippingAddress
	}

	if err := req.ShippingAddress.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		return model.ErrInvalidPaymentMethod
	}

	return nil
}

func (s *orderService) buildResponse(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.OrderResponse, error) {
	productIDs := make([]string, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	summaries := make([]model.ProductSummary, len(products))
	for i := range products {
		summaries[i] = products[i].Summary()
	}

	if items == nil {
		items = []model.OrderItem{}
	}

	return &model.OrderResponse{
		Order:    *order,
		Items:    items,
		Products: summaries,
	}, nil
}

// afterCommit detaches post-commit work from the request so a client that
// disconnects after the commit cannot cancel it.
func afterCommit(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), afterCommitTimeout)
}

// evictProducts drops cached product details whose stock just changed.
func (s *orderService) evictProducts(ctx context.Context, items []model.OrderItem) {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = cache.ProductKey(item.ProductID)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Msg("failed to evict products from cache")
	}
}

// publish sends an event after commit. Failures are logged only; the order
// is already durable.
func (s *orderService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("event_type", event.Type).
			Str("order_id", event.OrderID.String()).
			Msg("failed to publish order event")
	}
}
