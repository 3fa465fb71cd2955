package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"decor-shop/internal/cache"
	"decor-shop/internal/model"
	"decor-shop/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultProductLimit = 12
	maxProductLimit     = 100
	defaultRelatedLimit = 4
	maxRelatedLimit     = 20
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	cache       cache.Cache
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProductService creates a new product service. Reads go through c.
func NewProductService(productRepo repository.ProductRepository, c cache.Cache, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       c,
		logger:      logger.With().Str("service", "product").Logger(),
		now:         time.Now,
	}
}

// List retrieves a page of products matching the filter.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultProductLimit
	}
	if filter.Limit > maxProductLimit {
		filter.Limit = maxProductLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Category = strings.TrimSpace(filter.Category)

	gen, cacheable := s.generation(ctx)
	key := cache.ProductListKey(gen, filter)

	var products []model.Product
	if cacheable && s.cacheGet(ctx, key, &products) {
		return products, nil
	}

	products, err := s.productRepo.GetAll(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if cacheable {
		s.cacheSet(ctx, key, products)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", filter.Limit).
		Int("offset", filter.Offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.ErrProductNotFound
	}

	key := cache.ProductKey(id)

	var cached model.Product
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	s.cacheSet(ctx, key, product)

	return product, nil
}

// GetRelated returns up to limit products from the same category, topped up
// with other on-sale and newest products when the category is small.
func (s *productService) GetRelated(ctx context.Context, id string, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	if limit > maxRelatedLimit {
		limit = maxRelatedLimit
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	gen, cacheable := s.generation(ctx)
	key := cache.RelatedKey(gen, product.ID, limit)

	var related []model.Product
	if cacheable && s.cacheGet(ctx, key, &related) {
		return related, nil
	}

	related, err = s.productRepo.GetRelated(ctx, product.ID, product.Category, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to get related products")
		return nil, fmt.Errorf("failed to get related products: %w", err)
	}

	if cacheable {
		s.cacheSet(ctx, key, related)
	}

	return related, nil
}

// Create adds a product to the catalogue.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.ErrInvalidProduct
	}
	if err := req.Validate(true); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if existing != nil {
		return nil, model.NewInvalidProductError(fmt.Sprintf("Product %s already exists", req.ID))
	}

	product := req.Product(s.now().UTC())
	if err := s.productRepo.Create(ctx, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx, product.ID)

	s.logger.Info().Str("product_id", product.ID).Msg("product created")

	return &product, nil
}

// Update overwrites an existing product. The ID comes from the path, not the body.
func (s *productService) Update(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.ErrInvalidProduct
	}
	req.ID = strings.TrimSpace(id)
	if req.ID == "" {
		return nil, model.ErrProductNotFound
	}
	if err := req.Validate(false); err != nil {
		return nil, err
	}

	product := req.Product(s.now().UTC())
	if err := s.productRepo.Update(ctx, &product); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidate(ctx, product.ID)

	s.logger.Info().Str("product_id", product.ID).Msg("product updated")

	return &product, nil
}

// generation returns the catalog generation. When the cache cannot report it
// the list and related caches are bypassed.
func (s *productService) generation(ctx context.Context) (int64, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read catalog generation")
		return 0, false
	}
	return gen, true
}

func (s *productService) cacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return hit
}

func (s *productService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate drops the product entry and every list and related entry.
func (s *productService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, cache.ProductKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("failed to evict product from cache")
	}
	if err := s.cache.BumpGeneration(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to bump catalog generation")
	}
}
