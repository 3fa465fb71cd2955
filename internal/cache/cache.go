// Package cache holds the catalog read cache. Product detail entries are
// removed on write; list and related entries are keyed by a catalog generation
// counter so a single increment invalidates all of them.
package cache

import (
	"context"
	"fmt"
	"strconv"

	"decor-shop/internal/model"
)

// GenerationKey stores the catalog generation counter.
const GenerationKey = "catalog:generation"

// Cache is a JSON value store with a catalog generation counter.
type Cache interface {
	// Get decodes the value under key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key with the configured TTL.
	Set(ctx context.Context, key string, value any) error

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error

	// Generation returns the current catalog generation.
	Generation(ctx context.Context) (int64, error)

	// BumpGeneration advances the catalog generation.
	BumpGeneration(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// ProductKey is the key for a single product.
func ProductKey(id string) string {
	return "product:" + id
}

// ProductListKey is the key for a filtered product page at generation gen.
func ProductListKey(gen int64, f model.ProductFilter) string {
	onSale := "any"
	if f.OnSale != nil {
		onSale = strconv.FormatBool(*f.OnSale)
	}
	return fmt.Sprintf("products:g%d:cat=%s:sale=%s:limit=%d:offset=%d", gen, f.Category, onSale, f.Limit, f.Offset)
}

// RelatedKey is the key for the related products of id at generation gen.
func RelatedKey(gen int64, id string, limit int) string {
	return fmt.Sprintf("related:g%d:%s:%d", gen, id, limit)
}

// Nop is a Cache that stores nothing. It is used when Redis is disabled.
type Nop struct{}

// NewNop returns a cache that always misses.
func NewNop() Nop { return Nop{} }

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Delete(context.Context, ...string) error        { return nil }
func (Nop) Generation(context.Context) (int64, error)      { return 0, nil }
func (Nop) BumpGeneration(context.Context) error           { return nil }
func (Nop) Close() error                                   { return nil }
