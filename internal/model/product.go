package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a piece of furniture or decor in the catalogue.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Category  string          `json:"category" db:"category"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	OnSale    bool            `json:"onSale" db:"on_sale"`
	Discount  int             `json:"discount" db:"discount"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductSummary is the slice of a product attached to cart and order responses.
type ProductSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	OnSale   bool            `json:"onSale"`
	Discount int             `json:"discount"`
}

// Summary returns the response view of the product.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		OnSale:   p.OnSale,
		Discount: p.Discount,
	}
}

// ProductFilter narrows a catalogue listing.
type ProductFilter struct {
	Category string
	OnSale   *bool
	Limit    int
	Offset   int
}

// Prices are stored as NUMERIC(12,2).
const MaxPriceScale = 2

// MaxPrice is the exclusive upper bound of a product price.
var MaxPrice = decimal.New(1, 10)

// ProductRequest is the admin payload for creating or updating a product.
type ProductRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	OnSale   bool            `json:"onSale"`
	Discount int             `json:"discount"`
}

// Validate checks the request fields. ID is only checked when requireID is set.
func (r *ProductRequest) Validate(requireID bool) error {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)

	switch {
	case requireID && r.ID == "":
		return NewInvalidProductError("Product id is required")
	case r.Name == "":
		return NewInvalidProductError("Product name is required")
	case r.Category == "":
		return NewInvalidProductError("Product category is required")
	case r.Price.IsNegative():
		return NewInvalidProductError("Price cannot be negative")
	case !r.Price.Equal(r.Price.Truncate(MaxPriceScale)):
		return NewInvalidProductError("Price cannot have more than 2 decimal places")
	case r.Price.GreaterThanOrEqual(MaxPrice):
		return NewInvalidProductError("Price must be below " + MaxPrice.String())
	case r.Stock < 0:
		return NewInvalidProductError("Stock cannot be negative")
	case r.Discount < 0 || r.Discount > 100:
		return NewInvalidProductError("Discount must be between 0 and 100")
	}
	return nil
}

// Product converts the request into a product stamped with now.
func (r *ProductRequest) Product(now time.Time) Product {
	return Product{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Price:     r.Price,
		Stock:     r.Stock,
		OnSale:    r.OnSale,
		Discount:  r.Discount,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
