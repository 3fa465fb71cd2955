// Package pricing computes effective prices and order totals. It performs no
// I/O and carries currency values at full precision; rounding for display is
// left to callers.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Config holds the shipping and tax constants applied to every calculation.
type Config struct {
	// FreeShippingThreshold is the subtotal at or above which shipping is free.
	FreeShippingThreshold decimal.Decimal

	// StandardShippingCost is charged when the subtotal is below the threshold.
	StandardShippingCost decimal.Decimal

	// TaxRate is applied to subtotal plus shipping.
	TaxRate decimal.Decimal
}

// DefaultConfig returns the default pricing configuration.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: decimal.NewFromInt(100),
		StandardShippingCost:  decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Line is one priced input: a unit price, its sale state and a quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Discount  int
	OnSale    bool
	Quantity  int
}

// Breakdown is the result of pricing a set of lines.
type Breakdown struct {
	// EffectivePrices holds the per-line effective unit price, in input order.
	EffectivePrices []decimal.Decimal
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
}

// Calculator prices carts and orders.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given configuration.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// EffectivePrice applies an active sale discount to a unit price.
func EffectivePrice(unitPrice decimal.Decimal, discount int, onSale bool) decimal.Decimal {
	if !onSale || discount <= 0 {
		return unitPrice
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(discount)).Div(hundred))
	return unitPrice.Mul(factor)
}

// Calculate prices every line and derives subtotal, shipping, tax and total.
func (c *Calculator) Calculate(lines []Line) Breakdown {
	b := Breakdown{
		EffectivePrices: make([]decimal.Decimal, len(lines)),
		Subtotal:        decimal.Zero,
	}

	for i, line := range lines {
		price := EffectivePrice(line.UnitPrice, line.Discount, line.OnSale)
		b.EffectivePrices[i] = price
		b.Subtotal = b.Subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	b.Shipping = c.Shipping(b.Subtotal)
	b.Tax = b.Subtotal.Add(b.Shipping).Mul(c.cfg.TaxRate)
	b.Total = b.Subtotal.Add(b.Shipping).Add(b.Tax)

	return b
}

// Shipping returns the shipping charge for a subtotal.
func (c *Calculator) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(c.cfg.FreeShippingThreshold) {
		return decimal.Zero
	}
	return c.cfg.StandardShippingCost
}
