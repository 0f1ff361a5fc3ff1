// Package pricing computes unit and order totals for a configured product.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/merchconfig/internal/models"
)

// Quote is the priced result for one configuration at one quantity.
type Quote struct {
	Subtotal   int64           `json:"subtotal"`
	UnitPrice  int64           `json:"unit_price"`
	Total      int64           `json:"total"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// PriceInput holds the per-unit components of the current schema.
type PriceInput struct {
	BasePrice          int64
	FrontPrintPrice    int64
	BackPrintPrice     int64
	CustomizationPrice int64
	Quantity           int
	Tiers              []models.QuantityTier
}

// ResolveMultiplier returns the multiplier of the first tier containing qty.
// Tiers are scanned in the order given; no match yields 1.
func ResolveMultiplier(tiers []models.QuantityTier, qty int) decimal.Decimal {
	for _, tier := range tiers {
		if tier.Contains(qty) {
			return tier.Multiplier
		}
	}
	return decimal.NewFromInt(1)
}

// CalculatePrice prices the four standard lines through the multiplier engine.
func CalculatePrice(in PriceInput) Quote {
	return NewMultiplierEngine(in.Tiers).Calculate(StandardLines(in), in.Quantity)
}

// StandardLines returns the base, print and customization lines as flat per-unit amounts.
func StandardLines(in PriceInput) []Line {
	return []Line{
		{Label: "base", Pricer: PerUnit{Amount: in.BasePrice}},
		{Label: "print_front", Pricer: PerUnit{Amount: in.FrontPrintPrice}},
		{Label: "print_back", Pricer: PerUnit{Amount: in.BackPrintPrice}},
		{Label: "customization", Pricer: PerUnit{Amount: in.CustomizationPrice}},
	}
}

// roundUnit rounds half away from zero; unit subtotals are never negative.
func roundUnit(subtotal int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotal).Mul(multiplier).Round(0).IntPart()
}
