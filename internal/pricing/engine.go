package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/merchconfig/internal/models"
)

type Kind string

const (
	// KindFixed is charged once per order regardless of quantity.
	KindFixed Kind = "fixed"
	// KindPerUnit adds a flat amount to every unit.
	KindPerUnit Kind = "per_unit"
	// KindTiered adds the price of the first tier matching the quantity to every unit.
	KindTiered Kind = "tiered"
)

// LinePricer resolves the amount of a single priced line for a quantity.
type LinePricer interface {
	Kind() Kind
	Price(quantity int) int64
}

type Line struct {
	Label  string
	Pricer LinePricer
}

// Engine turns independently priced lines into a quote.
type Engine interface {
	Calculate(lines []Line, quantity int) Quote
}

type Fixed struct {
	Amount int64
}

func (f Fixed) Kind() Kind { return KindFixed }

func (f Fixed) Price(int) int64 { return f.Amount }

type PerUnit struct {
	Amount int64
}

func (p PerUnit) Kind() Kind { return KindPerUnit }

func (p PerUnit) Price(int) int64 { return p.Amount }

type PriceTier struct {
	MinQty int   `json:"min_qty"`
	MaxQty *int  `json:"max_qty"`
	Price  int64 `json:"price"`
}

type Tiered struct {
	Tiers []PriceTier
}

func (t Tiered) Kind() Kind { return KindTiered }

func (t Tiered) Price(quantity int) int64 {
	return TieredPrice(t.Tiers, quantity)
}

// TieredPrice returns the price of the first tier containing quantity, or 0.
func TieredPrice(tiers []PriceTier, quantity int) int64 {
	for _, tier := range tiers {
		if quantity >= tier.MinQty && (tier.MaxQty == nil || quantity <= *tier.MaxQty) {
			return tier.Price
		}
	}
	return 0
}

// MultiplierEngine applies a quantity tier multiplier to the per-unit subtotal.
type MultiplierEngine struct {
	tiers []models.QuantityTier
}

func NewMultiplierEngine(tiers []models.QuantityTier) *MultiplierEngine {
	return &MultiplierEngine{tiers: tiers}
}

func (e *MultiplierEngine) Calculate(lines []Line, quantity int) Quote {
	quantity = capQuantity(quantity)
	return calculate(lines, quantity, ResolveMultiplier(e.tiers, quantity))
}

// SumEngine sums lines without any quantity multiplier.
type SumEngine struct{}

func NewSumEngine() *SumEngine {
	return &SumEngine{}
}

func (e *SumEngine) Calculate(lines []Line, quantity int) Quote {
	quantity = capQuantity(quantity)
	return calculate(lines, quantity, decimal.NewFromInt(1))
}

// capQuantity bounds quantity from above so totals cannot overflow. The
// lower bound is left to callers; a zero quantity prices to a zero total.
func capQuantity(quantity int) int {
	return min(quantity, MaxQuantity)
}

func calculate(lines []Line, quantity int, multiplier decimal.Decimal) Quote {
	var perUnit, once int64
	for _, line := range lines {
		if line.Pricer == nil {
			continue
		}
		amount := line.Pricer.Price(quantity)
		if line.Pricer.Kind() == KindFixed {
			once += amount
			continue
		}
		perUnit += amount
	}

	unit := roundUnit(perUnit, multiplier)
	return Quote{
		Subtotal:   perUnit,
		UnitPrice:  unit,
		Total:      unit*int64(quantity) + once,
		Multiplier: multiplier,
	}
}
