package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func legacyRules() []LegacyRule {
	return []LegacyRule{
		{CategoryID: 1, BasePrice: 500, PriceType: "fixed"},
		{OptionID: 10, BasePrice: 200, PriceType: "fixed"},
		{OptionID: 20, PriceType: "tiered", Tiers: []PriceTier{
			{MinQty: 1, MaxQty: intPtr(49), Price: 150},
			{MinQty: 50, Price: 100},
		}},
	}
}

func TestTieredPrice(t *testing.T) {
	t.Parallel()

	tiers := []PriceTier{
		{MinQty: 1, MaxQty: intPtr(49), Price: 100},
		{MinQty: 50, MaxQty: intPtr(99), Price: 80},
		{MinQty: 100, Price: 60},
	}

	tests := []struct {
		name  string
		tiers []PriceTier
		qty   int
		want  int64
	}{
		{name: "first tier", tiers: tiers, qty: 10, want: 100},
		{name: "middle tier", tiers: tiers, qty: 75, want: 80},
		{name: "open ended tier", tiers: tiers, qty: 500, want: 60},
		{name: "empty tiers", tiers: nil, qty: 10, want: 0},
		{name: "below every tier", tiers: tiers, qty: 0, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := TieredPrice(tc.tiers, tc.qty); got != tc.want {
				t.Fatalf("TieredPrice() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCalculateLegacyPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sel       LegacySelection
		wantUnit  int64
		wantTotal int64
	}{
		{
			name:      "sums flat prices for selected options",
			sel:       LegacySelection{CategoryID: 1, OptionIDs: []int64{10}, Quantity: 1},
			wantUnit:  700,
			wantTotal: 700,
		},
		{
			name:      "applies tiered option price by quantity",
			sel:       LegacySelection{CategoryID: 1, OptionIDs: []int64{20}, Quantity: 100},
			wantUnit:  600,
			wantTotal: 60000,
		},
		{
			name:      "no matching rules",
			sel:       LegacySelection{CategoryID: 99, Quantity: 1},
			wantUnit:  0,
			wantTotal: 0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateLegacyPrice(legacyRules(), tc.sel)
			if got.UnitPrice != tc.wantUnit || got.Total != tc.wantTotal {
				t.Fatalf("CalculateLegacyPrice() = %d/%d, want %d/%d", got.UnitPrice, got.Total, tc.wantUnit, tc.wantTotal)
			}
			if !got.Multiplier.Equal(decimal.NewFromInt(1)) {
				t.Fatalf("legacy multiplier = %s, want 1", got.Multiplier)
			}
		})
	}
}

func TestLegacyRuleScopedToCategory(t *testing.T) {
	t.Parallel()

	rules := []LegacyRule{{CategoryID: 2, OptionID: 10, BasePrice: 300, PriceType: "fixed"}}

	if got := CalculateLegacyPrice(rules, LegacySelection{CategoryID: 1, OptionIDs: []int64{10}, Quantity: 1}); got.UnitPrice != 0 {
		t.Fatalf("rule for another category applied: unit %d", got.UnitPrice)
	}
	if got := CalculateLegacyPrice(rules, LegacySelection{CategoryID: 2, OptionIDs: []int64{10}, Quantity: 1}); got.UnitPrice != 300 {
		t.Fatalf("scoped rule unit = %d, want 300", got.UnitPrice)
	}
}

func TestEnginesShareLineStrategies(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{Label: "base", Pricer: PerUnit{Amount: 100}},
		{Label: "setup", Pricer: Fixed{Amount: 1000}},
		{Label: "volume", Pricer: Tiered{Tiers: []PriceTier{{MinQty: 1, MaxQty: intPtr(9), Price: 50}, {MinQty: 10, Price: 20}}}},
		{Label: "empty"},
	}

	var engines = map[string]Engine{
		"sum":        NewSumEngine(),
		"multiplier": NewMultiplierEngine(standardTiers()),
	}

	sum := engines["sum"].Calculate(lines, 10)
	if sum.UnitPrice != 120 || sum.Total != 120*10+1000 {
		t.Fatalf("sum engine = %d/%d, want 120/2200", sum.UnitPrice, sum.Total)
	}

	multiplied := engines["multiplier"].Calculate(lines, 10)
	if multiplied.UnitPrice != 108 || multiplied.Total != 108*10+1000 {
		t.Fatalf("multiplier engine = %d/%d, want 108/2080", multiplied.UnitPrice, multiplied.Total)
	}
	if multiplied.Subtotal != 120 {
		t.Fatalf("subtotal = %d, want 120", multiplied.Subtotal)
	}
}

func TestClampQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want int
	}{
		{raw: "250", want: 250},
		{raw: " 42 ", want: 42},
		{raw: "0", want: 1},
		{raw: "-5", want: 1},
		{raw: "abc", want: 1},
		{raw: "", want: 1},
		{raw: "2147483647", want: MaxQuantity},
		{raw: "2147483648", want: MaxQuantity},
		{raw: "9223372036854775807", want: MaxQuantity},
		{raw: "99999999999999999999999", want: MaxQuantity},
		{raw: "-99999999999999999999999", want: 1},
	}

	for _, tc := range tests {
		if got := ClampQuantity(tc.raw); got != tc.want {
			t.Fatalf("ClampQuantity(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}

	if got := ClampQuantityValue(math.MaxInt); got != MaxQuantity {
		t.Fatalf("ClampQuantityValue(MaxInt) = %d, want %d", got, MaxQuantity)
	}

	if !SmallBatch(9) || SmallBatch(10) {
		t.Fatalf("SmallBatch threshold is wrong")
	}
}
