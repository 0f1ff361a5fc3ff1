package pricing

import "slices"

// LegacyRule is a per-option price rule from the pre-variant schema.
// A rule with only CategoryID set prices the category itself; a rule with
// OptionID prices that option in any category unless CategoryID narrows it.
// The legacy "fixed" price type means a flat amount per unit.
type LegacyRule struct {
	CategoryID int64       `json:"category_id"`
	OptionID   int64       `json:"option_id"`
	BasePrice  int64       `json:"base_price"`
	PriceType  string      `json:"price_type"`
	Tiers      []PriceTier `json:"tiers"`
}

type LegacySelection struct {
	CategoryID int64
	OptionIDs  []int64
	Quantity   int
}

// LegacyLines returns one priced line per rule that applies to sel.
func LegacyLines(rules []LegacyRule, sel LegacySelection) []Line {
	var lines []Line
	for _, rule := range rules {
		if !rule.applies(sel) {
			continue
		}
		lines = append(lines, Line{Label: rule.label(), Pricer: rule.pricer()})
	}
	return lines
}

// CalculateLegacyPrice prices a legacy selection with the sum engine.
func CalculateLegacyPrice(rules []LegacyRule, sel LegacySelection) Quote {
	return NewSumEngine().Calculate(LegacyLines(rules, sel), sel.Quantity)
}

func (r LegacyRule) applies(sel LegacySelection) bool {
	if r.OptionID == 0 {
		return r.CategoryID != 0 && r.CategoryID == sel.CategoryID
	}
	if r.CategoryID != 0 && r.CategoryID != sel.CategoryID {
		return false
	}
	return slices.Contains(sel.OptionIDs, r.OptionID)
}

func (r LegacyRule) pricer() LinePricer {
	if Kind(r.PriceType) == KindTiered {
		return Tiered{Tiers: r.Tiers}
	}
	return PerUnit{Amount: r.BasePrice}
}

func (r LegacyRule) label() string {
	if r.OptionID == 0 {
		return "category"
	}
	return "option"
}
