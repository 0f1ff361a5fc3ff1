package catalog

// Package catalog provides catalog shape validation.

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/gitshopapp/merchconfig/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks every record and the cross-table rules a snapshot relies on.
// It returns the first failure found.
func (v *Validator) Validate(data *Data) error {
	if data == nil {
		return fmt.Errorf("catalog data is required")
	}

	if err := validateRows(v, "categories", data.Categories, func(c models.Category) int64 { return c.ID }); err != nil {
		return err
	}
	if err := validateRows(v, "fits", data.Fits, func(f models.Fit) int64 { return f.ID }); err != nil {
		return err
	}
	if err := validateRows(v, "materials", data.Materials, func(m models.Material) int64 { return m.ID }); err != nil {
		return err
	}
	if err := validateRows(v, "product_variants", data.ProductVariants, func(pv models.ProductVariant) int64 { return pv.ID }); err != nil {
		return err
	}
	if err := validateRows(v, "category_fits", data.CategoryFits, nil); err != nil {
		return err
	}
	if err := validateRows(v, "category_materials", data.CategoryMaterials, nil); err != nil {
		return err
	}
	if err := validateRows(v, "print_methods", data.PrintMethods, func(m models.PrintMethod) int64 { return m.ID }); err != nil {
		return err
	}
	if err := validateRows(v, "category_print_methods", data.CategoryPrintMethods, nil); err != nil {
		return err
	}
	if err := validateRows(v, "customizations", data.Customizations, func(c models.Customization) int64 { return c.ID }); err != nil {
		return err
	}
	if err := validateRows(v, "category_customizations", data.CategoryCustomizations, nil); err != nil {
		return err
	}
	if err := validateRows(v, "category_customization_prices", data.CategoryCustomizationPrices, nil); err != nil {
		return err
	}
	if err := validateRows(v, "quantity_tiers", data.QuantityTiers, func(t models.QuantityTier) int64 { return t.ID }); err != nil {
		return err
	}
	if err := validateRows(v, "color_palettes", data.ColorPalettes, func(c models.ColorPaletteEntry) int64 { return c.ID }); err != nil {
		return err
	}

	for i, tier := range data.QuantityTiers {
		if err := v.validateTier(tier); err != nil {
			return fmt.Errorf("quantity_tiers %d validation failed: %w", i, err)
		}
	}

	triples := make(map[variantKey]struct{}, len(data.ProductVariants))
	for i, pv := range data.ProductVariants {
		key := variantKey{categoryID: pv.CategoryID, fitID: pv.FitID, materialID: pv.MaterialID}
		if _, exists := triples[key]; exists {
			return fmt.Errorf("product_variants %d: duplicate variant for category %d, fit %d, material %d", i, pv.CategoryID, pv.FitID, pv.MaterialID)
		}
		triples[key] = struct{}{}
	}

	return nil
}

func (v *Validator) validateTier(tier models.QuantityTier) error {
	if !tier.Multiplier.IsPositive() {
		return fmt.Errorf("multiplier must be positive")
	}
	if tier.MaxQty != nil && *tier.MaxQty < tier.MinQty {
		return fmt.Errorf("max_qty %d is below min_qty %d", *tier.MaxQty, tier.MinQty)
	}
	return nil
}

// validateRows runs struct validation on each row and, when id is given,
// rejects duplicate non-zero ids.
func validateRows[T any](v *Validator, table string, rows []T, id func(T) int64) error {
	seen := make(map[int64]struct{}, len(rows))
	for i, row := range rows {
		if err := v.validate.Struct(row); err != nil {
			return fmt.Errorf("%s %d validation failed: %w", table, i, err)
		}
		if id == nil {
			continue
		}
		rowID := id(row)
		if rowID == 0 {
			continue
		}
		if _, exists := seen[rowID]; exists {
			return fmt.Errorf("%s: duplicate id %d", table, rowID)
		}
		seen[rowID] = struct{}{}
	}
	return nil
}
