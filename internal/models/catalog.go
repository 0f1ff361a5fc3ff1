package models

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog ids are positive; zero means "not selected".
// Prices are whole currency units.

type Category struct {
	ID        int64  `json:"id" yaml:"id" validate:"required,gt=0"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	ImageURL  string `json:"image_url,omitempty" yaml:"image_url" validate:"omitempty,url"`
	Active    bool   `json:"is_active" yaml:"is_active"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

type Fit struct {
	ID        int64  `json:"id" yaml:"id" validate:"required,gt=0"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

type Material struct {
	ID          int64  `json:"id" yaml:"id" validate:"required,gt=0"`
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description"`
	SortOrder   int    `json:"sort_order" yaml:"sort_order"`
}

// ProductVariant is the orderable (category, fit, material) triple.
type ProductVariant struct {
	ID         int64 `json:"id" yaml:"id" validate:"gte=0"`
	CategoryID int64 `json:"category_id" yaml:"category_id" validate:"required,gt=0"`
	FitID      int64 `json:"fit_id" yaml:"fit_id" validate:"required,gt=0"`
	MaterialID int64 `json:"material_id" yaml:"material_id" validate:"required,gt=0"`
	BasePrice  int64 `json:"base_price" yaml:"base_price" validate:"gte=0"`
}

type CategoryFit struct {
	CategoryID int64 `json:"category_id" yaml:"category_id" validate:"required,gt=0"`
	FitID      int64 `json:"fit_id" yaml:"fit_id" validate:"required,gt=0"`
	SortOrder  int   `json:"sort_order" yaml:"sort_order"`
}

type CategoryMaterial struct {
	CategoryID int64 `json:"category_id" yaml:"category_id" validate:"required,gt=0"`
	MaterialID int64 `json:"material_id" yaml:"material_id" validate:"required,gt=0"`
	SortOrder  int   `json:"sort_order" yaml:"sort_order"`
}

type CategoryPrintMethod struct {
	CategoryID    int64 `json:"category_id" yaml:"category_id" validate:"required,gt=0"`
	PrintMethodID int64 `json:"print_method_id" yaml:"print_method_id" validate:"required,gt=0"`
	SortOrder     int   `json:"sort_order" yaml:"sort_order"`
}

type CategoryCustomization struct {
	CategoryID      int64 `json:"category_id" yaml:"category_id" validate:"required,gt=0"`
	CustomizationID int64 `json:"customization_id" yaml:"customization_id" validate:"required,gt=0"`
	SortOrder       int   `json:"sort_order" yaml:"sort_order"`
}

// CustomizationPriceOverride replaces a customization's base price within one category.
type CustomizationPriceOverride struct {
	CategoryID      int64 `json:"category_id" yaml:"category_id" validate:"required,gt=0"`
	CustomizationID int64 `json:"customization_id" yaml:"customization_id" validate:"required,gt=0"`
	Price           int64 `json:"price" yaml:"price" validate:"gte=0"`
}

// ColorPaletteEntry belongs to a material, or to the global palette when MaterialID is nil.
type ColorPaletteEntry struct {
	ID             int64  `json:"id" yaml:"id" validate:"required,gt=0"`
	MaterialID     *int64 `json:"material_id" yaml:"material_id" validate:"omitempty,gt=0"`
	ColorName      string `json:"color_name" yaml:"color_name" validate:"required"`
	HexCode        string `json:"hex_code" yaml:"hex_code" validate:"omitempty,hexcolor"`
	SwatchImageURL string `json:"swatch_image_url,omitempty" yaml:"swatch_image_url" validate:"omitempty,url"`
	Active         bool   `json:"is_active" yaml:"is_active"`
	SortOrder      int    `json:"sort_order" yaml:"sort_order"`
}

type PrintMethod struct {
	ID        int64  `json:"id" yaml:"id" validate:"required,gt=0"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	Price     int64  `json:"price" yaml:"price" validate:"gte=0"`
	ImageURL  string `json:"image_url,omitempty" yaml:"image_url" validate:"omitempty,url"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

type Customization struct {
	ID        int64  `json:"id" yaml:"id" validate:"required,gt=0"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	Price     int64  `json:"price" yaml:"price" validate:"gte=0"`
	Active    bool   `json:"is_active" yaml:"is_active"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// QuantityTier scales the unit price for quantities in [MinQty, MaxQty].
// A nil MaxQty is open-ended.
type QuantityTier struct {
	ID         int64           `json:"id" yaml:"id" validate:"gte=0"`
	MinQty     int             `json:"min_qty" yaml:"min_qty" validate:"gte=1"`
	MaxQty     *int            `json:"max_qty" yaml:"max_qty"`
	Multiplier decimal.Decimal `json:"multiplier" yaml:"multiplier"`
	SortOrder  int             `json:"sort_order" yaml:"sort_order"`
}

// Contains reports whether qty falls inside the tier bounds.
func (t QuantityTier) Contains(qty int) bool {
	if qty < t.MinQty {
		return false
	}
	return t.MaxQty == nil || qty <= *t.MaxQty
}

// IsVeryDarkColor reports whether a #RRGGBB colour is dark enough that a
// light outline is needed for it to stay visible on a dark background.
func IsVeryDarkColor(hex string) bool {
	normalized := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(normalized) != 6 {
		return false
	}
	rgb, err := strconv.ParseUint(normalized, 16, 32)
	if err != nil {
		return false
	}
	r := float64((rgb >> 16) & 0xff)
	g := float64((rgb >> 8) & 0xff)
	b := float64(rgb & 0xff)
	luminance := (0.2126*r + 0.7152*g + 0.0722*b) / 255
	return luminance < 0.12
}
