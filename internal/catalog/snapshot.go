// Package catalog holds the immutable product catalog and the selection
// store that derives what a customer may pick from it.
package catalog

import (
	"cmp"
	"slices"

	"github.com/gitshopapp/merchconfig/internal/models"
)

// Data is the full catalog dataset as loaded from the repository.
type Data struct {
	Categories                  []models.Category                   `json:"categories" yaml:"categories"`
	Fits                        []models.Fit                        `json:"fits" yaml:"fits"`
	Materials                   []models.Material                   `json:"materials" yaml:"materials"`
	ProductVariants             []models.ProductVariant             `json:"product_variants" yaml:"product_variants"`
	CategoryFits                []models.CategoryFit                `json:"category_fits" yaml:"category_fits"`
	CategoryMaterials           []models.CategoryMaterial           `json:"category_materials" yaml:"category_materials"`
	PrintMethods                []models.PrintMethod                `json:"print_methods" yaml:"print_methods"`
	CategoryPrintMethods        []models.CategoryPrintMethod        `json:"category_print_methods" yaml:"category_print_methods"`
	Customizations              []models.Customization              `json:"customizations" yaml:"customizations"`
	CategoryCustomizations      []models.CategoryCustomization      `json:"category_customizations" yaml:"category_customizations"`
	CategoryCustomizationPrices []models.CustomizationPriceOverride `json:"category_customization_prices" yaml:"category_customization_prices"`
	QuantityTiers               []models.QuantityTier               `json:"quantity_tiers" yaml:"quantity_tiers"`
	ColorPalettes               []models.ColorPaletteEntry          `json:"color_palettes" yaml:"color_palettes"`
}

type idSet map[int64]struct{}

func (s idSet) has(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) add(id int64) {
	s[id] = struct{}{}
}

type variantKey struct {
	categoryID int64
	fitID      int64
	materialID int64
}

type pairKey struct {
	first  int64
	second int64
}

// Snapshot is a read-only view over one catalog load. Every accessor
// returns copies, so a snapshot can be shared between goroutines.
type Snapshot struct {
	data Data

	variants         map[variantKey]int64
	variantFits      map[int64]idSet
	variantMaterials map[pairKey]idSet
	categories       idSet

	boundFits           map[int64]idSet
	boundMaterials      map[int64]idSet
	boundPrints         map[int64]idSet
	boundCustomizations map[int64]idSet
	overrides           map[pairKey]int64

	printPrices         map[int64]int64
	customizationPrices map[int64]int64
	colorsByMaterial    map[int64][]models.ColorPaletteEntry
	globalColors        []models.ColorPaletteEntry
}

// NewSnapshot copies data, drops inactive categories, customizations and
// colours, orders every entity table by sort order and builds the lookup
// indexes. Missing tables are treated as empty.
func NewSnapshot(data Data) *Snapshot {
	d := cloneData(data)
	d.Categories = slices.DeleteFunc(d.Categories, func(c models.Category) bool { return !c.Active })
	d.Customizations = slices.DeleteFunc(d.Customizations, func(c models.Customization) bool { return !c.Active })
	d.ColorPalettes = slices.DeleteFunc(d.ColorPalettes, func(c models.ColorPaletteEntry) bool { return !c.Active })

	slices.SortStableFunc(d.Categories, func(a, b models.Category) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
	slices.SortStableFunc(d.Fits, func(a, b models.Fit) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
	slices.SortStableFunc(d.Materials, func(a, b models.Material) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
	slices.SortStableFunc(d.PrintMethods, func(a, b models.PrintMethod) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
	slices.SortStableFunc(d.Customizations, func(a, b models.Customization) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
	slices.SortStableFunc(d.QuantityTiers, func(a, b models.QuantityTier) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
	slices.SortStableFunc(d.ColorPalettes, func(a, b models.ColorPaletteEntry) int { return cmp.Compare(a.SortOrder, b.SortOrder) })

	s := &Snapshot{
		data:                d,
		variants:            make(map[variantKey]int64, len(d.ProductVariants)),
		variantFits:         map[int64]idSet{},
		variantMaterials:    map[pairKey]idSet{},
		categories:          idSet{},
		boundFits:           map[int64]idSet{},
		boundMaterials:      map[int64]idSet{},
		boundPrints:         map[int64]idSet{},
		boundCustomizations: map[int64]idSet{},
		overrides:           make(map[pairKey]int64, len(d.CategoryCustomizationPrices)),
		printPrices:         make(map[int64]int64, len(d.PrintMethods)),
		customizationPrices: make(map[int64]int64, len(d.Customizations)),
		colorsByMaterial:    map[int64][]models.ColorPaletteEntry{},
	}

	for _, c := range d.Categories {
		s.categories.add(c.ID)
	}
	for _, v := range d.ProductVariants {
		key := variantKey{categoryID: v.CategoryID, fitID: v.FitID, materialID: v.MaterialID}
		if _, exists := s.variants[key]; !exists {
			s.variants[key] = v.BasePrice
		}
		addToIndex(s.variantFits, v.CategoryID, v.FitID)
		addToIndex(s.variantMaterials, pairKey{first: v.CategoryID, second: v.FitID}, v.MaterialID)
	}
	for _, b := range d.CategoryFits {
		addToIndex(s.boundFits, b.CategoryID, b.FitID)
	}
	for _, b := range d.CategoryMaterials {
		addToIndex(s.boundMaterials, b.CategoryID, b.MaterialID)
	}
	for _, b := range d.CategoryPrintMethods {
		addToIndex(s.boundPrints, b.CategoryID, b.PrintMethodID)
	}
	for _, b := range d.CategoryCustomizations {
		addToIndex(s.boundCustomizations, b.CategoryID, b.CustomizationID)
	}
	for _, o := range d.CategoryCustomizationPrices {
		s.overrides[pairKey{first: o.CategoryID, second: o.CustomizationID}] = o.Price
	}
	for _, m := range d.PrintMethods {
		if _, exists := s.printPrices[m.ID]; !exists {
			s.printPrices[m.ID] = m.Price
		}
	}
	for _, c := range d.Customizations {
		if _, exists := s.customizationPrices[c.ID]; !exists {
			s.customizationPrices[c.ID] = c.Price
		}
	}
	for _, c := range d.ColorPalettes {
		if c.MaterialID == nil {
			s.globalColors = append(s.globalColors, c)
			continue
		}
		s.colorsByMaterial[*c.MaterialID] = append(s.colorsByMaterial[*c.MaterialID], c)
	}

	return s
}

// EmptySnapshot returns a snapshot with no rows in any table.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(Data{})
}

func addToIndex[K comparable](index map[K]idSet, key K, id int64) {
	set, ok := index[key]
	if !ok {
		set = idSet{}
		index[key] = set
	}
	set.add(id)
}

// Data returns a deep copy of the normalized dataset.
func (s *Snapshot) Data() Data {
	return cloneData(s.data)
}

func (s *Snapshot) Categories() []models.Category { return cloneSlice(s.data.Categories) }

func (s *Snapshot) Fits() []models.Fit { return cloneSlice(s.data.Fits) }

func (s *Snapshot) Materials() []models.Material { return cloneSlice(s.data.Materials) }

func (s *Snapshot) PrintMethods() []models.PrintMethod { return cloneSlice(s.data.PrintMethods) }

func (s *Snapshot) Customizations() []models.Customization {
	return cloneSlice(s.data.Customizations)
}

func (s *Snapshot) QuantityTiers() []models.QuantityTier { return cloneTiers(s.data.QuantityTiers) }

// CategoryOrderable reports whether any variant exists for the category.
// Categories without variants are shown but cannot be ordered yet.
func (s *Snapshot) CategoryOrderable(categoryID int64) bool {
	return len(s.variantFits[categoryID]) > 0
}

// HasCategory reports whether the category is active in this snapshot.
func (s *Snapshot) HasCategory(categoryID int64) bool {
	return s.categories.has(categoryID)
}

// AvailableFits returns the curated fits for a category, falling back to the
// fits that appear in its variants when no curation exists.
func (s *Snapshot) AvailableFits(categoryID int64) []models.Fit {
	if categoryID == 0 {
		return []models.Fit{}
	}
	allowed := s.boundFits[categoryID]
	if len(allowed) == 0 {
		allowed = s.variantFits[categoryID]
	}
	return filterByID(s.data.Fits, allowed, func(f models.Fit) int64 { return f.ID })
}

// AvailableMaterials intersects the curated materials of a category with the
// materials that have a variant for (category, fit). Without curation only
// the variant set applies.
func (s *Snapshot) AvailableMaterials(categoryID, fitID int64) []models.Material {
	if categoryID == 0 || fitID == 0 {
		return []models.Material{}
	}
	byVariant := s.variantMaterials[pairKey{first: categoryID, second: fitID}]
	allowed := byVariant
	if curated := s.boundMaterials[categoryID]; len(curated) > 0 {
		allowed = idSet{}
		for id := range curated {
			if byVariant.has(id) {
				allowed.add(id)
			}
		}
	}
	return filterByID(s.data.Materials, allowed, func(m models.Material) int64 { return m.ID })
}

// AvailableColors returns the material's own palette, or the global palette
// when the material has none. The two are never merged.
func (s *Snapshot) AvailableColors(materialID int64) []models.ColorPaletteEntry {
	if materialID == 0 {
		return []models.ColorPaletteEntry{}
	}
	if colors := s.colorsByMaterial[materialID]; len(colors) > 0 {
		return cloneColors(colors)
	}
	return cloneColors(s.globalColors)
}

// AvailablePrintMethods returns the methods bound to a category, or the whole
// catalog when the category has no bindings or none is selected.
func (s *Snapshot) AvailablePrintMethods(categoryID int64) []models.PrintMethod {
	bound := s.boundPrints[categoryID]
	if categoryID == 0 || len(bound) == 0 {
		return s.PrintMethods()
	}
	return filterByID(s.data.PrintMethods, bound, func(m models.PrintMethod) int64 { return m.ID })
}

// AvailableCustomizations returns the customizations bound to a category, or
// every active customization when it has no bindings.
func (s *Snapshot) AvailableCustomizations(categoryID int64) []models.Customization {
	if categoryID == 0 {
		return []models.Customization{}
	}
	bound := s.boundCustomizations[categoryID]
	if len(bound) == 0 {
		return s.Customizations()
	}
	return filterByID(s.data.Customizations, bound, func(c models.Customization) int64 { return c.ID })
}

// BasePrice returns the variant price for the triple, or 0 when the triple
// is not orderable.
func (s *Snapshot) BasePrice(categoryID, fitID, materialID int64) int64 {
	if categoryID == 0 || fitID == 0 || materialID == 0 {
		return 0
	}
	return s.variants[variantKey{categoryID: categoryID, fitID: fitID, materialID: materialID}]
}

// PrintPrice returns the flat price of a print method, or 0.
func (s *Snapshot) PrintPrice(printMethodID int64) int64 {
	if printMethodID == 0 {
		return 0
	}
	return s.printPrices[printMethodID]
}

// CustomizationsPrice sums the distinct ids, preferring the category
// override. Ids missing from the catalog contribute nothing.
func (s *Snapshot) CustomizationsPrice(categoryID int64, customizationIDs []int64) int64 {
	var total int64
	seen := idSet{}
	for _, id := range customizationIDs {
		if seen.has(id) {
			continue
		}
		seen.add(id)

		price, ok := s.customizationPrices[id]
		if !ok {
			continue
		}
		if override, ok := s.overrides[pairKey{first: categoryID, second: id}]; ok {
			price = override
		}
		total += price
	}
	return total
}

// DefaultPrintMethod picks the first free method, else the first method.
// It returns 0 for an empty list.
func DefaultPrintMethod(methods []models.PrintMethod) int64 {
	for _, m := range methods {
		if m.Price == 0 {
			return m.ID
		}
	}
	if len(methods) > 0 {
		return methods[0].ID
	}
	return 0
}

func filterByID[T any](rows []T, allowed idSet, id func(T) int64) []T {
	out := make([]T, 0, len(allowed))
	for _, row := range rows {
		if allowed.has(id(row)) {
			out = append(out, row)
		}
	}
	return out
}

func cloneData(d Data) Data {
	return Data{
		Categories:                  cloneSlice(d.Categories),
		Fits:                        cloneSlice(d.Fits),
		Materials:                   cloneSlice(d.Materials),
		ProductVariants:             cloneSlice(d.ProductVariants),
		CategoryFits:                cloneSlice(d.CategoryFits),
		CategoryMaterials:           cloneSlice(d.CategoryMaterials),
		PrintMethods:                cloneSlice(d.PrintMethods),
		CategoryPrintMethods:        cloneSlice(d.CategoryPrintMethods),
		Customizations:              cloneSlice(d.Customizations),
		CategoryCustomizations:      cloneSlice(d.CategoryCustomizations),
		CategoryCustomizationPrices: cloneSlice(d.CategoryCustomizationPrices),
		QuantityTiers:               cloneTiers(d.QuantityTiers),
		ColorPalettes:               cloneColors(d.ColorPalettes),
	}
}

func cloneTiers(tiers []models.QuantityTier) []models.QuantityTier {
	out := cloneSlice(tiers)
	for i := range out {
		if out[i].MaxQty != nil {
			maxQty := *out[i].MaxQty
			out[i].MaxQty = &maxQty
		}
	}
	return out
}

func cloneColors(colors []models.ColorPaletteEntry) []models.ColorPaletteEntry {
	out := make([]models.ColorPaletteEntry, len(colors))
	copy(out, colors)
	for i := range out {
		if out[i].MaterialID != nil {
			materialID := *out[i].MaterialID
			out[i].MaterialID = &materialID
		}
	}
	return out
}

func cloneSlice[S ~[]E, E any](s S) S {
	out := make(S, len(s))
	copy(out, s)
	return out
}
