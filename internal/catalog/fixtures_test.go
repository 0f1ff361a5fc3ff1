package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/merchconfig/internal/models"
)

const (
	catTShirt = int64(1)
	catHoodie = int64(2)
	catCap    = int64(3)
	catOld    = int64(4)

	fitRegular  = int64(10)
	fitOversize = int64(11)
	fitSlim     = int64(12)

	matCotton  = int64(20)
	matPremium = int64(21)
	matFleece  = int64(22)

	printNone   = int64(30)
	printScreen = int64(31)
	printDTF    = int64(32)

	custLabel     = int64(40)
	custPackaging = int64(41)
	custRetired   = int64(42)

	colorWhite = int64(50)
	colorBlack = int64(51)
	colorGrey  = int64(52)
	colorNavy  = int64(53)
)

func int64Ptr(v int64) *int64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func testTier(minQty int, maxQty *int, multiplier string, sortOrder int) models.QuantityTier {
	return models.QuantityTier{
		ID:         int64(sortOrder),
		MinQty:     minQty,
		MaxQty:     maxQty,
		Multiplier: decimal.RequireFromString(multiplier),
		SortOrder:  sortOrder,
	}
}

func testData() Data {
	return Data{
		Categories: []models.Category{
			{ID: catHoodie, Name: "Hoodie", Active: true, SortOrder: 2},
			{ID: catTShirt, Name: "T-shirt", Active: true, SortOrder: 1},
			{ID: catCap, Name: "Cap", Active: true, SortOrder: 3},
			{ID: catOld, Name: "Retired", Active: false, SortOrder: 4},
		},
		Fits: []models.Fit{
			{ID: fitRegular, Name: "Regular", SortOrder: 1},
			{ID: fitOversize, Name: "Oversize", SortOrder: 2},
			{ID: fitSlim, Name: "Slim", SortOrder: 3},
		},
		Materials: []models.Material{
			{ID: matCotton, Name: "Cotton", SortOrder: 1},
			{ID: matPremium, Name: "Premium cotton", SortOrder: 2},
			{ID: matFleece, Name: "Fleece", SortOrder: 3},
		},
		ProductVariants: []models.ProductVariant{
			{ID: 1, CategoryID: catTShirt, FitID: fitRegular, MaterialID: matCotton, BasePrice: 1550},
			{ID: 2, CategoryID: catTShirt, FitID: fitRegular, MaterialID: matPremium, BasePrice: 1900},
			{ID: 3, CategoryID: catTShirt, FitID: fitOversize, MaterialID: matCotton, BasePrice: 1700},
			{ID: 4, CategoryID: catHoodie, FitID: fitOversize, MaterialID: matFleece, BasePrice: 3200},
			{ID: 5, CategoryID: catHoodie, FitID: fitSlim, MaterialID: matFleece, BasePrice: 3000},
		},
		CategoryFits: []models.CategoryFit{
			{CategoryID: catTShirt, FitID: fitOversize, SortOrder: 2},
			{CategoryID: catTShirt, FitID: fitRegular, SortOrder: 1},
		},
		CategoryMaterials: []models.CategoryMaterial{
			{CategoryID: catTShirt, MaterialID: matCotton, SortOrder: 1},
			{CategoryID: catTShirt, MaterialID: matFleece, SortOrder: 2},
		},
		PrintMethods: []models.PrintMethod{
			{ID: printNone, Name: "No print", Price: 0, SortOrder: 1},
			{ID: printScreen, Name: "Screen print", Price: 250, SortOrder: 2},
			{ID: printDTF, Name: "DTF", Price: 500, SortOrder: 3},
		},
		CategoryPrintMethods: []models.CategoryPrintMethod{
			{CategoryID: catHoodie, PrintMethodID: printScreen, SortOrder: 1},
			{CategoryID: catHoodie, PrintMethodID: printDTF, SortOrder: 2},
		},
		Customizations: []models.Customization{
			{ID: custLabel, Name: "Neck label", Price: 200, Active: true, SortOrder: 1},
			{ID: custPackaging, Name: "Packaging", Price: 100, Active: true, SortOrder: 2},
			{ID: custRetired, Name: "Retired option", Price: 999, Active: false, SortOrder: 3},
		},
		CategoryCustomizations: []models.CategoryCustomization{
			{CategoryID: catHoodie, CustomizationID: custPackaging, SortOrder: 1},
		},
		CategoryCustomizationPrices: []models.CustomizationPriceOverride{
			{CategoryID: catTShirt, CustomizationID: custLabel, Price: 150},
		},
		QuantityTiers: []models.QuantityTier{
			testTier(1, intPtr(9), "2.0", 1),
			testTier(10, intPtr(19), "0.9", 2),
			testTier(20, intPtr(49), "0.8", 3),
			testTier(50, intPtr(99), "0.7", 4),
			testTier(100, intPtr(199), "0.6", 5),
			testTier(200, intPtr(499), "0.5", 6),
			testTier(500, intPtr(999), "0.45", 7),
			testTier(1000, nil, "0.4", 8),
		},
		ColorPalettes: []models.ColorPaletteEntry{
			{ID: colorWhite, MaterialID: int64Ptr(matCotton), ColorName: "White", HexCode: "#FFFFFF", Active: true, SortOrder: 1},
			{ID: colorBlack, MaterialID: int64Ptr(matCotton), ColorName: "Black", HexCode: "#000000", Active: true, SortOrder: 2},
			{ID: colorGrey, ColorName: "Grey", HexCode: "#808080", Active: true, SortOrder: 3},
			{ID: colorNavy, MaterialID: int64Ptr(matPremium), ColorName: "Navy", HexCode: "#1F2A44", Active: false, SortOrder: 4},
		},
	}
}

func testSnapshot() *Snapshot {
	return NewSnapshot(testData())
}

func ids[T any](rows []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, id(row))
	}
	return out
}

func fitIDs(rows []models.Fit) []int64 { return ids(rows, func(f models.Fit) int64 { return f.ID }) }

func materialIDs(rows []models.Material) []int64 {
	return ids(rows, func(m models.Material) int64 { return m.ID })
}

func colorIDs(rows []models.ColorPaletteEntry) []int64 {
	return ids(rows, func(c models.ColorPaletteEntry) int64 { return c.ID })
}

func printIDs(rows []models.PrintMethod) []int64 {
	return ids(rows, func(m models.PrintMethod) int64 { return m.ID })
}

func customizationIDs(rows []models.Customization) []int64 {
	return ids(rows, func(c models.Customization) int64 { return c.ID })
}
