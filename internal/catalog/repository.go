package catalog

import (
	"context"

	"github.com/gitshopapp/merchconfig/internal/models"
)

// Repository lists every catalog table. Categories, customizations and
// colour palettes are expected to return active rows only; optional tables
// return an empty slice when they do not exist.
type Repository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListFits(ctx context.Context) ([]models.Fit, error)
	ListMaterials(ctx context.Context) ([]models.Material, error)
	ListProductVariants(ctx context.Context) ([]models.ProductVariant, error)
	ListCategoryFits(ctx context.Context) ([]models.CategoryFit, error)
	ListCategoryMaterials(ctx context.Context) ([]models.CategoryMaterial, error)
	ListPrintMethods(ctx context.Context) ([]models.PrintMethod, error)
	ListCategoryPrintMethods(ctx context.Context) ([]models.CategoryPrintMethod, error)
	ListCustomizations(ctx context.Context) ([]models.Customization, error)
	ListCategoryCustomizations(ctx context.Context) ([]models.CategoryCustomization, error)
	ListCategoryCustomizationPrices(ctx context.Context) ([]models.CustomizationPriceOverride, error)
	ListQuantityTiers(ctx context.Context) ([]models.QuantityTier, error)
	ListColorPalettes(ctx context.Context) ([]models.ColorPaletteEntry, error)
}

// StaticRepository serves a fixed dataset, typically parsed from a seed file.
type StaticRepository struct {
	data Data
}

func NewStaticRepository(data Data) *StaticRepository {
	return &StaticRepository{data: cloneData(data)}
}

func (r *StaticRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return staticRows(ctx, r.data.Categories)
}

func (r *StaticRepository) ListFits(ctx context.Context) ([]models.Fit, error) {
	return staticRows(ctx, r.data.Fits)
}

func (r *StaticRepository) ListMaterials(ctx context.Context) ([]models.Material, error) {
	return staticRows(ctx, r.data.Materials)
}

func (r *StaticRepository) ListProductVariants(ctx context.Context) ([]models.ProductVariant, error) {
	return staticRows(ctx, r.data.ProductVariants)
}

func (r *StaticRepository) ListCategoryFits(ctx context.Context) ([]models.CategoryFit, error) {
	return staticRows(ctx, r.data.CategoryFits)
}

func (r *StaticRepository) ListCategoryMaterials(ctx context.Context) ([]models.CategoryMaterial, error) {
	return staticRows(ctx, r.data.CategoryMaterials)
}

func (r *StaticRepository) ListPrintMethods(ctx context.Context) ([]models.PrintMethod, error) {
	return staticRows(ctx, r.data.PrintMethods)
}

func (r *StaticRepository) ListCategoryPrintMethods(ctx context.Context) ([]models.CategoryPrintMethod, error) {
	return staticRows(ctx, r.data.CategoryPrintMethods)
}

func (r *StaticRepository) ListCustomizations(ctx context.Context) ([]models.Customization, error) {
	return staticRows(ctx, r.data.Customizations)
}

func (r *StaticRepository) ListCategoryCustomizations(ctx context.Context) ([]models.CategoryCustomization, error) {
	return staticRows(ctx, r.data.CategoryCustomizations)
}

func (r *StaticRepository) ListCategoryCustomizationPrices(ctx context.Context) ([]models.CustomizationPriceOverride, error) {
	return staticRows(ctx, r.data.CategoryCustomizationPrices)
}

func (r *StaticRepository) ListQuantityTiers(ctx context.Context) ([]models.QuantityTier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneTiers(r.data.QuantityTiers), nil
}

func (r *StaticRepository) ListColorPalettes(ctx context.Context) ([]models.ColorPaletteEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneColors(r.data.ColorPalettes), nil
}

func staticRows[T any](ctx context.Context, rows []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneSlice(rows), nil
}
