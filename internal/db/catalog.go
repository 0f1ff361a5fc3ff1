package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/models"
)

// CatalogStore reads the catalog tables and applies the admin price edits.
// Category print methods, customizations, category customizations and
// customization price overrides are optional; a missing table reads as empty.
type CatalogStore struct {
	db TxBeginner
}

var _ catalog.Repository = (*CatalogStore)(nil)

func NewCatalogStore(db TxBeginner) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return listRows(ctx, s.db, "categories", `
		SELECT id, name, image_url, is_active, sort_order
		FROM categories
		WHERE is_active
		ORDER BY sort_order, id`,
		func(row pgx.CollectableRow) (models.Category, error) {
			var c models.Category
			err := row.Scan(&c.ID, &c.Name, &c.ImageURL, &c.Active, &c.SortOrder)
			return c, err
		})
}

func (s *CatalogStore) ListFits(ctx context.Context) ([]models.Fit, error) {
	return listRows(ctx, s.db, "fits", `
		SELECT id, name, sort_order FROM fits ORDER BY sort_order, id`,
		func(row pgx.CollectableRow) (models.Fit, error) {
			var f models.Fit
			err := row.Scan(&f.ID, &f.Name, &f.SortOrder)
			return f, err
		})
}

func (s *CatalogStore) ListMaterials(ctx context.Context) ([]models.Material, error) {
	return listRows(ctx, s.db, "materials", `
		SELECT id, name, description, sort_order FROM materials ORDER BY sort_order, id`,
		func(row pgx.CollectableRow) (models.Material, error) {
			var m models.Material
			err := row.Scan(&m.ID, &m.Name, &m.Description, &m.SortOrder)
			return m, err
		})
}

func (s *CatalogStore) ListProductVariants(ctx context.Context) ([]models.ProductVariant, error) {
	return listRows(ctx, s.db, "product_variants", `
		SELECT id, category_id, fit_id, material_id, base_price FROM product_variants ORDER BY id`,
		func(row pgx.CollectableRow) (models.ProductVariant, error) {
			var v models.ProductVariant
			err := row.Scan(&v.ID, &v.CategoryID, &v.FitID, &v.MaterialID, &v.BasePrice)
			return v, err
		})
}

func (s *CatalogStore) ListCategoryFits(ctx context.Context) ([]models.CategoryFit, error) {
	return listRows(ctx, s.db, "category_fits", `
		SELECT category_id, fit_id, sort_order FROM category_fits ORDER BY category_id, sort_order`,
		func(row pgx.CollectableRow) (models.CategoryFit, error) {
			var b models.CategoryFit
			err := row.Scan(&b.CategoryID, &b.FitID, &b.SortOrder)
			return b, err
		})
}

func (s *CatalogStore) ListCategoryMaterials(ctx context.Context) ([]models.CategoryMaterial, error) {
	return listRows(ctx, s.db, "category_materials", `
		SELECT category_id, material_id, sort_order FROM category_materials ORDER BY category_id, sort_order`,
		func(row pgx.CollectableRow) (models.CategoryMaterial, error) {
			var b models.CategoryMaterial
			err := row.Scan(&b.CategoryID, &b.MaterialID, &b.SortOrder)
			return b, err
		})
}

func (s *CatalogStore) ListPrintMethods(ctx context.Context) ([]models.PrintMethod, error) {
	return listRows(ctx, s.db, "print_methods", `
		SELECT id, name, price, image_url, sort_order FROM print_methods ORDER BY sort_order, id`,
		func(row pgx.CollectableRow) (models.PrintMethod, error) {
			var m models.PrintMethod
			err := row.Scan(&m.ID, &m.Name, &m.Price, &m.ImageURL, &m.SortOrder)
			return m, err
		})
}

func (s *CatalogStore) ListCategoryPrintMethods(ctx context.Context) ([]models.CategoryPrintMethod, error) {
	return optionalRows(listRows(ctx, s.db, "category_print_methods", `
		SELECT category_id, print_method_id, sort_order FROM category_print_methods ORDER BY category_id, sort_order`,
		func(row pgx.CollectableRow) (models.CategoryPrintMethod, error) {
			var b models.CategoryPrintMethod
			err := row.Scan(&b.CategoryID, &b.PrintMethodID, &b.SortOrder)
			return b, err
		}))
}

func (s *CatalogStore) ListCustomizations(ctx context.Context) ([]models.Customization, error) {
	return optionalRows(listRows(ctx, s.db, "customizations", `
		SELECT id, name, price, is_active, sort_order
		FROM customizations
		WHERE is_active
		ORDER BY sort_order, id`,
		func(row pgx.CollectableRow) (models.Customization, error) {
			var c models.Customization
			err := row.Scan(&c.ID, &c.Name, &c.Price, &c.Active, &c.SortOrder)
			return c, err
		}))
}

func (s *CatalogStore) ListCategoryCustomizations(ctx context.Context) ([]models.CategoryCustomization, error) {
	return optionalRows(listRows(ctx, s.db, "category_customizations", `
		SELECT category_id, customization_id, sort_order FROM category_customizations ORDER BY category_id, sort_order`,
		func(row pgx.CollectableRow) (models.CategoryCustomization, error) {
			var b models.CategoryCustomization
			err := row.Scan(&b.CategoryID, &b.CustomizationID, &b.SortOrder)
			return b, err
		}))
}

func (s *CatalogStore) ListCategoryCustomizationPrices(ctx context.Context) ([]models.CustomizationPriceOverride, error) {
	return optionalRows(listRows(ctx, s.db, "category_customization_prices", `
		SELECT category_id, customization_id, price FROM category_customization_prices`,
		func(row pgx.CollectableRow) (models.CustomizationPriceOverride, error) {
			var o models.CustomizationPriceOverride
			err := row.Scan(&o.CategoryID, &o.CustomizationID, &o.Price)
			return o, err
		}))
}

func (s *CatalogStore) ListQuantityTiers(ctx context.Context) ([]models.QuantityTier, error) {
	return listRows(ctx, s.db, "quantity_tiers", `
		SELECT id, min_qty, max_qty, multiplier::text, sort_order FROM quantity_tiers ORDER BY sort_order, id`,
		func(row pgx.CollectableRow) (models.QuantityTier, error) {
			var (
				t          models.QuantityTier
				multiplier string
			)
			if err := row.Scan(&t.ID, &t.MinQty, &t.MaxQty, &multiplier, &t.SortOrder); err != nil {
				return t, err
			}
			m, err := decimal.NewFromString(multiplier)
			if err != nil {
				return t, fmt.Errorf("invalid multiplier %q for tier %d: %w", multiplier, t.ID, err)
			}
			t.Multiplier = m
			return t, nil
		})
}

func (s *CatalogStore) ListColorPalettes(ctx context.Context) ([]models.ColorPaletteEntry, error) {
	return listRows(ctx, s.db, "color_palettes", `
		SELECT id, material_id, color_name, hex_code, swatch_image_url, is_active, sort_order
		FROM color_palettes
		WHERE is_active
		ORDER BY sort_order, id`,
		func(row pgx.CollectableRow) (models.ColorPaletteEntry, error) {
			var c models.ColorPaletteEntry
			err := row.Scan(&c.ID, &c.MaterialID, &c.ColorName, &c.HexCode, &c.SwatchImageURL, &c.Active, &c.SortOrder)
			return c, err
		})
}

func (s *CatalogStore) UpsertCustomizationPrice(ctx context.Context, categoryID, customizationID, price int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO category_customization_prices (category_id, customization_id, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (category_id, customization_id) DO UPDATE SET price = EXCLUDED.price`,
		categoryID, customizationID, price)
	if err != nil {
		return fmt.Errorf("failed to upsert customization price: %w", err)
	}
	return nil
}

func (s *CatalogStore) DeleteCustomizationPrice(ctx context.Context, categoryID, customizationID int64) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM category_customization_prices WHERE category_id = $1 AND customization_id = $2`,
		categoryID, customizationID)
	if err != nil {
		return fmt.Errorf("failed to delete customization price: %w", err)
	}
	return nil
}

func (s *CatalogStore) UpsertVariantPrice(ctx context.Context, categoryID, fitID, materialID, price int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO product_variants (category_id, fit_id, material_id, base_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (category_id, fit_id, material_id) DO UPDATE SET base_price = EXCLUDED.base_price`,
		categoryID, fitID, materialID, price)
	if err != nil {
		return fmt.Errorf("failed to upsert variant price: %w", err)
	}
	return nil
}

func (s *CatalogStore) DeleteVariant(ctx context.Context, categoryID, fitID, materialID int64) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM product_variants WHERE category_id = $1 AND fit_id = $2 AND material_id = $3`,
		categoryID, fitID, materialID)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	return nil
}

var bindingTables = []struct {
	table  string
	column string
}{
	{table: "category_fits", column: "fit_id"},
	{table: "category_materials", column: "material_id"},
	{table: "category_print_methods", column: "print_method_id"},
	{table: "category_customizations", column: "customization_id"},
}

// CopyCategoryBindings replaces every binding of category to with those of
// category from, in one transaction.
func (s *CatalogStore) CopyCategoryBindings(ctx context.Context, from, to int64) error {
	if from == to {
		return nil
	}
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		for _, b := range bindingTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE category_id = $1`, b.table), to); err != nil {
				return fmt.Errorf("failed to clear %s: %w", b.table, err)
			}
			query := fmt.Sprintf(`
				INSERT INTO %[1]s (category_id, %[2]s, sort_order)
				SELECT $1, %[2]s, sort_order FROM %[1]s WHERE category_id = $2`, b.table, b.column)
			if _, err := tx.Exec(ctx, query, to, from); err != nil {
				return fmt.Errorf("failed to copy %s: %w", b.table, err)
			}
		}
		return nil
	})
}

func listRows[T any](ctx context.Context, db DBTX, table, query string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return out, nil
}

func optionalRows[T any](rows []T, err error) ([]T, error) {
	if err != nil && isUndefinedTable(err) {
		return []T{}, nil
	}
	return rows, err
}
