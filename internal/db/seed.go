package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gitshopapp/merchconfig/internal/catalog"
)

var serialTables = []string{
	"categories", "fits", "materials", "product_variants",
	"print_methods", "customizations", "quantity_tiers", "color_palettes",
}

// SeedCatalog upserts data into the catalog tables in one transaction. Rows
// are matched by id, or by their natural key for bindings and variants
// without an id. Tiers without an id are always inserted. Rows missing from
// data are left in place.
func (s *CatalogStore) SeedCatalog(ctx context.Context, data *catalog.Data) (int, error) {
	if data == nil {
		return 0, fmt.Errorf("catalog data is required")
	}

	batch := &pgx.Batch{}
	queueCatalog(batch, data)
	for _, table := range serialTables {
		batch.Queue(fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM %[1]s), 1))`,
			table))
	}

	rows := batch.Len()
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < rows; i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to seed catalog (statement %d): %w", i, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return rows - len(serialTables), nil
}

func queueCatalog(batch *pgx.Batch, d *catalog.Data) {
	for _, c := range d.Categories {
		batch.Queue(`
			INSERT INTO categories (id, name, image_url, is_active, sort_order) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, image_url = EXCLUDED.image_url,
				is_active = EXCLUDED.is_active, sort_order = EXCLUDED.sort_order`,
			c.ID, c.Name, c.ImageURL, c.Active, c.SortOrder)
	}
	for _, f := range d.Fits {
		batch.Queue(`
			INSERT INTO fits (id, name, sort_order) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sort_order = EXCLUDED.sort_order`,
			f.ID, f.Name, f.SortOrder)
	}
	for _, m := range d.Materials {
		batch.Queue(`
			INSERT INTO materials (id, name, description, sort_order) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
				sort_order = EXCLUDED.sort_order`,
			m.ID, m.Name, m.Description, m.SortOrder)
	}
	for _, v := range d.ProductVariants {
		if v.ID == 0 {
			batch.Queue(`
				INSERT INTO product_variants (category_id, fit_id, material_id, base_price) VALUES ($1, $2, $3, $4)
				ON CONFLICT (category_id, fit_id, material_id) DO UPDATE SET base_price = EXCLUDED.base_price`,
				v.CategoryID, v.FitID, v.MaterialID, v.BasePrice)
			continue
		}
		batch.Queue(`
			INSERT INTO product_variants (id, category_id, fit_id, material_id, base_price) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET category_id = EXCLUDED.category_id, fit_id = EXCLUDED.fit_id,
				material_id = EXCLUDED.material_id, base_price = EXCLUDED.base_price`,
			v.ID, v.CategoryID, v.FitID, v.MaterialID, v.BasePrice)
	}
	for _, b := range d.CategoryFits {
		batch.Queue(`
			INSERT INTO category_fits (category_id, fit_id, sort_order) VALUES ($1, $2, $3)
			ON CONFLICT (category_id, fit_id) DO UPDATE SET sort_order = EXCLUDED.sort_order`,
			b.CategoryID, b.FitID, b.SortOrder)
	}
	for _, b := range d.CategoryMaterials {
		batch.Queue(`
			INSERT INTO category_materials (category_id, material_id, sort_order) VALUES ($1, $2, $3)
			ON CONFLICT (category_id, material_id) DO UPDATE SET sort_order = EXCLUDED.sort_order`,
			b.CategoryID, b.MaterialID, b.SortOrder)
	}
	for _, m := range d.PrintMethods {
		batch.Queue(`
			INSERT INTO print_methods (id, name, price, image_url, sort_order) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
				image_url = EXCLUDED.image_url, sort_order = EXCLUDED.sort_order`,
			m.ID, m.Name, m.Price, m.ImageURL, m.SortOrder)
	}
	for _, b := range d.CategoryPrintMethods {
		batch.Queue(`
			INSERT INTO category_print_methods (category_id, print_method_id, sort_order) VALUES ($1, $2, $3)
			ON CONFLICT (category_id, print_method_id) DO UPDATE SET sort_order = EXCLUDED.sort_order`,
			b.CategoryID, b.PrintMethodID, b.SortOrder)
	}
	for _, c := range d.Customizations {
		batch.Queue(`
			INSERT INTO customizations (id, name, price, is_active, sort_order) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
				is_active = EXCLUDED.is_active, sort_order = EXCLUDED.sort_order`,
			c.ID, c.Name, c.Price, c.Active, c.SortOrder)
	}
	for _, b := range d.CategoryCustomizations {
		batch.Queue(`
			INSERT INTO category_customizations (category_id, customization_id, sort_order) VALUES ($1, $2, $3)
			ON CONFLICT (category_id, customization_id) DO UPDATE SET sort_order = EXCLUDED.sort_order`,
			b.CategoryID, b.CustomizationID, b.SortOrder)
	}
	for _, o := range d.CategoryCustomizationPrices {
		batch.Queue(`
			INSERT INTO category_customization_prices (category_id, customization_id, price) VALUES ($1, $2, $3)
			ON CONFLICT (category_id, customization_id) DO UPDATE SET price = EXCLUDED.price`,
			o.CategoryID, o.CustomizationID, o.Price)
	}
	for _, t := range d.QuantityTiers {
		if t.ID == 0 {
			batch.Queue(`
				INSERT INTO quantity_tiers (min_qty, max_qty, multiplier, sort_order) VALUES ($1, $2, $3::numeric, $4)`,
				t.MinQty, t.MaxQty, t.Multiplier.String(), t.SortOrder)
			continue
		}
		batch.Queue(`
			INSERT INTO quantity_tiers (id, min_qty, max_qty, multiplier, sort_order) VALUES ($1, $2, $3, $4::numeric, $5)
			ON CONFLICT (id) DO UPDATE SET min_qty = EXCLUDED.min_qty, max_qty = EXCLUDED.max_qty,
				multiplier = EXCLUDED.multiplier, sort_order = EXCLUDED.sort_order`,
			t.ID, t.MinQty, t.MaxQty, t.Multiplier.String(), t.SortOrder)
	}
	for _, c := range d.ColorPalettes {
		batch.Queue(`
			INSERT INTO color_palettes (id, material_id, color_name, hex_code, swatch_image_url, is_active, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET material_id = EXCLUDED.material_id, color_name = EXCLUDED.color_name,
				hex_code = EXCLUDED.hex_code, swatch_image_url = EXCLUDED.swatch_image_url,
				is_active = EXCLUDED.is_active, sort_order = EXCLUDED.sort_order`,
			c.ID, c.MaterialID, c.ColorName, c.HexCode, c.SwatchImageURL, c.Active, c.SortOrder)
	}
}
