package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitshopapp/merchconfig/internal/models"
)

// ConfigLine is one human-readable row of an order configuration.
type ConfigLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DescribeConfiguration resolves the ids of cfg against the snapshot.
// Ids that are no longer in the catalog are shown as "ID n".
func DescribeConfiguration(snapshot *Snapshot, cfg models.OrderConfiguration) []ConfigLine {
	if snapshot == nil {
		snapshot = EmptySnapshot()
	}
	d := snapshot.data

	lines := []ConfigLine{
		{Label: "Category", Value: nameOf(d.Categories, cfg.CategoryID, func(c models.Category) (int64, string) { return c.ID, c.Name })},
		{Label: "Fit", Value: nameOf(d.Fits, cfg.FitID, func(f models.Fit) (int64, string) { return f.ID, f.Name })},
		{Label: "Material", Value: nameOf(d.Materials, cfg.MaterialID, func(m models.Material) (int64, string) { return m.ID, m.Name })},
	}
	if cfg.ColorID != 0 {
		lines = append(lines, ConfigLine{Label: "Color", Value: nameOf(d.ColorPalettes, cfg.ColorID, func(c models.ColorPaletteEntry) (int64, string) { return c.ID, c.ColorName })})
	}
	printName := func(m models.PrintMethod) (int64, string) { return m.ID, m.Name }
	if cfg.PrintFrontID != 0 {
		lines = append(lines, ConfigLine{Label: "Front print", Value: nameOf(d.PrintMethods, cfg.PrintFrontID, printName)})
	}
	if cfg.PrintBackID != 0 {
		lines = append(lines, ConfigLine{Label: "Back print", Value: nameOf(d.PrintMethods, cfg.PrintBackID, printName)})
	}
	if len(cfg.CustomizationIDs) > 0 {
		names := make([]string, 0, len(cfg.CustomizationIDs))
		for _, id := range cfg.CustomizationIDs {
			names = append(names, nameOf(d.Customizations, id, func(c models.Customization) (int64, string) { return c.ID, c.Name }))
		}
		lines = append(lines, ConfigLine{Label: "Customizations", Value: strings.Join(names, ", ")})
	}
	lines = append(lines,
		ConfigLine{Label: "Quantity", Value: strconv.Itoa(cfg.Quantity)},
		ConfigLine{Label: "Unit price", Value: strconv.FormatInt(cfg.UnitPrice, 10)},
		ConfigLine{Label: "Multiplier", Value: cfg.Multiplier.String()},
	)
	return lines
}

func nameOf[T any](rows []T, id int64, fields func(T) (int64, string)) string {
	if id == 0 {
		return "-"
	}
	for _, row := range rows {
		if rowID, name := fields(row); rowID == id {
			return name
		}
	}
	return fmt.Sprintf("ID %d", id)
}
