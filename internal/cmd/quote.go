package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/email"
	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/pricing"
	"github.com/gitshopapp/merchconfig/internal/services"
)

type quoteOptions struct {
	file             string
	categoryID       int64
	fitID            int64
	materialID       int64
	colorID          int64
	printFrontID     int64
	printBackID      int64
	customizationIDs []int64
	quantity         string
	currency         string
	asJSON           bool
}

func newQuoteCmd() *cobra.Command {
	var opts quoteOptions

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a configuration against a catalog.yaml file",
		Long: `Replay a selection against a catalog file exactly as the widget would
and print the resulting quote. Ids that are not offered at their step are
dropped, so the printed configuration is what a customer would get.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts)
		},
	}

	flags := quoteCmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "catalog.yaml", "catalog file")
	flags.Int64Var(&opts.categoryID, "category", 0, "category id")
	flags.Int64Var(&opts.fitID, "fit", 0, "fit id")
	flags.Int64Var(&opts.materialID, "material", 0, "material id")
	flags.Int64Var(&opts.colorID, "color", 0, "colour id")
	flags.Int64Var(&opts.printFrontID, "front", 0, "front print method id")
	flags.Int64Var(&opts.printBackID, "back", 0, "back print method id")
	flags.Int64SliceVar(&opts.customizationIDs, "customization", nil, "customization ids")
	flags.StringVar(&opts.quantity, "qty", "100", "quantity")
	flags.StringVar(&opts.currency, "currency", "₽", "currency symbol for display")
	flags.BoolVar(&opts.asJSON, "json", false, "print the full quote as JSON")
	_ = quoteCmd.MarkFlagRequired("category")
	return quoteCmd
}

func runQuote(cmd *cobra.Command, opts quoteOptions) error {
	data, err := loadCatalogFile(opts.file)
	if err != nil {
		return err
	}

	loader := catalog.NewLoader(catalog.NewStaticRepository(*data), catalog.NewValidator(), 5*time.Second)
	service := services.NewConfiguratorService(loader, nil, nil, nil, services.ConfiguratorConfig{},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	sel := catalog.NewSelection()
	sel.CategoryID = opts.categoryID
	sel.FitID = opts.fitID
	sel.MaterialID = opts.materialID
	sel.ColorID = opts.colorID
	sel.PrintFrontID = opts.printFrontID
	sel.PrintBackID = opts.printBackID
	if opts.customizationIDs != nil {
		sel.CustomizationIDs = opts.customizationIDs
	}
	sel.Quantity = pricing.ClampQuantity(opts.quantity)

	result, err := service.Quote(cmd.Context(), sel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	snapshot, err := service.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	st := result.Selection
	lines := catalog.DescribeConfiguration(snapshot, models.OrderConfiguration{
		CategoryID:       st.CategoryID,
		FitID:            st.FitID,
		MaterialID:       st.MaterialID,
		ColorID:          st.ColorID,
		PrintFrontID:     st.PrintFrontID,
		PrintBackID:      st.PrintBackID,
		CustomizationIDs: st.CustomizationIDs,
		Quantity:         st.Quantity,
		UnitPrice:        result.Quote.UnitPrice,
		Multiplier:       result.Quote.Multiplier,
	})
	for _, line := range lines {
		if line.Label == "Unit price" {
			line.Value = email.FormatMoney(result.Quote.UnitPrice, opts.currency)
		}
		fmt.Fprintf(out, "%s: %s\n", line.Label, line.Value)
	}
	fmt.Fprintf(out, "Total: %s\n", email.FormatMoney(result.Quote.Total, opts.currency))

	switch {
	case !result.CanSubmit:
		fmt.Fprintln(out, "Orderable: no")
	case result.SmallBatch:
		fmt.Fprintln(out, "Orderable: yes (small batch, higher coefficient)")
	default:
		fmt.Fprintln(out, "Orderable: yes")
	}
	return nil
}
