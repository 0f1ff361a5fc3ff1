package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitshopapp/merchconfig/internal/catalog"
)

func newValidateCmd() *cobra.Command {
	var file string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog.yaml file offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadCatalogFile(file)
			if err != nil {
				return err
			}

			snapshot := catalog.NewSnapshot(*data)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s is valid\n", file)
			for _, category := range snapshot.Categories() {
				state := "orderable"
				if !snapshot.CategoryOrderable(category.ID) {
					state = "coming soon"
				}
				fmt.Fprintf(out, "  %d %s (%s)\n", category.ID, category.Name, state)
			}
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "catalog file to validate")
	return validateCmd
}

func loadCatalogFile(path string) (*catalog.Data, error) {
	data, err := catalog.NewParser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := catalog.NewValidator().Validate(data); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return data, nil
}
