package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/gitshopapp/merchconfig/internal/db"
)

type seedConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
}

func newSeedCmd() *cobra.Command {
	var (
		file    string
		migrate bool
		timeout time.Duration
	)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a catalog.yaml file into the catalog tables",
		Long: `Parse and validate a catalog.yaml file, then upsert every row into
Postgres in a single transaction. Rows are matched by id; rows that are
not in the file are left in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg seedConfig
			if err := env.Parse(&cfg); err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}

			data, err := loadCatalogFile(file)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := db.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if migrate {
				if err := db.Migrate(ctx, pool); err != nil {
					return err
				}
			}

			rows, err := db.NewCatalogStore(pool).SeedCatalog(ctx, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d rows from %s\n", rows, file)
			return nil
		},
	}

	seedCmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "catalog file to seed")
	seedCmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before seeding")
	seedCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	return seedCmd
}
