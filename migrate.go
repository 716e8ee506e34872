package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"comedyFinderAPI/internal/config"
	"comedyFinderAPI/services"
)

func migrateCmd() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the cache and venue tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is not set")
			}

			db, err := connectDB(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := services.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Println("Schema is up to date")

			if purge {
				n, err := services.PurgeExpired(cmd.Context(), db)
				if err != nil {
					return err
				}
				fmt.Printf("Purged %d expired cache rows\n", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge-expired", false, "also delete expired cache rows")
	return cmd
}
