package main

import (
	"fmt"

	"groundslot/internal/config"
	"groundslot/internal/db"
	"groundslot/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreBackend != config.StoreBackendPostgres {
				return fmt.Errorf("migrate needs STORE_BACKEND=%s", config.StoreBackendPostgres)
			}

			database, err := db.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
				return err
			}
			logger.Info("Migrations completed", "path", cfg.MigrationsPath)
			return nil
		},
	}
}
