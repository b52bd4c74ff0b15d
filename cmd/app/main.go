package main

import (
	"fmt"
	"os"

	"groundslot/internal/config"
	"groundslot/internal/logger"

	"github.com/spf13/cobra"
)

// @title Groundslot API
// @version 1.0
// @description Slot hold and booking arbitration across sales channels.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "groundslot",
		Short:         "Slot hold and booking arbitration service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newMigrateCmd(), newSweepCmd(), newTokenCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitFor(cfg.Env)
	return cfg, nil
}
