package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/storefront/internal/backend"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/spf13/cobra"
)

// app is the state shared by all subcommands, filled in before any of them runs.
type app struct {
	configPath string

	cfg config.Config
	log *slog.Logger
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront cart and order store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("config.Load: %w", err)
			}

			log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("logger.New: %w", err)
			}

			a.cfg = cfg
			a.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "storefront.yaml", "path to the YAML config file")

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newMigrateCommand(a))
	cmd.AddCommand(newSeedCommand(a))
	cmd.AddCommand(newOrdersCommand(a))

	return cmd
}

func (a *app) openStore(ctx context.Context) (port.Store, error) {
	store, err := backend.Open(ctx, a.cfg.Store, a.log)
	if err != nil {
		return nil, fmt.Errorf("backend.Open: %w", err)
	}
	return store, nil
}

func (a *app) closeStore(store port.Store) {
	if err := store.Close(); err != nil {
		a.log.Error("store.Close", "error", err)
	}
}
