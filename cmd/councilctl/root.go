package main

import (
	"context"
	"fmt"

	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/db"
	"chalkstone_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "councilctl",
		Short:         "Operate the Chalkstone issue reporting service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// connect loads the full configuration and opens a pool.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, pool, log, nil
}
