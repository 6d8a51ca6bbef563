package main

import (
	"fmt"
	"os"

	"chalkstone_backend/internal/engineers"
	"chalkstone_backend/platform/validator"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}
	cmd.AddCommand(newSeedEngineersCmd())
	return cmd
}

func newSeedEngineersCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "engineers",
		Short: "Upsert engineers from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			ctx := cmd.Context()
			_, pool, log, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			module := engineers.NewModule(pool, validator.New(), log)
			result, err := module.Service().ImportEngineers(ctx, f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "engineers: %d created, %d updated\n", result.Created, result.Updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "seed/engineers.yaml", "path to the engineers YAML file")
	return cmd
}
