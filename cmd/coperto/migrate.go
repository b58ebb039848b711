package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosuda/coperto/internal/store/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply all pending migrations, or revert the last one",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := postgres.New(cmd.Context(), cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked in loadConfig
			if err != nil {
				return err
			}
			defer store.Close()

			down := len(args) == 1 && args[0] == "down"
			if err := store.Migrate(down); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
