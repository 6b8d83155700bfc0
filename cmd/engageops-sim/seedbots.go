package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"engageops-sim/internal/config"
	"engageops-sim/internal/logging"
	"engageops-sim/internal/store/postgres"
)

var (
	seedConfigPath string
	seedSchemaPath string
	seedCount      int
)

var seedBotsCmd = &cobra.Command{
	Use:   "seed-bots",
	Short: "Create bot accounts in the content store",
	Long:  "seed-bots inserts the given number of bot accounts so simulations have actors to attribute synthetic records to.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New()
		slog.SetDefault(logger)

		cfg, err := config.Load(seedConfigPath, seedSchemaPath)
		if err != nil {
			return err
		}

		st, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := logging.NewContext(context.Background(), logger)
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}

		created, err := st.SeedBotActors(ctx, seedCount)
		if err != nil {
			return err
		}
		logger.Info("bot accounts seeded", "requested", seedCount, "created", created)
		return nil
	},
}

func init() {
	seedBotsCmd.Flags().StringVar(&seedConfigPath, "config", "config/engageops.yaml", "Path to configuration YAML")
	seedBotsCmd.Flags().StringVar(&seedSchemaPath, "schema", "schemas/engageops.cue", "Path to CUE schema file")
	seedBotsCmd.Flags().IntVar(&seedCount, "count", 100, "Number of bot accounts to create")
}
