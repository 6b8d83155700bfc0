package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"engageops-sim/internal/admin"
	"engageops-sim/internal/config"
	"engageops-sim/internal/engine"
	"engageops-sim/internal/logging"
	"engageops-sim/internal/profile"
	"engageops-sim/internal/registry"
	"engageops-sim/internal/store/postgres"
	"engageops-sim/internal/synth"
)

var (
	serveConfigPath string
	serveSchemaPath string
	serveInterval   time.Duration
	serveLogFile    string
	serveListen     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engagement growth engine",
	Long:  "serve starts the update pass scheduler and the admin HTTP API against the configured content store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New()
		slog.SetDefault(logger)

		cfg, err := config.Load(serveConfigPath, serveSchemaPath)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), logger))
		defer cancel()

		st, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}

		profiles := profile.Builtin()
		if cfg.Profiles != "" {
			if _, statErr := os.Stat(cfg.Profiles); statErr == nil {
				profiles, err = profile.Load(cfg.Profiles)
				if err != nil {
					return err
				}
			}
		}

		exporter, cleanup, err := newExporter(cfg, serveLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		gen := synth.NewGenerator(st, st, synth.Options{
			ActorCap:          cfg.Synth.ActorCap,
			BatchSize:         cfg.Synth.BatchSize,
			ViewDurationMinMS: cfg.Synth.ViewDurationMinMS,
			ViewDurationMaxMS: cfg.Synth.ViewDurationMaxMS,
		}, nil, nil)
		reg := registry.New(nil)
		eng := engine.New(st, st, st, st, gen, reg, exporter, nil, time.Now)

		interval := serveInterval
		if interval == 0 {
			interval, err = cfg.PassInterval()
			if err != nil {
				return err
			}
		}

		listen := serveListen
		if listen == "" {
			listen = cfg.Admin.Listen
		}
		srv := admin.NewServer(eng, profiles)
		go func() {
			logger.Info("admin API listening", "addr", listen)
			if err := srv.Start(listen); err != nil {
				logger.Error("admin server failed", "error", err)
				os.Exit(1)
			}
		}()

		go eng.Run(ctx, interval)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		logger.Info("engagement simulation stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config/engageops.yaml", "Path to configuration YAML")
	serveCmd.Flags().StringVar(&serveSchemaPath, "schema", "schemas/engageops.cue", "Path to CUE schema file")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "Update pass interval (overrides config, e.g. 1m, 5m)")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Path to export snapshots (JSONL)")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Admin API listen address (overrides config)")
}
