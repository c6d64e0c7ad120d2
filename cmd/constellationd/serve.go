package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emotion-constellation/constellation-core/internal/daemon"
	"github.com/emotion-constellation/constellation-core/internal/dataset"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the frame loop and serve HTTP, websocket and gRPC health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger.SetDefault(logger.NewFormat(cfg.LogFormat, cfg.LogLevel, os.Stdout))

			loader := dataset.NewLoader(cfg.Dataset.Dir)
			ds, err := loader.Load(cfg.Dataset.Locale)
			if err != nil {
				logger.Error("failed to load dataset", "dir", cfg.Dataset.Dir, "error", err)
				return err
			}

			d, err := daemon.New(cfg, ds, loader, utils.SystemClock{})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := d.Run(ctx); err != nil {
				logger.Error("daemon stopped with error", "error", err)
				return err
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}

