package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/logsieve/internal/pipeline"
	"github.com/crimson-sun/logsieve/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the log analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			p, err := pipeline.FromConfig(cfg, pipeline.Options{Logger: a.logger})
			if err != nil {
				return err
			}
			srv := server.New(cfg.Server, p, cfg.Analysis.HistoryLimit, server.WithLogger(a.logger))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					a.logger.Info().Str("signal", sig.String()).Msg("shutting down")
					cancel()
				case <-ctx.Done():
				}
			}()

			a.logger.Info().
				Bool("analysis", cfg.Analysis.Enabled()).
				Str("model", cfg.Analysis.Model).
				Msg("logsieve starting")
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
