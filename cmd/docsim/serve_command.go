package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"docsim/internal/api"
	"docsim/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(bind) != "" {
				cfg.Paths.APIBind = strings.TrimSpace(bind)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			svc, cleanup, err := ctx.openService(logger, cfg.History.Enabled)
			if err != nil {
				return err
			}
			defer cleanup()

			if cfg.History.Enabled && cfg.History.RetentionDays > 0 {
				if _, err := svc.PruneRuns(signalCtx, cfg.History.RetentionDays); err != nil {
					logger.Warn("history prune failed", logging.Error(err))
				}
			}

			server, err := api.NewServer(cfg, svc, logger)
			if err != nil {
				return err
			}
			if err := server.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", server.Addr())

			select {
			case <-signalCtx.Done():
			case <-server.Done():
			}
			server.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default paths.api_bind)")
	return cmd
}
