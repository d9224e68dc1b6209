package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docsim/internal/report"
	"docsim/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags compareFlags

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Re-run the comparison whenever documents in DIR change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reportOpts, err := flags.report.options(cmd, cfg)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			svc, cleanup, err := ctx.openService(logger, flags.save)
			if err != nil {
				return err
			}
			defer cleanup()

			dir := args[0]
			skip := cfg.Documents.SkipUnreadable
			if cmd.Flags().Changed("skip-unreadable") {
				skip = flags.skipUnreadable
			}
			compareOpts := flags.compareOptions(cmd)
			out := cmd.OutOrStdout()

			refresh := func(runCtx context.Context) error {
				files, err := svc.CollectFiles([]string{dir})
				if err != nil {
					return err
				}
				inputs, err := svc.LoadFiles(runCtx, files, skip)
				if err != nil {
					return err
				}
				analysis, err := svc.Compare(runCtx, inputs, compareOpts)
				if err != nil {
					return err
				}
				if reportOpts.Format == report.FormatTable {
					fmt.Fprintf(out, "[%s] %d documents in %s\n\n", time.Now().Format("15:04:05"), len(inputs), dir)
				}
				if err := report.Write(out, analysis, reportOpts); err != nil {
					return err
				}
				fmt.Fprintln(out)
				return nil
			}

			return watch.Run(signalCtx, dir, watch.Options{
				Debounce: time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond,
				Filter:   cfg.SupportsExtension,
				Logger:   logger,
			}, refresh)
		},
	}
	flags.register(cmd)
	return cmd
}
