package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"docsim/internal/report"
	"docsim/internal/runstore"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved comparison runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			svc, cleanup, err := ctx.openService(logger, true)
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := svc.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			switch strings.ToLower(strings.TrimSpace(format)) {
			case "", "table":
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No saved runs")
					return nil
				}
				fmt.Fprintln(out, renderRunTable(runs))
				return nil
			case "json":
				return writeJSON(cmd, runs)
			case "yaml", "yml":
				return report.WriteYAML(cmd.OutOrStdout(), runs)
			default:
				return fmt.Errorf("history list format: unsupported value %q", format)
			}
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum runs to list (default history.default_limit)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, yaml)")
	return cmd
}

func renderRunTable(runs []runstore.Summary) string {
	tw := report.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Created", "Policy", "Documents", "Pairs", "Max (%)"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(run.Policy),
			strconv.Itoa(run.DocumentCount),
			strconv.Itoa(run.PairCount),
			report.FormatScore(run.MaxScore),
		})
	}
	configs := make([]table.ColumnConfig, 0, 3)
	for _, number := range []int{4, 5, 6} {
		configs = append(configs, table.ColumnConfig{Number: number, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reportOpts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			svc, cleanup, err := ctx.openService(logger, true)
			if err != nil {
				return err
			}
			defer cleanup()

			analysis, err := svc.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if reportOpts.Format == report.FormatTable {
				fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s, policy %s)\n\n",
					analysis.ID, analysis.CreatedAt.Local().Format("2006-01-02 15:04:05"), analysis.Policy)
			}
			return report.Write(cmd.OutOrStdout(), analysis, reportOpts)
		},
	}
	flags.register(cmd)
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a saved run",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			svc, cleanup, err := ctx.openService(logger, true)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := svc.DeleteRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed run %s\n", deleted)
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete saved runs older than a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.History.RetentionDays
			}
			if days <= 0 {
				return fmt.Errorf("--days must be positive (history.retention_days is %d)", cfg.History.RetentionDays)
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			svc, cleanup, err := ctx.openService(logger, true)
			if err != nil {
				return err
			}
			defer cleanup()

			removed, err := svc.PruneRuns(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s) older than %d day(s)\n", removed, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Age threshold in days (default history.retention_days)")
	return cmd
}
