package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docsim/internal/api"
	"docsim/internal/report"
)

// compareFlags holds options shared by compare and watch.
type compareFlags struct {
	report         reportFlags
	policy         string
	duplicates     string
	foldDiacritics bool
	save           bool
	skipUnreadable bool
}

func (f *compareFlags) register(cmd *cobra.Command) {
	f.report.register(cmd)
	cmd.Flags().StringVar(&f.policy, "policy", "", "Punctuation policy (merge, space)")
	cmd.Flags().StringVar(&f.duplicates, "duplicates", "", "Duplicate name handling (suffix, reject)")
	cmd.Flags().BoolVar(&f.foldDiacritics, "fold-diacritics", false, "Strip accents before tokenizing")
	cmd.Flags().BoolVar(&f.save, "save", false, "Save the run to history")
	cmd.Flags().BoolVar(&f.skipUnreadable, "skip-unreadable", false, "Skip documents that cannot be read instead of failing")
}

func (f *compareFlags) compareOptions(cmd *cobra.Command) api.CompareOptions {
	opts := api.CompareOptions{
		Policy:     f.policy,
		Duplicates: f.duplicates,
		Save:       f.save,
	}
	if cmd.Flags().Changed("fold-diacritics") {
		fold := f.foldDiacritics
		opts.FoldDiacritics = &fold
	}
	return opts
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var flags compareFlags

	cmd := &cobra.Command{
		Use:   "compare FILE|DIR...",
		Short: "Compare documents and print pairwise similarity",
		Long: "Compare extracts text from each PDF or text file (directories contribute their\n" +
			"supported files), scores every pair by Jaccard similarity of their vocabularies\n" +
			"and prints the results. Fewer than two documents prints a waiting message.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reportOpts, err := flags.report.options(cmd, cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			svc, cleanup, err := ctx.openService(logger, flags.save)
			if err != nil {
				return err
			}
			defer cleanup()

			files, err := svc.CollectFiles(args)
			if err != nil {
				return err
			}
			skip := cfg.Documents.SkipUnreadable
			if cmd.Flags().Changed("skip-unreadable") {
				skip = flags.skipUnreadable
			}
			inputs, err := svc.LoadFiles(cmd.Context(), files, skip)
			if err != nil {
				return err
			}

			analysis, err := svc.Compare(cmd.Context(), inputs, flags.compareOptions(cmd))
			if err != nil {
				return err
			}
			if err := report.Write(cmd.OutOrStdout(), analysis, reportOpts); err != nil {
				return err
			}
			if flags.save && analysis.Complete() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s\n", analysis.ID)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
