package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"docsim/internal/config"
	"docsim/internal/report"
)

// reportFlags holds presentation flags shared by compare, watch and history show.
type reportFlags struct {
	format  string
	chart   bool
	heatmap bool
	color   string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format (table, csv, markdown, html, json, yaml)")
	cmd.Flags().BoolVar(&f.chart, "chart", false, "Include a bar chart of pairwise scores")
	cmd.Flags().BoolVar(&f.heatmap, "heatmap", false, "Include the similarity matrix heatmap")
	cmd.Flags().StringVar(&f.color, "color", "", "Heatmap colors (auto, always, never)")
}

// options merges flags over the [report] config section. Boolean flags only
// override the config when given explicitly.
func (f *reportFlags) options(cmd *cobra.Command, cfg *config.Config) (report.Options, error) {
	formatName := cfg.Report.Format
	if strings.TrimSpace(f.format) != "" {
		formatName = f.format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return report.Options{}, err
	}

	chart := cfg.Report.Chart
	if cmd.Flags().Changed("chart") {
		chart = f.chart
	}
	heatmap := cfg.Report.Heatmap
	if cmd.Flags().Changed("heatmap") {
		heatmap = f.heatmap
	}

	colorMode := cfg.Report.Color
	if strings.TrimSpace(f.color) != "" {
		colorMode = strings.ToLower(strings.TrimSpace(f.color))
	}
	color, err := useColor(colorMode, cmd.OutOrStdout())
	if err != nil {
		return report.Options{}, err
	}

	return report.Options{
		Format:   format,
		Chart:    chart,
		Heatmap:  heatmap,
		BarWidth: cfg.Report.BarWidth,
		Color:    color,
	}, nil
}

func useColor(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		file, ok := out.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd()), nil
	default:
		return false, fmt.Errorf("color: unsupported value %q", mode)
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	return report.WriteJSON(cmd.OutOrStdout(), v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
