package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"docsim/internal/similarity"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat resolves a format name. An empty value selects FormatTable.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return FormatTable, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case FormatTable, FormatCSV, FormatMarkdown, FormatHTML, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("report format: unsupported value %q", value)
	}
}

// Options controls Write.
type Options struct {
	Format   Format
	Chart    bool
	Heatmap  bool
	BarWidth int
	Color    bool
}

// Write renders analysis to w.
func Write(w io.Writer, analysis *similarity.Analysis, opts Options) error {
	if analysis == nil {
		return fmt.Errorf("report: analysis is nil")
	}
	format := opts.Format
	if format == "" {
		format = FormatTable
	}
	switch format {
	case FormatJSON:
		return WriteJSON(w, analysis)
	case FormatYAML:
		return WriteYAML(w, analysis)
	case FormatTable, FormatCSV, FormatMarkdown, FormatHTML:
		return writeTabular(w, analysis, format, opts)
	default:
		return fmt.Errorf("report format: unsupported value %q", format)
	}
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML encodes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func writeTabular(w io.Writer, analysis *similarity.Analysis, format Format, opts Options) error {
	if !analysis.Complete() {
		_, err := fmt.Fprintln(w, analysis.Message)
		return err
	}

	sections := []struct {
		title string
		body  string
	}{
		{"Similarity Results", Render(PairsTable(analysis.Pairs), format)},
	}
	if opts.Chart {
		sections = append(sections, struct{ title, body string }{
			"Bar Chart of Similarity", Render(BarChart(analysis.Pairs, opts.BarWidth), format),
		})
	}
	if opts.Heatmap {
		color := opts.Color && format == FormatTable
		sections = append(sections, struct{ title, body string }{
			"Heatmap of Similarities", Render(MatrixTable(analysis.Matrix, color), format),
		})
	}

	for i, section := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if format == FormatTable || format == FormatMarkdown {
			heading := section.title
			if format == FormatMarkdown {
				heading = "## " + heading
			}
			if _, err := fmt.Fprintf(w, "%s\n\n", heading); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, section.body); err != nil {
			return err
		}
	}
	return nil
}
