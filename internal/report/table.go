package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"docsim/internal/similarity"
)

// Column headers of the pairwise results table.
const (
	HeaderDocument1  = "Document 1"
	HeaderDocument2  = "Document 2"
	HeaderSimilarity = "Similarity (%)"
)

const barGlyph = "█"

// PairsTable lays out one row per pair: Document 1, Document 2, Similarity (%).
func PairsTable(pairs []similarity.PairwiseResult) table.Writer {
	tw := NewWriter()
	tw.AppendHeader(table.Row{HeaderDocument1, HeaderDocument2, HeaderSimilarity})
	for _, pair := range pairs {
		tw.AppendRow(table.Row{pair.DocumentA, pair.DocumentB, FormatScore(pair.Score)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw
}

// BarChart draws a horizontal bar per pair, grouped by Document 1, scaled so a
// score of 100 spans width glyphs.
func BarChart(pairs []similarity.PairwiseResult, width int) table.Writer {
	if width <= 0 {
		width = 40
	}
	tw := NewWriter()
	tw.AppendHeader(table.Row{HeaderDocument1, "Compared With", "", HeaderSimilarity})
	for _, pair := range pairs {
		tw.AppendRow(table.Row{pair.DocumentA, pair.DocumentB, Bar(pair.Score, width), FormatScore(pair.Score)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw
}

// Bar returns a run of glyphs proportional to score out of 100.
func Bar(score float64, width int) string {
	n := int(math.Round(math.Max(0, math.Min(score, 100)) / 100 * float64(width)))
	return strings.Repeat(barGlyph, n)
}

// MatrixTable lays out the similarity matrix with the sorted document names as
// row and column labels. When color is set, cells are shaded by score.
func MatrixTable(m *similarity.Matrix, color bool) table.Writer {
	tw := NewWriter()
	if m == nil {
		return tw
	}
	header := make(table.Row, 0, m.Size()+1)
	header = append(header, "")
	for _, label := range m.Labels {
		header = append(header, label)
	}
	tw.AppendHeader(header)

	for i, label := range m.Labels {
		row := make(table.Row, 0, m.Size()+1)
		row = append(row, label)
		for _, value := range m.Values[i] {
			row = append(row, value)
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, m.Size())
	for i := range m.Labels {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 2,
			Align:       text.AlignRight,
			AlignHeader: text.AlignRight,
			Transformer: scoreTransformer(color),
		})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// Render produces the writer's output in the requested tabular format.
func Render(tw table.Writer, format Format) string {
	switch format {
	case FormatCSV:
		return tw.RenderCSV()
	case FormatMarkdown:
		return tw.RenderMarkdown()
	case FormatHTML:
		return tw.RenderHTML()
	default:
		return tw.Render()
	}
}

// FormatScore renders a percentage with two decimals.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// NewWriter returns a rounded-style table writer that prints headers as given.
func NewWriter() table.Writer {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)
	return tw
}

func scoreTransformer(color bool) text.Transformer {
	return func(val any) string {
		score, ok := val.(float64)
		if !ok {
			return fmt.Sprint(val)
		}
		formatted := FormatScore(score)
		if !color {
			return formatted
		}
		return heatColors(score).Sprint(formatted)
	}
}

// heatColors shades low scores light and high scores dark.
func heatColors(score float64) text.Colors {
	switch {
	case score < 20:
		return text.Colors{text.BgHiYellow, text.FgBlack}
	case score < 40:
		return text.Colors{text.BgHiGreen, text.FgBlack}
	case score < 60:
		return text.Colors{text.BgGreen, text.FgBlack}
	case score < 80:
		return text.Colors{text.BgCyan, text.FgBlack}
	default:
		return text.Colors{text.BgBlue, text.FgHiWhite}
	}
}
