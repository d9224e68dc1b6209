// Package report renders similarity analyses for people and programs.
//
// Tabular formats (table, csv, markdown, html) are laid out with go-pretty:
// the pairwise results table always comes first, optionally followed by a bar
// chart of scores grouped by the first document and a heatmap of the
// similarity matrix. The heatmap colors cells by score bucket when color is
// enabled. Structured formats (json, yaml) encode the whole analysis,
// including the matrix labels and values.
package report
