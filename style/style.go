// Package style turns a palette of colors into lipgloss styles.
package style

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Palette names the colors used to draw a table.
// Values are lipgloss colors: ansi 256 numbers or hex strings.
type Palette struct {
	Border  string `yaml:"border"`
	Header  string `yaml:"header"`
	Row     string `yaml:"row"`
	Column  string `yaml:"column"`
	Cell    string `yaml:"cell"`
	Muted   string `yaml:"muted"`
	Error   string `yaml:"error"`
	Divider string `yaml:"divider"`
}

// DefaultPalette is a set of warm greys.
func DefaultPalette() Palette {
	return Palette{
		Border:  "240", // subtle warm grey border
		Header:  "252",
		Row:     "235", // very subtle warm grey row
		Column:  "234", // twice as subtle, barely visible
		Cell:    "237", // slightly warmer cell
		Muted:   "246", // warm muted grey text
		Error:   "167",
		Divider: "238",
	}
}

// Merge fills unset colors from other.
func (pal Palette) Merge(other Palette) Palette {

	fill := func(val *string, from string) {
		if *val == "" {
			*val = from
		}
	}

	fill(&pal.Border, other.Border)
	fill(&pal.Header, other.Header)
	fill(&pal.Row, other.Row)
	fill(&pal.Column, other.Column)
	fill(&pal.Cell, other.Cell)
	fill(&pal.Muted, other.Muted)
	fill(&pal.Error, other.Error)
	fill(&pal.Divider, other.Divider)
	return pal
}

func (pal Palette) BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Border))
}

func (pal Palette) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Header)).Bold(true)
}

func (pal Palette) RowStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color(pal.Row))
}

func (pal Palette) ColumnStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color(pal.Column))
}

func (pal Palette) CellStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color(pal.Cell))
}

func (pal Palette) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Muted))
}

func (pal Palette) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Error)).Bold(true)
}

func (pal Palette) DividerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Divider))
}

// RowStyler returns a StyleFunc that highlights the selected row
func (pal Palette) RowStyler(selectedRow int) table.StyleFunc {

	hl := pal.RowStyle()
	return func(row, col int) lipgloss.Style {
		if row == selectedRow {
			return hl
		}
		return lipgloss.NewStyle()
	}
}

// CellStyler returns a StyleFunc that highlights the selected cell, row, and column
// Header cells take the header style.
func (pal Palette) CellStyler(selectedRow, selectedCol int) table.StyleFunc {

	header := pal.HeaderStyle()
	cell := pal.CellStyle()
	hlRow := pal.RowStyle()
	hlCol := pal.ColumnStyle()

	return func(row, col int) lipgloss.Style {
		rowMatch := row == selectedRow
		colMatch := col == selectedCol

		switch {
		case row == table.HeaderRow:
			return header
		case rowMatch && colMatch:
			return cell
		case rowMatch:
			return hlRow
		case colMatch:
			return hlCol
		}
		return lipgloss.NewStyle()
	}
}

// StyleTable applies consistent table styling for borders and separators
func (pal Palette) StyleTable(tbl *table.Table) *table.Table {
	return tbl.Border(lipgloss.Border{
		Top:         "─", // Horizontal parts of separator
		Middle:      "─", // Between columns in separator
		MiddleLeft:  "─", // Left edge of separator
		MiddleRight: "─", // Right edge of separator
	}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(pal.BorderStyle())
}
