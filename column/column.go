// Package column models a table's ordered column descriptors.
package column

import (
	"github.com/charmbracelet/x/ansi"

	nt "tableau/entity"
	"tableau/sorter"
)

// ValueFunc derives a column's value from the rest of its row.
type ValueFunc func(rec nt.Record) nt.Value

// DecorateFunc turns a value into display text.
type DecorateFunc func(val nt.Value) string

// Column is a declared column plus its runtime behaviour.
type Column struct {
	nt.Column

	// Compare orders non-null values, nil for natural order.
	Compare sorter.Comparator
	// Value derives the column for dirty rows, nil for stored columns.
	Value ValueFunc
	// Decorate post-processes the value for display.
	Decorate DecorateFunc

	divider       bool
	initialWidth  int
	initialSizing nt.Sizing
}

// New builds a column from its declaration.
func New(decl nt.Column) *Column {

	if decl.Sizing == "" {
		decl.Sizing = nt.Fixed
	}
	if decl.Sizing == nt.Weighted && decl.Weight < 1 {
		decl.Weight = 1
	}
	if decl.Width < decl.MinWidth {
		decl.Width = decl.MinWidth
	}

	return &Column{
		Column:        decl,
		Decorate:      makeDecorator(decl.Format),
		initialWidth:  decl.Width,
		initialSizing: decl.Sizing,
	}
}

// Named builds a fixed-width column.
func Named(name string, width int) *Column {
	return New(nt.Column{Field: name, Width: width, MinWidth: 1})
}

// Name returns the field name.
func (col *Column) Name() string {
	return col.Field
}

// Title returns the header text.
func (col *Column) Title() string {
	if col.Label != "" {
		return col.Label
	}
	return col.Field
}

// IsDivider reports whether the column is a spacer between columns.
func (col *Column) IsDivider() bool {
	return col.divider
}

// Display renders a value for the column.
func (col *Column) Display(val nt.Value) string {
	if col.Decorate == nil {
		return val.String()
	}
	return col.Decorate(val)
}

// unexported

func newDivider(glyph string) *Column {

	width := ansi.StringWidth(glyph)
	return &Column{
		Column: nt.Column{
			Field:    glyph,
			Width:    width,
			MinWidth: width,
			Sizing:   nt.Fixed,
		},
		Decorate: func(nt.Value) string { return glyph },
		divider:  true,
	}
}

// makeDecorator creates a decorator for a layout format string.
// Times use it as a layout, everything else falls back to String.
func makeDecorator(format string) DecorateFunc {

	if format == "" {
		return func(val nt.Value) string {
			return val.String()
		}
	}

	return func(val nt.Value) string {
		t, err := val.Time()
		if err != nil {
			return val.String()
		}
		return t.Format(format)
	}
}
