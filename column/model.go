package column

import (
	"slices"

	"github.com/pkg/errors"

	nt "tableau/entity"
)

// Model is an ordered set of data columns.
// Dividers are laid between visible columns when a glyph is given.
type Model struct {
	columns []*Column
	divider string
}

// NewModel creates a model from declarations.
func NewModel(decls []nt.Column, divider string) (mdl *Model, err error) {

	mdl = &Model{divider: divider}
	for _, decl := range decls {
		err = mdl.Add(New(decl))
		if err != nil {
			return
		}
	}
	return
}

// DataColumns returns every data column, hidden or not.
func (mdl *Model) DataColumns() []*Column {
	return slices.Clone(mdl.columns)
}

// VisibleDataColumns returns the columns not hidden.
func (mdl *Model) VisibleDataColumns() []*Column {

	visible := []*Column{}
	for _, col := range mdl.columns {
		if !col.Hidden {
			visible = append(visible, col)
		}
	}
	return visible
}

// VisibleColumns returns visible data columns with dividers between them.
func (mdl *Model) VisibleColumns() []*Column {

	data := mdl.VisibleDataColumns()
	if mdl.divider == "" {
		return data
	}

	visible := make([]*Column, 0, len(data)*2)
	for i, col := range data {
		if i > 0 {
			visible = append(visible, newDivider(mdl.divider))
		}
		visible = append(visible, col)
	}
	return visible
}

// VisibleNames returns the field names of visible data columns.
func (mdl *Model) VisibleNames() []string {

	names := []string{}
	for _, col := range mdl.VisibleDataColumns() {
		names = append(names, col.Field)
	}
	return names
}

// Names returns all data column names.
func (mdl *Model) Names() []string {

	names := make([]string, len(mdl.columns))
	for i, col := range mdl.columns {
		names[i] = col.Field
	}
	return names
}

// Lookup finds a column by name.
func (mdl *Model) Lookup(name string) (*Column, bool) {

	idx := mdl.Index(name)
	if idx < 0 {
		return nil, false
	}
	return mdl.columns[idx], true
}

// Index returns the position of a data column or -1.
func (mdl *Model) Index(name string) int {
	return slices.IndexFunc(mdl.columns, func(col *Column) bool {
		return col.Field == name
	})
}

// Add appends columns, rejecting names already present.
func (mdl *Model) Add(cols ...*Column) (err error) {

	for _, col := range cols {
		if col.Field == "" {
			err = errors.Errorf("column has no name")
			return
		}
		if mdl.Index(col.Field) >= 0 {
			err = errors.Errorf("column %q already exists", col.Field)
			return
		}
	}

	mdl.columns = append(mdl.columns, cols...)
	return
}

// Remove drops columns by name.
func (mdl *Model) Remove(names ...string) (err error) {

	err = mdl.check(names)
	if err != nil {
		return
	}

	mdl.columns = slices.DeleteFunc(mdl.columns, func(col *Column) bool {
		return slices.Contains(names, col.Field)
	})
	return
}

// Resize sets a fixed width, clamped to the column minimum.
func (mdl *Model) Resize(name string, width int) (err error) {
	return mdl.ResizeSizing(name, nt.Fixed, width)
}

// ResizeSizing sets sizing mode and width, clamped to the column minimum.
func (mdl *Model) ResizeSizing(name string, sizing nt.Sizing, width int) (err error) {

	col, ok := mdl.Lookup(name)
	if !ok {
		err = nt.InvalidColumnError{Ref: name}
		return
	}

	switch sizing {
	case nt.Fixed, nt.Packed, nt.Weighted:
	default:
		err = errors.Errorf("unknown sizing %q for column %q", sizing, name)
		return
	}

	col.Sizing = sizing
	if sizing == nt.Weighted && col.Weight < 1 {
		col.Weight = 1
	}
	col.Width = max(width, col.MinWidth)
	return
}

// ResetWidths restores every column's initial width and sizing.
func (mdl *Model) ResetWidths() {
	for _, col := range mdl.columns {
		col.Width = col.initialWidth
		col.Sizing = col.initialSizing
	}
}

// Toggle flips hidden for the named columns, or sets it from show when given.
func (mdl *Model) Toggle(names []string, show *bool) (err error) {

	err = mdl.check(names)
	if err != nil {
		return
	}

	for _, name := range names {
		col, _ := mdl.Lookup(name)
		if show == nil {
			col.Hidden = !col.Hidden
			continue
		}
		col.Hidden = !*show
	}
	return
}

// Layout fits visible columns into total cells and returns their widths,
// dividers included.
// Fixed columns keep their width, packed columns take up to their content
// width in order and weighted columns share what is left.
// Packed and weighted widths are stored back on their columns.
func (mdl *Model) Layout(total int, contentWidth func(name string) int) []int {

	visible := mdl.VisibleColumns()
	widths := make([]int, len(visible))

	available := total
	packed := 0
	weight := 0
	for i, col := range visible {
		switch col.Sizing {
		case nt.Packed:
			packed++
		case nt.Weighted:
			weight += col.Weight
		default:
			widths[i] = col.Width
			available -= col.Width
		}
	}

	for i, col := range visible {
		if col.Sizing != nt.Packed {
			continue
		}

		share := max(available, 0) / packed
		width := max(min(contentWidth(col.Field), share), col.MinWidth)
		widths[i] = width
		available -= width
		packed--
	}

	last := -1
	spare := max(available, 0)
	for i, col := range visible {
		if col.Sizing != nt.Weighted {
			continue
		}

		width := spare * col.Weight / weight
		widths[i] = width
		available -= width
		last = i
	}
	if last >= 0 && available > 0 {
		widths[last] += available
	}

	for i, col := range visible {
		widths[i] = max(widths[i], col.MinWidth)
		if col.Sizing != nt.Fixed {
			col.Width = widths[i]
		}
	}
	return widths
}

// unexported

func (mdl *Model) check(names []string) error {

	for _, name := range names {
		if mdl.Index(name) < 0 {
			return nt.InvalidColumnError{Ref: name}
		}
	}
	return nil
}
