package tableau

import (
	"slices"

	"github.com/pkg/errors"

	"tableau/column"
	nt "tableau/entity"
	"tableau/filter"
	"tableau/table"
	"tableau/util"
)

// SampleLayout is written for new users to edit.
const SampleLayout = `# columns shown, in order; fields left out are added hidden
columns:
  - field: date
    width: 10
    format: "2006-01-02"
  - field: payee
    sizing: packed
    min_width: 8
  - field: amount
    width: 10
    sort_reverse: true
  - field: memo
    sizing: weighted
    weight: 1
    min_width: 8
# op: 0 and, 1 or, 2 not, 3 eq, 4 ne, 5 gt, 6 gte, 7 lt, 8 lte,
#     9 contains, 10 match, 11 similar
filter:
  op: 0
table:
  divider: " "
  empty_message: no rows to show
  sort_refocus: true
  scrollbar: true
  pager:
    limit: 200
`

// Layout is the user's arrangement of a table.
type Layout struct {
	Columns  []nt.Column  `yaml:"columns"`
	Filter   nt.Filter    `yaml:"filter,omitempty"`
	Table    table.Config `yaml:"table"`
	SavePath string       `yaml:"save_path,omitempty"`

	// Path is where the layout was read from and is written back to.
	Path string `yaml:"-"`
}

// LoadLayout reads a layout from yaml.
func LoadLayout(path string) (layout *Layout, err error) {

	layout = &Layout{Path: path}
	err = util.LoadYaml(layout, path)
	return
}

// Write saves the layout back to its path.
func (layout *Layout) Write() (err error) {

	if layout.Path == "" {
		err = errors.Errorf("no path for layout")
		return
	}

	err = util.WriteYaml(layout, layout.Path, 0o644)
	return
}

// columns builds the table's columns from the layout, adding any field the
// source offers that the layout leaves out, hidden.
// With no columns laid out, every offered field is shown.
func (layout *Layout) columns(offered []nt.Column) (cols []*column.Column) {

	declared := slices.Clone(layout.Columns)
	if len(declared) == 0 {
		declared = slices.Clone(offered)
	}

	for _, decl := range declared {
		cols = append(cols, column.New(decl))
	}

	for _, decl := range offered {
		laid := slices.ContainsFunc(declared, func(col nt.Column) bool {
			return col.Field == decl.Field
		})
		if laid {
			continue
		}

		decl.Hidden = true
		cols = append(cols, column.New(decl))
	}
	return
}

// snapshot returns a copy of the layout with columns and filters as shown now.
func (layout Layout) snapshot(cols []*column.Column, filters []nt.Filter) *Layout {

	layout.Columns = make([]nt.Column, len(cols))
	for i, col := range cols {
		layout.Columns[i] = col.Column
	}
	layout.Filter = filter.Combine(filters)
	return &layout
}

// filters splits a filter into the list the dialog edits.
func filters(f nt.Filter) []nt.Filter {

	switch {
	case f.IsZero():
		return nil
	case f.Op == nt.And && f.Field == "":
		return slices.Clone(f.Children)
	}
	return []nt.Filter{f}
}
