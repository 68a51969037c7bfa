// Package render caches the display text of table rows.
package render

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"tableau/column"
	nt "tableau/entity"
)

const ellipsis = "…"

// Rows is the row storage a cache renders from.
type Rows interface {
	Record(id nt.RowId) (*nt.Record, bool)
	MarkDirty(ids ...nt.RowId)
}

type entry struct {
	cells      []string
	generation int
}

// Cache holds rendered cells per row.
// Rows are rendered again when dirty or when the layout has changed since.
type Cache struct {
	rows    Rows
	columns *column.Model
	widths  []int

	entries    map[nt.RowId]entry
	generation int
	renders    int
}

// New creates an empty cache.
func New(rows Rows, columns *column.Model) *Cache {
	return &Cache{
		rows:    rows,
		columns: columns,
		entries: map[nt.RowId]entry{},
	}
}

// Row returns the cells of a row for the visible columns, dividers included.
func (cache *Cache) Row(id nt.RowId) (cells []string, err error) {

	rec, ok := cache.rows.Record(id)
	if !ok {
		err = nt.RowNotFoundError{Id: id}
		return
	}

	ent, ok := cache.entries[id]
	if ok && !rec.Dirty && ent.generation == cache.generation {
		cells = ent.cells
		return
	}

	if rec.Dirty || !ok {
		derive(rec, cache.columns.DataColumns())
	}

	cells = cache.render(*rec)
	cache.entries[id] = entry{cells: cells, generation: cache.generation}
	rec.Dirty = false
	cache.renders++
	return
}

// Derive recomputes derived values of dirty rows without rendering them,
// so they can be sorted and filtered on.
func (cache *Cache) Derive(ids ...nt.RowId) {

	cols := cache.columns.DataColumns()
	for _, id := range ids {
		rec, ok := cache.rows.Record(id)
		if ok && rec.Dirty {
			derive(rec, cols)
		}
	}
}

// Invalidate marks rows dirty and drops their renders.
// Work is deferred to the next Row.
func (cache *Cache) Invalidate(ids ...nt.RowId) {

	cache.rows.MarkDirty(ids...)
	cache.Drop(ids...)
}

// Drop forgets renders, as for deleted rows.
func (cache *Cache) Drop(ids ...nt.RowId) {
	for _, id := range ids {
		delete(cache.entries, id)
	}
}

// Reset forgets every render.
func (cache *Cache) Reset() {
	cache.entries = map[nt.RowId]entry{}
}

// Relayout sets column widths, stale-ing every render without dirtying rows.
func (cache *Cache) Relayout(widths []int) {
	cache.widths = widths
	cache.generation++
}

// Widths returns the column widths renders fit to.
func (cache *Cache) Widths() []int {
	return cache.widths
}

// Renders returns how many times a row has been rendered.
func (cache *Cache) Renders() int {
	return cache.renders
}

// Fit truncates or pads text to exactly width cells.
func Fit(text string, width int) string {

	if width <= 0 {
		return ""
	}

	text = strings.ReplaceAll(text, "\n", " ")
	text = ansi.Truncate(text, width, ellipsis)
	return text + strings.Repeat(" ", max(width-lipgloss.Width(text), 0))
}

// unexported

// derive recomputes values of derived columns.
func derive(rec *nt.Record, cols []*column.Column) {
	for _, col := range cols {
		if col.Value != nil {
			rec.Values[col.Field] = col.Value(*rec)
		}
	}
}

func (cache *Cache) render(rec nt.Record) []string {

	visible := cache.columns.VisibleColumns()
	cells := make([]string, len(visible))

	for i, col := range visible {
		text := col.Display(rec.Get(col.Field))

		width := col.Width
		if i < len(cache.widths) {
			width = cache.widths[i]
		}
		cells[i] = Fit(text, width)
	}
	return cells
}
