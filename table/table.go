// Package table composes rows, columns, sort, filter, paging and viewport
// into an interactive data grid.
package table

import (
	"context"
	"io"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/pkg/errors"

	"tableau/column"
	nt "tableau/entity"
	"tableau/filter"
	"tableau/pager"
	"tableau/render"
	"tableau/rowstore"
	"tableau/sorter"
	"tableau/style"
	"tableau/viewport"
)

// Config is configurable options for a table.
type Config struct {
	IndexColumn  string        `yaml:"index_column"`
	Divider      string        `yaml:"divider"`
	EmptyMessage string        `yaml:"empty_message"`
	SortRefocus  bool          `yaml:"sort_refocus"`
	QuerySort    bool          `yaml:"query_sort"`
	Scrollbar    bool          `yaml:"scrollbar"`
	Sort         *nt.Sort      `yaml:"sort,omitempty"`
	Pager        pager.Config  `yaml:"pager"`
	Palette      style.Palette `yaml:"palette"`
}

// DetailFunc gives the lines shown beneath an open row.
type DetailFunc func(rec nt.Record) []string

// Table is an interactive grid over rows loaded from a source or added directly.
type Table struct {
	cfg     Config
	palette style.Palette

	store   *rowstore.Store
	columns *column.Model
	engine  filter.Engine
	filter  nt.Filter
	visible []nt.RowId
	cache   *render.Cache
	view    *viewport.Viewport
	pager   *pager.Coordinator
	sort    *nt.Sort

	focusColumn int
	left        int
	top         int
	drag        *drag
	err         error

	detail   DetailFunc
	lineRows []int

	ctx    context.Context
	logger nt.Logger
}

// New creates a table over cols, loading from src when it is not nil.
func (cfg *Config) New(ctx context.Context, cols []*column.Column, src pager.Source, lgr nt.Logger) (tbl *Table, err error) {

	model, err := column.NewModel(nil, cfg.Divider)
	if err != nil {
		return
	}
	err = model.Add(cols...)
	if err != nil {
		err = errors.Wrapf(err, "failed to add columns")
		return
	}

	store := rowstore.New(ctx, cfg.IndexColumn, model.Names(), lgr)

	tbl = &Table{
		cfg:     *cfg,
		palette: cfg.Palette.Merge(style.DefaultPalette()),
		store:   store,
		columns: model,
		cache:   render.New(store, model),
		view:    viewport.New(0, 1),
		ctx:     ctx,
		logger:  lgr,
	}
	tbl.pager = cfg.Pager.New(ctx, src, store, lgr)
	tbl.detail = tbl.hiddenDetail

	if cfg.Sort != nil {
		sort := *cfg.Sort
		tbl.sort = &sort
		tbl.pager.SetSort(tbl.querySort())
	}

	tbl.refilter()
	tbl.relayout()
	return
}

// AddRow adds one row, keeping the active sort when sort is set.
func (tbl *Table) AddRow(rec nt.Record, sort bool) (id nt.RowId, err error) {

	ids, err := tbl.store.Append([]nt.Record{rec})
	if err != nil {
		return
	}
	id = ids[0]

	if sort {
		tbl.resort()
	}
	tbl.refilter()
	return
}

// AppendRows adds rows after those present, keeping the active sort.
func (tbl *Table) AppendRows(recs []nt.Record) (ids []nt.RowId, err error) {

	ids, err = tbl.store.Append(recs)
	if err != nil {
		return
	}

	tbl.resort()
	tbl.refilter()
	tbl.relayout()
	return
}

// DeleteRows removes rows by id.
// Focus stays at the same position, clamped to the rows left.
func (tbl *Table) DeleteRows(ids []nt.RowId) (err error) {

	focused, hadFocus := tbl.focusedId()

	err = tbl.store.Delete(ids)
	if err != nil {
		return
	}
	tbl.cache.Drop(ids...)

	if hadFocus && slices.Contains(ids, focused) {
		position := tbl.view.Focus()
		tbl.refilter()
		tbl.view.SetFocus(position, len(tbl.visible))
		return
	}
	tbl.refilter()
	return
}

// Value returns the value of a row's column.
func (tbl *Table) Value(id nt.RowId, name string) (nt.Value, error) {
	return tbl.store.Get(id, name)
}

// SetValue updates a row's column and re-applies filters.
func (tbl *Table) SetValue(id nt.RowId, name string, val nt.Value) (err error) {

	err = tbl.store.Set(id, name, val)
	if err != nil {
		return
	}

	tbl.cache.Invalidate(id)
	tbl.refilter()
	return
}

// SortByColumn sorts on a visible data column given by index or name.
// With toggle, sorting the active column again flips its direction.
func (tbl *Table) SortByColumn(ref sorter.Ref, reverse *bool, toggle bool) (err error) {

	name, index, err := sorter.Resolve(ref, tbl.columns.VisibleNames())
	if err != nil {
		return
	}
	col, _ := tbl.columns.Lookup(name)

	next := sorter.Next(tbl.sort, name, reverse, col.SortReverse, toggle)
	focused, hadFocus := tbl.focusedId()

	tbl.sort = &next
	tbl.focusColumn = index

	if tbl.querying() {
		tbl.pager.SetSort(tbl.querySort())
		err = tbl.pager.Reset()
		tbl.loaded(err)
	} else {
		tbl.resort()
		tbl.refilter()
	}

	tbl.store.SetFocusColumn(index)
	tbl.refocus(focused, hadFocus && tbl.cfg.SortRefocus)
	return
}

// CycleSortColumn sorts on the visible data column step away from the
// current sort column, wrapping around.
func (tbl *Table) CycleSortColumn(step int) (err error) {

	names := tbl.columns.VisibleNames()
	if len(names) == 0 {
		return
	}

	index := 0
	if tbl.sort != nil {
		current := slices.Index(names, tbl.sort.Field)
		if current >= 0 {
			index = current + step
		}
	}
	switch {
	case index < 0:
		index = len(names) - 1
	case index >= len(names):
		index = 0
	}

	return tbl.SortByColumn(sorter.Index(index), nil, false)
}

// ResizeColumn sets a column to a fixed width, clamped to its minimum.
func (tbl *Table) ResizeColumn(name string, width int) (err error) {

	err = tbl.columns.Resize(name, width)
	if err != nil {
		return
	}
	tbl.relayout()
	return
}

// ResetColumns restores initial widths and sizing.
func (tbl *Table) ResetColumns() {
	tbl.columns.ResetWidths()
	tbl.relayout()
}

// ToggleColumns flips visibility of columns, or sets it from show.
func (tbl *Table) ToggleColumns(names []string, show *bool) (err error) {

	err = tbl.columns.Toggle(names, show)
	if err != nil {
		return
	}

	tbl.focusColumn = min(tbl.focusColumn, len(tbl.columns.VisibleNames())-1)
	tbl.relayout()
	return
}

// AddColumns adds columns, null filled in every row.
func (tbl *Table) AddColumns(cols ...*column.Column) (err error) {

	stored := tbl.store.Columns()
	for _, col := range cols {
		if slices.Contains(stored, col.Field) {
			err = errors.Errorf("column %q already exists", col.Field)
			return
		}
	}

	err = tbl.columns.Add(cols...)
	if err != nil {
		return
	}
	for _, col := range cols {
		err = tbl.store.AddColumn(col.Field, nt.Null)
		if err != nil {
			return
		}
		if col.Value != nil {
			tbl.store.MarkAllDirty()
		}
	}

	tbl.refilter()
	tbl.relayout()
	return
}

// RemoveColumns drops columns from the table and its rows.
func (tbl *Table) RemoveColumns(names ...string) (err error) {

	err = tbl.columns.Remove(names...)
	if err != nil {
		return
	}
	for _, name := range names {
		err = tbl.store.RemoveColumn(name)
		if err != nil {
			return
		}
	}

	if tbl.sort != nil && slices.Contains(names, tbl.sort.Field) {
		tbl.sort = nil
		tbl.pager.SetSort(nil)
	}
	tbl.focusColumn = min(tbl.focusColumn, len(tbl.columns.VisibleNames())-1)
	tbl.relayout()
	return
}

// ApplyFilters replaces the active predicates.
func (tbl *Table) ApplyFilters(preds ...filter.Predicate) {
	tbl.engine.Apply(preds...)
	tbl.refilter()
}

// ApplyFilter replaces the active predicates with a filter tree.
func (tbl *Table) ApplyFilter(f nt.Filter) (err error) {

	pred, err := filter.Compile(f)
	if err != nil {
		return
	}

	tbl.filter = f
	if f.IsZero() {
		tbl.ClearFilters()
		return
	}
	tbl.ApplyFilters(pred)
	return
}

// ClearFilters makes every row visible.
func (tbl *Table) ClearFilters() {
	tbl.filter = nt.Filter{}
	tbl.engine.Clear()
	tbl.refilter()
}

// Refresh reloads rows from the source, keeping focus on the same row.
// With reset, rows are dropped and loading starts over from the first page
// with the first row focused.
// Without a source, derived values are recomputed.
func (tbl *Table) Refresh(reset bool) (err error) {

	focused, hadFocus := tbl.focusedId()

	switch {
	case reset:
		tbl.cache.Reset()
		err = tbl.pager.Reset()
	case tbl.pager.Paged() || tbl.pager.Limit() == 0:
		err = tbl.pager.Reload()
	}
	tbl.store.MarkAllDirty()
	tbl.loaded(err)
	tbl.refocus(focused, hadFocus && !reset)
	return
}

// Reset reloads from the first page, restoring the initial sort when resetSort.
func (tbl *Table) Reset(resetSort bool) (err error) {

	if resetSort {
		tbl.sort = nil
		if tbl.cfg.Sort != nil {
			sort := *tbl.cfg.Sort
			tbl.sort = &sort
		}
		tbl.pager.SetSort(tbl.querySort())
	}

	err = tbl.Refresh(true)
	return
}

// LoadMore fetches the next page.
// A windowed table focuses the first row of the page it moved to.
func (tbl *Table) LoadMore() (loaded bool, err error) {

	loaded, err = tbl.pager.LoadMore(tbl.store.Len())
	if loaded || err != nil {
		tbl.loaded(err)
	}
	if loaded && tbl.windowed() {
		tbl.view.SetFocus(0, len(tbl.visible))
	}
	return
}

// LoadPrevious moves a windowed table back a page, focusing its last row.
func (tbl *Table) LoadPrevious() (loaded bool, err error) {

	loaded, err = tbl.pager.LoadPrevious()
	if loaded || err != nil {
		tbl.loaded(err)
	}
	if loaded {
		tbl.view.SetFocus(len(tbl.visible)-1, len(tbl.visible))
	}
	return
}

// LoadAll fetches every remaining page.
func (tbl *Table) LoadAll() (err error) {

	err = tbl.pager.LoadAll()
	tbl.loaded(err)
	return
}

// Invalidate marks every row for recomputation and drops all renders.
func (tbl *Table) Invalidate() {
	tbl.store.MarkAllDirty()
	tbl.cache.Reset()
	tbl.relayout()
}

// InvalidateRows marks rows for recomputation.
func (tbl *Table) InvalidateRows(ids ...nt.RowId) {
	tbl.cache.Invalidate(ids...)
}

// SwapRows exchanges the contents of rows at two visible positions.
func (tbl *Table) SwapRows(p0, p1 int) (err error) {

	id0, err := tbl.idAt(p0)
	if err != nil {
		return
	}
	id1, err := tbl.idAt(p1)
	if err != nil {
		return
	}

	err = tbl.store.Swap(id0, id1)
	if err != nil {
		return
	}
	tbl.cache.Invalidate(id0, id1)
	return
}

// ToggleDetails opens or closes the details beneath the row at position.
// A row with details disabled stays closed.
func (tbl *Table) ToggleDetails(position int) (open bool, err error) {

	id, err := tbl.idAt(position)
	if err != nil {
		return
	}

	rec, ok := tbl.store.Record(id)
	if !ok {
		err = nt.RowNotFoundError{Id: id}
		return
	}
	if rec.Details.Disabled {
		return
	}

	rec.Details.Open = !rec.Details.Open
	open = rec.Details.Open
	return
}

// SetDetailFunc sets the lines shown beneath open rows.
// Nil restores the default of listing hidden columns.
func (tbl *Table) SetDetailFunc(fn DetailFunc) {

	if fn == nil {
		fn = tbl.hiddenDetail
	}
	tbl.detail = fn
}

// Save writes every row to w.
func (tbl *Table) Save(w io.Writer) error {
	return tbl.store.Save(w)
}

// Load replaces rows with those read from r.
// Columns new to the table are added hidden.
func (tbl *Table) Load(r io.Reader) (err error) {

	err = tbl.store.Load(r)
	if err != nil {
		return
	}

	for _, name := range tbl.store.Columns() {
		if name == tbl.store.IndexColumn() || tbl.columns.Index(name) >= 0 {
			continue
		}

		col := column.Named(name, lipgloss.Width(name))
		col.Hidden = true
		err = tbl.columns.Add(col)
		if err != nil {
			return
		}
	}

	tbl.cache.Reset()
	tbl.refilter()
	tbl.relayout()
	return
}

// Len returns the number of visible rows.
func (tbl *Table) Len() int {
	return len(tbl.visible)
}

// Total returns the number of loaded rows, filtered or not.
func (tbl *Table) Total() int {
	return tbl.store.Len()
}

// Visible returns ids of visible rows in display order.
func (tbl *Table) Visible() []nt.RowId {
	return slices.Clone(tbl.visible)
}

// FocusPosition returns the focused position, or NoFocus.
func (tbl *Table) FocusPosition() int {
	return tbl.view.Focus()
}

// SetFocus focuses a position, clamped to the visible rows.
func (tbl *Table) SetFocus(position int) bool {
	return tbl.view.SetFocus(position, len(tbl.visible))
}

// FocusColumn returns the focused visible data column.
func (tbl *Table) FocusColumn() int {
	return tbl.focusColumn
}

// Selection returns a copy of the focused row.
func (tbl *Table) Selection() (rec nt.Record, ok bool) {

	id, ok := tbl.focusedId()
	if !ok {
		return
	}

	live, ok := tbl.store.Record(id)
	if !ok {
		return
	}
	rec = live.Clone()
	return
}

// SortState returns the active sort, or nil.
func (tbl *Table) SortState() *nt.Sort {

	if tbl.sort == nil {
		return nil
	}
	sort := *tbl.sort
	return &sort
}

// Filter returns the active filter tree.
func (tbl *Table) Filter() nt.Filter {
	return tbl.filter
}

// Columns returns the column model.
func (tbl *Table) Columns() *column.Model {
	return tbl.columns
}

// Page returns the number of the next page to load.
func (tbl *Table) Page() int {
	return tbl.pager.Page()
}

// Err returns the last load failure, cleared by the next successful load.
func (tbl *Table) Err() error {
	return tbl.err
}

// Store returns the row store.
func (tbl *Table) Store() *rowstore.Store {
	return tbl.store
}

// Viewport returns the viewport.
func (tbl *Table) Viewport() *viewport.Viewport {
	return tbl.view
}

// Pager returns the pagination coordinator.
func (tbl *Table) Pager() *pager.Coordinator {
	return tbl.pager
}

// unexported

// windowed reports whether the table holds a single page at a time.
func (tbl *Table) windowed() bool {
	return tbl.pager.Paged() && tbl.pager.Mode() == pager.Windowed
}

// querying reports whether sorting is done by the source.
func (tbl *Table) querying() bool {
	return tbl.cfg.QuerySort && tbl.pager.Paged()
}

func (tbl *Table) querySort() *nt.Sort {

	if !tbl.cfg.QuerySort {
		return nil
	}
	return tbl.SortState()
}

// loaded brings the table up to date after the pager has run.
func (tbl *Table) loaded(err error) {

	tbl.err = err
	if err != nil {
		tbl.logger.Error(tbl.ctx, "failed to load rows", err)
	}

	if !tbl.querying() {
		tbl.resort()
	}
	tbl.refilter()
	tbl.relayout()
}

func (tbl *Table) resort() {

	if tbl.sort == nil || tbl.querying() {
		return
	}

	var cmp sorter.Comparator
	col, ok := tbl.columns.Lookup(tbl.sort.Field)
	if ok {
		cmp = col.Compare
		if col.Value != nil {
			tbl.cache.Derive(tbl.store.Index()...)
		}
	}

	err := tbl.store.SortBy(tbl.sort.Field, cmp, tbl.sort.Desc)
	if err != nil {
		tbl.logger.Error(tbl.ctx, "failed to sort", err, "field", tbl.sort.Field)
	}
}

// refilter recomputes visible rows, keeping focus on the focused row when it survives.
func (tbl *Table) refilter() {

	focused, hadFocus := tbl.focusedId()

	if tbl.engine.Active() {
		tbl.cache.Derive(tbl.store.Index()...)
	}
	tbl.visible = tbl.engine.Visible(tbl.store.Index(), tbl.store.Record)
	tbl.view.Clamp(len(tbl.visible))

	if hadFocus {
		if position := slices.Index(tbl.visible, focused); position >= 0 {
			tbl.view.SetFocus(position, len(tbl.visible))
		}
	}
}

// refocus moves focus to the row with id when keep, otherwise to the top.
func (tbl *Table) refocus(id nt.RowId, keep bool) {

	if keep {
		if position := slices.Index(tbl.visible, id); position >= 0 {
			tbl.view.SetFocus(position, len(tbl.visible))
			return
		}
	}
	tbl.view.SetFocus(0, len(tbl.visible))
}

func (tbl *Table) relayout() {

	width := tbl.view.Width()
	if tbl.cfg.Scrollbar {
		width--
	}
	tbl.cache.Relayout(tbl.columns.Layout(max(width, 0), tbl.contentWidth))
}

// contentWidth is the widest display of a column over visible rows.
func (tbl *Table) contentWidth(name string) int {

	col, ok := tbl.columns.Lookup(name)
	if !ok {
		return 0
	}

	width := lipgloss.Width(col.Title())
	for _, id := range tbl.visible {
		rec, ok := tbl.store.Record(id)
		if ok {
			width = max(width, lipgloss.Width(col.Display(rec.Get(name))))
		}
	}
	return width
}

func (tbl *Table) focusedId() (id nt.RowId, ok bool) {

	position := tbl.view.Focus()
	if position < 0 || position >= len(tbl.visible) {
		return
	}
	return tbl.visible[position], true
}

// details are the lines beneath the row at position, none when closed.
func (tbl *Table) details(position int) []string {

	rec, ok := tbl.store.Record(tbl.visible[position])
	if !ok || !rec.Details.Open || rec.Details.Disabled {
		return nil
	}
	return tbl.detail(rec.Clone())
}

// hiddenDetail lists the values of hidden columns on one line.
func (tbl *Table) hiddenDetail(rec nt.Record) []string {

	parts := []string{}
	for _, col := range tbl.columns.DataColumns() {
		if col.Hidden {
			parts = append(parts, col.Title()+": "+col.Display(rec.Get(col.Field)))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return []string{strings.Join(parts, "  ")}
}

func (tbl *Table) idAt(position int) (id nt.RowId, err error) {

	if position < 0 || position >= len(tbl.visible) {
		err = errors.Errorf("position %d is out of bounds of %d rows", position, len(tbl.visible))
		return
	}
	id = tbl.visible[position]
	return
}
