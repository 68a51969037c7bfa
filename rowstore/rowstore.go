// Package rowstore holds table rows addressable by id and column.
package rowstore

import (
	"context"
	"slices"

	"github.com/pkg/errors"

	nt "tableau/entity"
	"tableau/sorter"
)

// Store is an ordered, column-addressable set of records.
// Iteration order is changed by sorting, identity never is.
type Store struct {
	indexColumn string
	columns     []string
	order       []nt.RowId
	rows        map[nt.RowId]*nt.Record

	ctx    context.Context
	logger nt.Logger
}

// New creates an empty store with the given data columns.
// The index column holds each row's id and is added when missing.
func New(ctx context.Context, indexColumn string, columns []string, lgr nt.Logger) *Store {

	if indexColumn == "" {
		indexColumn = "index"
	}
	if !slices.Contains(columns, indexColumn) {
		columns = append([]string{indexColumn}, columns...)
	}

	return &Store{
		indexColumn: indexColumn,
		columns:     slices.Clone(columns),
		rows:        map[nt.RowId]*nt.Record{},
		ctx:         ctx,
		logger:      lgr,
	}
}

// IndexColumn returns the name of the id column.
func (st *Store) IndexColumn() string {
	return st.indexColumn
}

// Columns returns the store's column names.
func (st *Store) Columns() []string {
	return slices.Clone(st.columns)
}

// Len returns the number of rows.
func (st *Store) Len() int {
	return len(st.order)
}

// Index returns row ids in iteration order.
func (st *Store) Index() []nt.RowId {
	return slices.Clone(st.order)
}

// Position returns the iteration position of id.
func (st *Store) Position(id nt.RowId) (int, bool) {
	pos := slices.Index(st.order, id)
	return pos, pos >= 0
}

// Record returns the live record for id.
func (st *Store) Record(id nt.RowId) (*nt.Record, bool) {
	rec, ok := st.rows[id]
	return rec, ok
}

// Records returns copies of all records in iteration order.
func (st *Store) Records() []nt.Record {

	recs := make([]nt.Record, len(st.order))
	for i, id := range st.order {
		recs[i] = st.rows[id].Clone()
	}
	return recs
}

// Append adds records after existing rows, returning their ids.
// Any id collision rejects the whole batch.
func (st *Store) Append(recs []nt.Record) (ids []nt.RowId, err error) {

	ids, err = st.assignIds(recs, false)
	if err != nil {
		return
	}

	for i, rec := range recs {
		st.insert(ids[i], rec)
	}
	return
}

// Merge upserts records: rows with known ids are updated in place and
// the rest appended.
func (st *Store) Merge(recs []nt.Record) (ids []nt.RowId, err error) {

	ids, err = st.assignIds(recs, true)
	if err != nil {
		return
	}

	for i, rec := range recs {
		existing, ok := st.rows[ids[i]]
		if !ok {
			st.insert(ids[i], rec)
			continue
		}

		for name, val := range rec.Values {
			if name != st.indexColumn && slices.Contains(st.columns, name) {
				existing.Values[name] = val
			}
		}
		if rec.Tag != "" {
			existing.Tag = rec.Tag
		}
		existing.Details = rec.Details
		existing.Dirty = true
	}
	return
}

// Replace drops rows whose ids are not in recs, then merges recs.
// An empty batch clears the store.
func (st *Store) Replace(recs []nt.Record) (ids []nt.RowId, err error) {

	if len(recs) == 0 {
		st.Clear()
		return
	}

	// validate before dropping anything
	_, err = st.assignIds(recs, true)
	if err != nil {
		return
	}

	keep := map[nt.RowId]bool{}
	for _, rec := range recs {
		if id, ok := st.suppliedId(rec); ok {
			keep[id] = true
		}
	}

	var drop []nt.RowId
	for _, id := range st.order {
		if !keep[id] {
			drop = append(drop, id)
		}
	}
	st.remove(drop)

	return st.Merge(recs)
}

// Delete removes rows. Unknown ids reject the whole call.
func (st *Store) Delete(ids []nt.RowId) (err error) {

	for _, id := range ids {
		if _, ok := st.rows[id]; !ok {
			err = nt.RowNotFoundError{Id: id}
			return
		}
	}

	st.remove(ids)
	return
}

// Clear removes all rows.
func (st *Store) Clear() {
	st.order = nil
	st.rows = map[nt.RowId]*nt.Record{}
}

// Get returns the value at id and column.
func (st *Store) Get(id nt.RowId, column string) (val nt.Value, err error) {

	rec, err := st.lookup(id, column)
	if err != nil {
		return
	}
	return rec.Values[column], nil
}

// Set updates the value at id and column and marks the row dirty.
func (st *Store) Set(id nt.RowId, column string, val nt.Value) (err error) {

	rec, err := st.lookup(id, column)
	if err != nil {
		return
	}
	if column == st.indexColumn {
		err = errors.Errorf("cannot set index column %q of row %d", column, id)
		return
	}

	rec.Values[column] = val
	rec.Dirty = true
	return
}

// MarkDirty flags rows as needing a fresh render, ignoring unknown ids.
func (st *Store) MarkDirty(ids ...nt.RowId) {
	for _, id := range ids {
		if rec, ok := st.rows[id]; ok {
			rec.Dirty = true
		}
	}
}

// MarkAllDirty flags every row.
func (st *Store) MarkAllDirty() {
	for _, rec := range st.rows {
		rec.Dirty = true
	}
}

// SetFocusColumn records the focused column on every row.
// The highlight is drawn over cached renders so rows stay clean.
func (st *Store) SetFocusColumn(idx int) {
	for _, rec := range st.rows {
		rec.FocusColumn = idx
	}
}

// SortBy reorders iteration by column, stable with nulls first.
func (st *Store) SortBy(column string, cmp sorter.Comparator, reverse bool) (err error) {

	if !slices.Contains(st.columns, column) {
		err = nt.InvalidColumnError{Ref: column}
		return
	}

	st.order = sorter.Order(st.order, func(id nt.RowId) nt.Value {
		return st.rows[id].Values[column]
	}, cmp, reverse)
	return
}

// SortIndex restores id order.
func (st *Store) SortIndex() {
	slices.Sort(st.order)
}

// Swap exchanges every non-index value of two rows.
func (st *Store) Swap(a, b nt.RowId) (err error) {

	ra, ok := st.rows[a]
	if !ok {
		return nt.RowNotFoundError{Id: a}
	}
	rb, ok := st.rows[b]
	if !ok {
		return nt.RowNotFoundError{Id: b}
	}

	for _, name := range st.columns {
		if name == st.indexColumn {
			continue
		}
		ra.Values[name], rb.Values[name] = rb.Values[name], ra.Values[name]
	}
	ra.Tag, rb.Tag = rb.Tag, ra.Tag
	ra.Details, rb.Details = rb.Details, ra.Details
	ra.Dirty, rb.Dirty = true, true
	return
}

// AddColumn adds a column, backfilling every row with fill.
func (st *Store) AddColumn(name string, fill nt.Value) (err error) {

	if slices.Contains(st.columns, name) {
		err = errors.Errorf("column %q already exists", name)
		return
	}

	st.columns = append(st.columns, name)
	for _, rec := range st.rows {
		rec.Values[name] = fill
	}
	return
}

// RemoveColumn drops a column from every row.
func (st *Store) RemoveColumn(name string) (err error) {

	idx := slices.Index(st.columns, name)
	switch {
	case idx < 0:
		err = nt.InvalidColumnError{Ref: name}
		return
	case name == st.indexColumn:
		err = errors.Errorf("cannot remove index column %q", name)
		return
	}

	st.columns = slices.Delete(st.columns, idx, idx+1)
	for _, rec := range st.rows {
		delete(rec.Values, name)
	}
	return
}

// unexported

func (st *Store) lookup(id nt.RowId, column string) (*nt.Record, error) {

	rec, ok := st.rows[id]
	if !ok {
		return nil, nt.RowNotFoundError{Id: id}
	}
	if !slices.Contains(st.columns, column) {
		return nil, nt.InvalidColumnError{Ref: column}
	}
	return rec, nil
}

// suppliedId reads an id from the record's index column, if any.
func (st *Store) suppliedId(rec nt.Record) (nt.RowId, bool) {

	val, ok := rec.Values[st.indexColumn]
	if !ok || val.IsNull() {
		return 0, false
	}

	id, err := val.Int64()
	if err != nil {
		return 0, false
	}
	return nt.RowId(id), true
}

// assignIds works out ids for a batch without touching the store.
// Supplied ids colliding within the batch are always rejected, and so are
// collisions with stored rows unless upsert is set.
func (st *Store) assignIds(recs []nt.Record, upsert bool) (ids []nt.RowId, err error) {

	next := st.nextId()
	seen := map[nt.RowId]bool{}
	var dups []nt.RowId

	ids = make([]nt.RowId, len(recs))
	for i, rec := range recs {
		id, ok := st.suppliedId(rec)
		if !ok {
			for seen[next] || st.rows[next] != nil {
				next++
			}
			id = next
			next++
		}

		_, stored := st.rows[id]
		if seen[id] || (stored && !upsert) {
			dups = append(dups, id)
		}
		seen[id] = true
		ids[i] = id
	}

	if len(dups) > 0 {
		err = nt.DuplicateRowIdError{Ids: dups}
		st.logger.Error(st.ctx, "rejecting rows", err, "duplicates", dups)
		ids = nil
	}
	return
}

func (st *Store) nextId() nt.RowId {

	next := nt.RowId(len(st.order))
	for id := range st.rows {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

func (st *Store) insert(id nt.RowId, rec nt.Record) {

	values := make(map[string]nt.Value, len(st.columns))
	for _, name := range st.columns {
		values[name] = rec.Values[name]
	}
	values[st.indexColumn] = nt.NewValue(int64(id))

	st.rows[id] = &nt.Record{
		Id:          id,
		Values:      values,
		Tag:         rec.Tag,
		Details:     rec.Details,
		Dirty:       true,
		FocusColumn: nt.NoFocus,
	}
	st.order = append(st.order, id)
}

func (st *Store) remove(ids []nt.RowId) {

	if len(ids) == 0 {
		return
	}

	drop := map[nt.RowId]bool{}
	for _, id := range ids {
		drop[id] = true
		delete(st.rows, id)
	}

	st.order = slices.DeleteFunc(st.order, func(id nt.RowId) bool {
		return drop[id]
	})
}
