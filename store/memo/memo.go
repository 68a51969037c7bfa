// Package memo serves pages of rows held in memory.
package memo

import (
	"slices"

	"github.com/pkg/errors"

	nt "tableau/entity"
	"tableau/filter"
	"tableau/rowstore"
	"tableau/sorter"
)

// Memo answers paged queries from a row store.
type Memo struct {
	store  *rowstore.Store
	filter filter.Predicate
	hide   bool
}

// New creates a source over st.
func New(st *rowstore.Store) *Memo {
	return &Memo{store: st}
}

// HideCount makes RowCount report the total as unknown.
func (mm *Memo) HideCount(hide bool) {
	mm.hide = hide
}

// SetFilter narrows the rows served.
func (mm *Memo) SetFilter(f nt.Filter) (err error) {

	pred, err := filter.Compile(f)
	if err != nil {
		return
	}
	mm.filter = pred
	return
}

// Query returns up to limit rows from offset, all of them when limit is zero.
func (mm *Memo) Query(offset, limit int, sort *nt.Sort) (recs []nt.Record, err error) {

	if offset < 0 || limit < 0 {
		err = errors.Errorf("bad page offset %d limit %d", offset, limit)
		return
	}

	ids, err := mm.view(sort)
	if err != nil {
		return
	}

	end := len(ids)
	if limit > 0 {
		end = min(offset+limit, end)
	}

	for _, id := range ids[min(offset, end):end] {
		rec, _ := mm.store.Record(id)
		recs = append(recs, rec.Clone())
	}
	return
}

// RowCount returns the number of rows passing the filter.
func (mm *Memo) RowCount() (count int, known bool, err error) {

	if mm.hide {
		return
	}

	ids, err := mm.view(nil)
	return len(ids), err == nil, err
}

// unexported

func (mm *Memo) view(sort *nt.Sort) (ids []nt.RowId, err error) {

	eng := &filter.Engine{}
	if mm.filter != nil {
		eng.Apply(mm.filter)
	}
	ids = eng.Visible(mm.store.Index(), mm.store.Record)

	if sort == nil || sort.Field == "" {
		return
	}

	if !slices.Contains(mm.store.Columns(), sort.Field) {
		err = nt.InvalidColumnError{Ref: sort.Field}
		return
	}

	ids = sorter.Order(ids, func(id nt.RowId) nt.Value {
		rec, _ := mm.store.Record(id)
		return rec.Get(sort.Field)
	}, nil, sort.Desc)
	return
}
