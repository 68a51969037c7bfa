// Package filter narrows table rows with composable predicates.
package filter

import (
	nt "tableau/entity"
)

// Predicate reports whether a row stays visible.
type Predicate func(rec nt.Record) bool

// Engine holds the active predicates.
// Filtering never changes the rows themselves, only which ids are visible.
type Engine struct {
	preds []Predicate
}

// Apply replaces the active predicates.
func (eng *Engine) Apply(preds ...Predicate) {
	eng.preds = preds
}

// Clear removes every predicate, making all rows visible.
func (eng *Engine) Clear() {
	eng.preds = nil
}

// Active reports whether any predicate is set.
func (eng *Engine) Active() bool {
	return len(eng.preds) > 0
}

// Visible returns, in the given order, the ids passing every predicate.
// Ids that lookup cannot find are dropped.
func (eng *Engine) Visible(ids []nt.RowId, lookup func(nt.RowId) (*nt.Record, bool)) []nt.RowId {

	visible := make([]nt.RowId, 0, len(ids))
	for _, id := range ids {
		rec, ok := lookup(id)
		if !ok {
			continue
		}
		if eng.keep(*rec) {
			visible = append(visible, id)
		}
	}
	return visible
}

// unexported

func (eng *Engine) keep(rec nt.Record) bool {

	for _, pred := range eng.preds {
		if !pred(rec) {
			return false
		}
	}
	return true
}
