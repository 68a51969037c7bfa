// Package sorter orders row ids by a column, nulls first in either direction.
package sorter

import (
	"slices"

	nt "tableau/entity"
)

// Comparator orders two non-null values.
type Comparator func(a, b nt.Value) int

// Ref refers to a column either by position among the visible data columns
// or by name.
type Ref interface {
	resolve(visible []string) (name string, index int, err error)
}

// Index refers to a column by position among the visible data columns.
type Index int

// Name refers to a column by name.
type Name string

func (idx Index) resolve(visible []string) (name string, index int, err error) {

	if int(idx) < 0 || int(idx) >= len(visible) {
		err = nt.InvalidColumnError{Ref: int(idx)}
		return
	}
	return visible[idx], int(idx), nil
}

func (nm Name) resolve(visible []string) (name string, index int, err error) {

	index = slices.Index(visible, string(nm))
	if index < 0 {
		err = nt.InvalidColumnError{Ref: string(nm)}
		return
	}
	return string(nm), index, nil
}

// Resolve finds the name and visible index a ref points at.
func Resolve(ref Ref, visible []string) (name string, index int, err error) {
	return ref.resolve(visible)
}

// Next computes the sort state that selecting a column produces.
// With toggle set and the column already active, the direction flips.
// Otherwise an explicit reverse wins, then the column's declared default,
// then ascending.
func Next(active *nt.Sort, name string, reverse, declared *bool, toggle bool) nt.Sort {

	if toggle && active != nil && active.Field == name {
		return nt.Sort{Field: name, Desc: !active.Desc}
	}

	desc := false
	switch {
	case reverse != nil:
		desc = *reverse
	case declared != nil:
		desc = *declared
	}

	return nt.Sort{Field: name, Desc: desc}
}

// Order returns ids stably sorted by key.
// Nulls come first whatever the direction, ties keep their relative order.
// A nil cmp uses the natural value order.
func Order(ids []nt.RowId, key func(nt.RowId) nt.Value, cmp Comparator, reverse bool) []nt.RowId {

	if cmp == nil {
		cmp = nt.Compare
	}

	keys := make(map[nt.RowId]nt.Value, len(ids))
	for _, id := range ids {
		keys[id] = key(id)
	}

	sorted := slices.Clone(ids)
	slices.SortStableFunc(sorted, func(a, b nt.RowId) int {
		return compareKeys(keys[a], keys[b], cmp, reverse)
	})

	return sorted
}

// unexported

func compareKeys(a, b nt.Value, cmp Comparator, reverse bool) int {

	aNull, bNull := a.IsNull(), b.IsNull()
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return -1
	case bNull:
		return 1
	}

	c := cmp(a, b)
	if reverse {
		return -c
	}
	return c
}
