package entity

import "maps"

// RowId identifies a logical row independent of sort and filter order.
type RowId int64

// NoFocus marks a record without a focused column.
const NoFocus = -1

// Details is the open/disabled state of an expandable row.
type Details struct {
	Open     bool `yaml:"open,omitempty"`
	Disabled bool `yaml:"disabled,omitempty"`
}

// Record is a row: a field map plus an optional type tag and bookkeeping.
// Accessors behave the same whatever the tag.
type Record struct {
	Id      RowId
	Values  map[string]Value
	Tag     string
	Details Details

	// Dirty is set whenever derived values or the cached render are stale.
	Dirty bool
	// FocusColumn is the focused visible column or NoFocus.
	FocusColumn int
}

// NewRecord creates a record from raw values.
func NewRecord(raw map[string]any) Record {

	values := make(map[string]Value, len(raw))
	for name, val := range raw {
		values[name] = Value{Raw: val}
	}

	return Record{
		Values:      values,
		Dirty:       true,
		FocusColumn: NoFocus,
	}
}

// Get returns the named value, null when absent.
func (rec Record) Get(name string) Value {
	return rec.Values[name]
}

// Has reports whether a value is present for name, null or not.
func (rec Record) Has(name string) bool {
	_, ok := rec.Values[name]
	return ok
}

// With returns a copy of the record with name set to val.
func (rec Record) With(name string, val Value) Record {
	rec = rec.Clone()
	rec.Values[name] = val
	return rec
}

// Clone returns a copy that shares no maps with rec.
func (rec Record) Clone() Record {
	rec.Values = maps.Clone(rec.Values)
	if rec.Values == nil {
		rec.Values = map[string]Value{}
	}
	return rec
}

// Raw returns the values unwrapped, keyed by column name.
func (rec Record) Raw() map[string]any {

	raw := make(map[string]any, len(rec.Values))
	for name, val := range rec.Values {
		raw[name] = val.Raw
	}
	return raw
}
