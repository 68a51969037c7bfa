package entity

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Value wraps a field value and provides type conversion helpers.
// A nil Raw is the null marker.
type Value struct {
	Raw any
}

// Null is the absent value.
var Null = Value{}

// NewValue wraps raw.
func NewValue(raw any) Value {
	return Value{Raw: raw}
}

// IsNull reports whether the value is the null marker.
func (v Value) IsNull() bool {
	return v.Raw == nil
}

// String returns the value as a string.
func (v Value) String() string {
	if v.Raw == nil {
		return ""
	}
	return fmt.Sprintf("%v", v.Raw)
}

// Int returns the value as an int.
func (v Value) Int() (int, error) {
	i, err := v.Int64()
	return int(i), err
}

// Int64 returns the value as an int64, accepting any integral kind.
func (v Value) Int64() (int64, error) {
	switch raw := v.Raw.(type) {
	case int:
		return int64(raw), nil
	case int8:
		return int64(raw), nil
	case int16:
		return int64(raw), nil
	case int32:
		return int64(raw), nil
	case int64:
		return raw, nil
	case uint:
		return int64(raw), nil
	case uint8:
		return int64(raw), nil
	case uint16:
		return int64(raw), nil
	case uint32:
		return int64(raw), nil
	case uint64:
		return int64(raw), nil
	case float64:
		if raw == math.Trunc(raw) {
			return int64(raw), nil
		}
	case string:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return i, nil
		}
	}
	return 0, errors.Errorf("value is not integral: %T", v.Raw)
}

// Float returns the value as a float64.
func (v Value) Float() (float64, error) {
	f, ok := v.number()
	if !ok {
		return 0, errors.Errorf("value is not a number: %T", v.Raw)
	}
	return f, nil
}

// Decimal returns the value as a decimal.Decimal.
func (v Value) Decimal() (decimal.Decimal, error) {
	switch raw := v.Raw.(type) {
	case decimal.Decimal:
		return raw, nil
	case string:
		d, err := decimal.NewFromString(raw)
		return d, errors.Wrapf(err, "value is not a decimal: %q", raw)
	}

	if i, err := v.Int64(); err == nil {
		return decimal.NewFromInt(i), nil
	}
	if f, ok := v.number(); ok {
		return decimal.NewFromFloat(f), nil
	}
	return decimal.Zero, errors.Errorf("value is not a decimal: %T", v.Raw)
}

// Bool returns the value as a bool.
func (v Value) Bool() (bool, error) {
	b, ok := v.Raw.(bool)
	if !ok {
		return false, errors.Errorf("value is not a bool: %T", v.Raw)
	}
	return b, nil
}

// Time returns the value as a time.Time.
func (v Value) Time() (time.Time, error) {
	t, ok := v.Raw.(time.Time)
	if !ok {
		return time.Time{}, errors.Errorf("value is not a time.Time: %T", v.Raw)
	}
	return t, nil
}

// Compare orders two non-null values by their natural order.
// Numbers compare numerically across kinds, decimals exactly, times
// chronologically and bools false first. Anything else, including mixed
// kinds, compares by string form.
func Compare(a, b Value) int {

	if da, ok := a.Raw.(decimal.Decimal); ok {
		if db, err := b.Decimal(); err == nil {
			return da.Cmp(db)
		}
	}
	if db, ok := b.Raw.(decimal.Decimal); ok {
		if da, err := a.Decimal(); err == nil {
			return da.Cmp(db)
		}
	}

	fa, aNum := a.number()
	fb, bNum := b.number()
	if aNum && bNum {
		return cmp.Compare(fa, fb)
	}

	ta, aTime := a.Raw.(time.Time)
	tb, bTime := b.Raw.(time.Time)
	if aTime && bTime {
		return ta.Compare(tb)
	}

	ba, aBool := a.Raw.(bool)
	bb, bBool := b.Raw.(bool)
	if aBool && bBool {
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	}

	return cmp.Compare(a.String(), b.String())
}

// unexported

func (v Value) number() (float64, bool) {
	switch raw := v.Raw.(type) {
	case int:
		return float64(raw), true
	case int8:
		return float64(raw), true
	case int16:
		return float64(raw), true
	case int32:
		return float64(raw), true
	case int64:
		return float64(raw), true
	case uint:
		return float64(raw), true
	case uint8:
		return float64(raw), true
	case uint16:
		return float64(raw), true
	case uint32:
		return float64(raw), true
	case uint64:
		return float64(raw), true
	case float32:
		return float64(raw), true
	case float64:
		return raw, true
	case decimal.Decimal:
		return raw.InexactFloat64(), true
	}
	return 0, false
}
