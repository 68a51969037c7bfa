package filter

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	nt "tableau/entity"
)

var dateLayouts = []string{time.RFC3339, time.DateTime, time.DateOnly}

// Combine joins the enabled filters into one, anding when more than one.
func Combine(filters []nt.Filter) nt.Filter {

	var enabled []nt.Filter
	for _, f := range filters {
		if f.Enabled {
			enabled = append(enabled, f)
		}
	}

	switch len(enabled) {
	case 0:
		return nt.Filter{}
	case 1:
		return enabled[0]
	}
	return nt.Filter{Op: nt.And, Children: enabled}
}

// Compile turns a filter tree into a predicate.
// Logical ops with no children pass everything.
func Compile(f nt.Filter) (pred Predicate, err error) {

	switch f.Op {
	case nt.And, nt.Or:
		return compileLogical(f)
	case nt.Not:
		if len(f.Children) == 0 {
			pred = func(nt.Record) bool { return true }
			return
		}
		var inner Predicate
		inner, err = Compile(f.Children[0])
		if err != nil {
			return
		}
		pred = func(rec nt.Record) bool { return !inner(rec) }
		return
	}

	if f.Field == "" {
		err = errors.Errorf("filter op %d has no field", f.Op)
		return
	}

	switch f.Op {
	case nt.Eq, nt.Ne, nt.Gt, nt.Gte, nt.Lt, nt.Lte:
		pred = compileComparison(f)
	case nt.Contains:
		target := nt.NewValue(f.Value).String()
		pred = func(rec nt.Record) bool {
			return strings.Contains(rec.Get(f.Field).String(), target)
		}
	case nt.Match:
		pred, err = compileMatch(f)
	case nt.Similar:
		pred = compileSimilar(f)
	default:
		err = errors.Errorf("unknown filter op %d", f.Op)
	}
	return
}

// unexported

func compileLogical(f nt.Filter) (pred Predicate, err error) {

	children := make([]Predicate, len(f.Children))
	for i, child := range f.Children {
		children[i], err = Compile(child)
		if err != nil {
			return
		}
	}

	if f.Op == nt.And || len(children) == 0 {
		pred = func(rec nt.Record) bool {
			for _, child := range children {
				if !child(rec) {
					return false
				}
			}
			return true
		}
		return
	}

	pred = func(rec nt.Record) bool {
		for _, child := range children {
			if child(rec) {
				return true
			}
		}
		return false
	}
	return
}

func compileComparison(f nt.Filter) Predicate {

	return func(rec nt.Record) bool {
		val := rec.Get(f.Field)
		if val.IsNull() || f.Value == nil {
			switch f.Op {
			case nt.Eq:
				return val.IsNull() && f.Value == nil
			case nt.Ne:
				return val.IsNull() != (f.Value == nil)
			}
			return false
		}

		res := nt.Compare(val, coerce(f.Value, val))
		switch f.Op {
		case nt.Eq:
			return res == 0
		case nt.Ne:
			return res != 0
		case nt.Gt:
			return res > 0
		case nt.Gte:
			return res >= 0
		case nt.Lt:
			return res < 0
		}
		return res <= 0
	}
}

func compileMatch(f nt.Filter) (pred Predicate, err error) {

	pattern := nt.NewValue(f.Value).String()
	re, err := regexp.Compile(pattern)
	if err != nil {
		err = errors.Wrapf(err, "failed to compile pattern for %s", f.Field)
		return
	}

	pred = func(rec nt.Record) bool {
		return re.MatchString(rec.Get(f.Field).String())
	}
	return
}

// compileSimilar matches when any word of the value is within a quarter
// of the target's length in edits, and at least one.
func compileSimilar(f nt.Filter) Predicate {

	target := strings.ToLower(nt.NewValue(f.Value).String())
	limit := max(utf8.RuneCountInString(target)/4, 1)

	return func(rec nt.Record) bool {
		text := strings.ToLower(rec.Get(f.Field).String())
		if strings.Contains(text, target) {
			return true
		}
		for _, word := range strings.Fields(text) {
			if levenshtein.ComputeDistance(word, target) <= limit {
				return true
			}
		}
		return false
	}
}

// coerce converts a text operand to the kind of the value it is compared to.
func coerce(operand any, like nt.Value) nt.Value {

	text, ok := operand.(string)
	if !ok {
		return nt.NewValue(operand)
	}

	if _, err := like.Float(); err == nil {
		if dec, err := decimal.NewFromString(strings.TrimSpace(text)); err == nil {
			return nt.NewValue(dec)
		}
	}

	if _, err := like.Time(); err == nil {
		for _, layout := range dateLayouts {
			if when, err := time.Parse(layout, text); err == nil {
				return nt.NewValue(when)
			}
		}
	}

	return nt.NewValue(text)
}
