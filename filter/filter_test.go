package filter

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "tableau/entity"
	"tableau/message"
	"tableau/style"
)

var rows = map[nt.RowId]*nt.Record{
	1: {Id: 1, Values: map[string]nt.Value{"amount": nt.NewValue(10), "memo": nt.NewValue("coffee shop")}},
	2: {Id: 2, Values: map[string]nt.Value{"amount": nt.NewValue(-5), "memo": nt.NewValue("rent")}},
	3: {Id: 3, Values: map[string]nt.Value{"amount": nt.Null, "memo": nt.NewValue("Refund")}},
	4: {Id: 4, Values: map[string]nt.Value{"amount": nt.NewValue(decimal.RequireFromString("99.50")), "memo": nt.Null}},
}

func lookup(id nt.RowId) (*nt.Record, bool) {
	rec, ok := rows[id]
	return rec, ok
}

var ids = []nt.RowId{4, 3, 2, 1}

func visible(t *testing.T, f nt.Filter) []nt.RowId {
	t.Helper()

	pred, err := Compile(f)
	require.NoError(t, err)

	eng := &Engine{}
	eng.Apply(pred)
	return eng.Visible(ids, lookup)
}

func TestEngine(t *testing.T) {

	eng := &Engine{}
	assert.False(t, eng.Active())
	assert.Equal(t, ids, eng.Visible(ids, lookup))

	positive := func(rec nt.Record) bool {
		f, err := rec.Get("amount").Float()
		return err == nil && f > 0
	}
	short := func(rec nt.Record) bool {
		return len(rec.Get("memo").String()) < 5
	}

	eng.Apply(positive)
	assert.Equal(t, []nt.RowId{4, 1}, eng.Visible(ids, lookup))

	eng.Apply(positive, short)
	assert.Equal(t, []nt.RowId{4}, eng.Visible(ids, lookup))

	eng.Clear()
	assert.Equal(t, ids, eng.Visible(append(ids, 42), lookup))
}

func TestCompile(t *testing.T) {

	tests := []struct {
		name   string
		filter nt.Filter
		want   []nt.RowId
	}{
		{
			name:   "zero filter passes all",
			filter: nt.Filter{},
			want:   ids,
		},
		{
			name:   "greater than text operand",
			filter: nt.Filter{Op: nt.Gt, Field: "amount", Value: "9"},
			want:   []nt.RowId{4, 1},
		},
		{
			name:   "less or equal",
			filter: nt.Filter{Op: nt.Lte, Field: "amount", Value: 10},
			want:   []nt.RowId{2, 1},
		},
		{
			name:   "equal decimal",
			filter: nt.Filter{Op: nt.Eq, Field: "amount", Value: "99.5"},
			want:   []nt.RowId{4},
		},
		{
			name:   "equal null",
			filter: nt.Filter{Op: nt.Eq, Field: "amount", Value: nil},
			want:   []nt.RowId{3},
		},
		{
			name:   "not equal",
			filter: nt.Filter{Op: nt.Ne, Field: "memo", Value: "rent"},
			want:   []nt.RowId{4, 3, 1},
		},
		{
			name:   "contains",
			filter: nt.Filter{Op: nt.Contains, Field: "memo", Value: "ee"},
			want:   []nt.RowId{1},
		},
		{
			name:   "match",
			filter: nt.Filter{Op: nt.Match, Field: "memo", Value: "(?i)^re"},
			want:   []nt.RowId{3, 2},
		},
		{
			name:   "similar",
			filter: nt.Filter{Op: nt.Similar, Field: "memo", Value: "cofee"},
			want:   []nt.RowId{1},
		},
		{
			name: "or",
			filter: nt.Filter{Op: nt.Or, Children: []nt.Filter{
				{Op: nt.Eq, Field: "memo", Value: "rent"},
				{Op: nt.Lt, Field: "amount", Value: 0},
				{Op: nt.Eq, Field: "memo", Value: "Refund"},
			}},
			want: []nt.RowId{3, 2},
		},
		{
			name: "not and",
			filter: nt.Filter{Op: nt.Not, Children: []nt.Filter{
				{Op: nt.And, Children: []nt.Filter{
					{Op: nt.Gt, Field: "amount", Value: 0},
					{Op: nt.Contains, Field: "memo", Value: "coffee"},
				}},
			}},
			want: []nt.RowId{4, 3, 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, visible(t, tc.filter))
		})
	}
}

func TestCompileErrors(t *testing.T) {

	_, err := Compile(nt.Filter{Op: nt.Match, Field: "memo", Value: "("})
	assert.Error(t, err)

	_, err = Compile(nt.Filter{Op: nt.Eq, Value: 1})
	assert.Error(t, err)

	_, err = Compile(nt.Filter{Op: nt.Or, Children: []nt.Filter{{Op: nt.Match, Field: "memo", Value: "["}}})
	assert.Error(t, err)
}

func TestCompileTime(t *testing.T) {

	rec := nt.Record{Values: map[string]nt.Value{
		"date": nt.NewValue(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
	}}

	pred, err := Compile(nt.Filter{Op: nt.Gte, Field: "date", Value: "2024-03-01"})
	require.NoError(t, err)
	assert.True(t, pred(rec))

	pred, err = Compile(nt.Filter{Op: nt.Lt, Field: "date", Value: "2024-03-01"})
	require.NoError(t, err)
	assert.False(t, pred(rec))
}

func TestCombine(t *testing.T) {

	a := nt.Filter{Op: nt.Eq, Field: "memo", Value: "rent", Enabled: true}
	b := nt.Filter{Op: nt.Gt, Field: "amount", Value: 0, Enabled: false}
	c := nt.Filter{Op: nt.Lt, Field: "amount", Value: 100, Enabled: true}

	assert.True(t, Combine(nil).IsZero())
	assert.True(t, Combine([]nt.Filter{b}).IsZero())
	assert.Equal(t, a, Combine([]nt.Filter{a, b}))
	assert.Equal(t, nt.Filter{Op: nt.And, Children: []nt.Filter{a, c}}, Combine([]nt.Filter{a, b, c}))
}

func press(pnl Panel, keys ...tea.KeyPressMsg) (Panel, tea.Cmd) {

	var cmd tea.Cmd
	for _, key := range keys {
		var mdl tea.Model
		mdl, cmd = pnl.Update(key)
		pnl = mdl.(Panel)
	}
	return pnl, cmd
}

func text(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func TestPanel(t *testing.T) {

	pnl := NewPanel(context.Background(), []string{"memo", "amount"}, nil, style.Palette{}, nt.NopLogger{})

	pnl, _ = press(pnl,
		text("a"),
		tea.KeyPressMsg{Code: tea.KeyRight},
		tea.KeyPressMsg{Code: tea.KeyTab},
		tea.KeyPressMsg{Code: tea.KeyRight},
		tea.KeyPressMsg{Code: tea.KeyRight},
		tea.KeyPressMsg{Code: tea.KeyTab},
		text("1"), text("0"), text("5"),
		tea.KeyPressMsg{Code: tea.KeyBackspace},
	)

	require.Len(t, pnl.Filters(), 1)
	assert.Equal(t, nt.Filter{Op: nt.Contains, Field: "amount", Value: "10", Enabled: true}, pnl.Filters()[0])

	_, cmd := press(pnl, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)

	msgs := cmd().(tea.BatchMsg)
	require.Len(t, msgs, 2)
	assert.Equal(t, message.SetFilterMsg{Filter: pnl.Filters()[0]}, msgs[0]())
}

func TestPanelOpenFilter(t *testing.T) {

	pnl := NewPanel(context.Background(), []string{"memo"}, nil, style.DefaultPalette(), nt.NopLogger{})

	mdl, _ := pnl.Update(message.OpenFilterMsg{Field: "memo", Value: "rent"})
	pnl = mdl.(Panel)

	pnl, _ = press(pnl,
		tea.KeyPressMsg{Code: tea.KeyTab},
		text("t"),
		tea.KeyPressMsg{Code: tea.KeyTab},
		text("d"),
	)
	assert.Empty(t, pnl.Filters())
}
