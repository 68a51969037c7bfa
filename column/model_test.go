package column

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "tableau/entity"
)

func newModel(t *testing.T, divider string) *Model {
	t.Helper()

	mdl, err := NewModel([]nt.Column{
		{Field: "date", Width: 10, MinWidth: 4},
		{Field: "amount", Width: 8, MinWidth: 3},
		{Field: "memo", Width: 20, MinWidth: 5},
	}, divider)
	require.NoError(t, err)
	return mdl
}

func names(cols []*Column) (out []string) {
	for _, col := range cols {
		out = append(out, col.Field)
	}
	return
}

func TestVisibleColumns(t *testing.T) {

	mdl := newModel(t, "|")

	visible := mdl.VisibleColumns()
	assert.Equal(t, []string{"date", "|", "amount", "|", "memo"}, names(visible))
	assert.True(t, visible[1].IsDivider())
	assert.Equal(t, "|", visible[1].Display(nt.Null))

	require.NoError(t, mdl.Toggle([]string{"amount"}, nil))
	assert.Equal(t, []string{"date", "|", "memo"}, names(mdl.VisibleColumns()))
	assert.Equal(t, []string{"date", "memo"}, mdl.VisibleNames())
	assert.Len(t, mdl.DataColumns(), 3)

	show := true
	require.NoError(t, mdl.Toggle([]string{"amount", "memo"}, &show))
	assert.Equal(t, []string{"date", "amount", "memo"}, mdl.VisibleNames())

	var colErr nt.InvalidColumnError
	err := mdl.Toggle([]string{"memo", "nope"}, nil)
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, []string{"date", "amount", "memo"}, mdl.VisibleNames())
}

func TestNoDivider(t *testing.T) {

	mdl := newModel(t, "")
	assert.Equal(t, []string{"date", "amount", "memo"}, names(mdl.VisibleColumns()))
}

func TestResizeClampsAndResets(t *testing.T) {

	mdl := newModel(t, "")

	require.NoError(t, mdl.ResizeSizing("memo", nt.Packed, 12))
	require.NoError(t, mdl.Resize("memo", 2))

	col, ok := mdl.Lookup("memo")
	require.True(t, ok)
	assert.Equal(t, 5, col.Width)
	assert.Equal(t, nt.Fixed, col.Sizing)

	mdl.ResetWidths()
	assert.Equal(t, 20, col.Width)

	var colErr nt.InvalidColumnError
	assert.True(t, errors.As(mdl.Resize("nope", 3), &colErr))
	assert.Error(t, mdl.ResizeSizing("memo", "stretchy", 3))
}

func TestAddRemove(t *testing.T) {

	mdl := newModel(t, "")

	require.NoError(t, mdl.Add(Named("category", 10)))
	assert.Equal(t, 3, mdl.Index("category"))
	assert.Error(t, mdl.Add(Named("memo", 4)))

	require.NoError(t, mdl.Remove("date", "memo"))
	assert.Equal(t, []string{"amount", "category"}, mdl.Names())

	var colErr nt.InvalidColumnError
	assert.True(t, errors.As(mdl.Remove("date"), &colErr))
}

func TestLayout(t *testing.T) {

	mdl, err := NewModel([]nt.Column{
		{Field: "date", Width: 10},
		{Field: "memo", Sizing: nt.Packed, MinWidth: 4},
		{Field: "payee", Sizing: nt.Packed, MinWidth: 4},
		{Field: "notes", Sizing: nt.Weighted, Weight: 1, MinWidth: 2},
		{Field: "extra", Sizing: nt.Weighted, Weight: 2, MinWidth: 2},
	}, " ")
	require.NoError(t, err)

	content := map[string]int{"memo": 30, "payee": 6}
	widths := mdl.Layout(60, func(name string) int { return content[name] })

	// 10 fixed + 4 dividers leaves 46: memo gets min(30, 23), payee 6,
	// then notes and extra split 17 by weight
	assert.Equal(t, []int{10, 1, 23, 1, 6, 1, 5, 1, 12}, widths)

	col, _ := mdl.Lookup("memo")
	assert.Equal(t, 23, col.Width)

	widths = mdl.Layout(10, func(name string) int { return content[name] })
	assert.Equal(t, []int{10, 1, 4, 1, 4, 1, 2, 1, 2}, widths)
}

func TestDecorate(t *testing.T) {

	col := New(nt.Column{Field: "date", Format: "2006-01-02"})
	when := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-05", col.Display(nt.NewValue(when)))
	assert.Equal(t, "pending", col.Display(nt.NewValue("pending")))
	assert.Equal(t, "date", col.Title())
	assert.Equal(t, nt.Fixed, col.Sizing)

	col.Decorate = nil
	assert.Equal(t, "42", col.Display(nt.NewValue(42)))
}
