package rowstore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "tableau/entity"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(context.Background(), "id", []string{"date", "amount", "memo"}, nt.NopLogger{})
}

func rec(raw map[string]any) nt.Record {
	return nt.NewRecord(raw)
}

func TestAppendAssignsIds(t *testing.T) {

	st := newStore(t)

	ids, err := st.Append([]nt.Record{
		rec(map[string]any{"amount": 10}),
		rec(map[string]any{"amount": 20}),
	})
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{0, 1}, ids)

	ids, err = st.Append([]nt.Record{
		rec(map[string]any{"id": 7, "amount": 30}),
		rec(map[string]any{"amount": 40}),
	})
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{7, 2}, ids)
	assert.Equal(t, []nt.RowId{0, 1, 7, 2}, st.Index())

	ids, err = st.Append([]nt.Record{rec(nil)})
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{8}, ids)
}

func TestAppendBackfillsNulls(t *testing.T) {

	st := newStore(t)

	ids, err := st.Append([]nt.Record{rec(map[string]any{"amount": 10})})
	require.NoError(t, err)

	row, ok := st.Record(ids[0])
	require.True(t, ok)
	for _, name := range st.Columns() {
		assert.True(t, row.Has(name), name)
	}
	assert.True(t, row.Get("memo").IsNull())
	assert.True(t, row.Dirty)
}

func TestAppendDuplicateIsAllOrNothing(t *testing.T) {

	st := newStore(t)
	_, err := st.Append([]nt.Record{rec(map[string]any{"id": 1, "amount": 10})})
	require.NoError(t, err)

	_, err = st.Append([]nt.Record{
		rec(map[string]any{"id": 2, "amount": 20}),
		rec(map[string]any{"id": 1, "amount": 30}),
	})

	var dupErr nt.DuplicateRowIdError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, []nt.RowId{1}, dupErr.Ids)
	assert.Equal(t, []nt.RowId{1}, st.Index())

	_, err = st.Append([]nt.Record{
		rec(map[string]any{"id": 5}),
		rec(map[string]any{"id": 5}),
	})
	assert.True(t, errors.As(err, &dupErr))
	assert.Equal(t, 1, st.Len())
}

func TestDelete(t *testing.T) {

	st := newStore(t)
	ids, err := st.Append([]nt.Record{rec(nil), rec(nil), rec(nil)})
	require.NoError(t, err)

	err = st.Delete([]nt.RowId{ids[1], 99})
	var nfErr nt.RowNotFoundError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, 3, st.Len())

	require.NoError(t, st.Delete([]nt.RowId{ids[1]}))
	assert.Equal(t, []nt.RowId{ids[0], ids[2]}, st.Index())
}

func TestGetSet(t *testing.T) {

	st := newStore(t)
	ids, err := st.Append([]nt.Record{rec(map[string]any{"memo": "coffee"})})
	require.NoError(t, err)
	id := ids[0]

	row, _ := st.Record(id)
	row.Dirty = false

	require.NoError(t, st.Set(id, "memo", nt.NewValue("tea")))
	val, err := st.Get(id, "memo")
	require.NoError(t, err)
	assert.Equal(t, "tea", val.Raw)
	assert.True(t, row.Dirty)

	var colErr nt.InvalidColumnError
	err = st.Set(id, "nope", nt.NewValue(1))
	assert.True(t, errors.As(err, &colErr))

	var nfErr nt.RowNotFoundError
	_, err = st.Get(42, "memo")
	assert.True(t, errors.As(err, &nfErr))

	assert.Error(t, st.Set(id, "id", nt.NewValue(3)))
}

func TestSortByKeepsIdentity(t *testing.T) {

	st := newStore(t)
	_, err := st.Append([]nt.Record{
		rec(map[string]any{"id": 1, "amount": 10}),
		rec(map[string]any{"id": 2, "amount": -5}),
		rec(map[string]any{"id": 3, "amount": nil}),
	})
	require.NoError(t, err)

	require.NoError(t, st.SortBy("amount", nil, false))
	assert.Equal(t, []nt.RowId{3, 2, 1}, st.Index())

	val, err := st.Get(2, "amount")
	require.NoError(t, err)
	assert.Equal(t, -5, val.Raw)

	require.NoError(t, st.SortBy("amount", nil, true))
	assert.Equal(t, []nt.RowId{3, 1, 2}, st.Index())

	st.SortIndex()
	assert.Equal(t, []nt.RowId{1, 2, 3}, st.Index())

	var colErr nt.InvalidColumnError
	assert.True(t, errors.As(st.SortBy("nope", nil, false), &colErr))
}

func TestMergeAndReplace(t *testing.T) {

	st := newStore(t)
	_, err := st.Append([]nt.Record{
		rec(map[string]any{"id": 1, "memo": "a"}),
		rec(map[string]any{"id": 2, "memo": "b"}),
	})
	require.NoError(t, err)

	ids, err := st.Merge([]nt.Record{
		rec(map[string]any{"id": 2, "memo": "B"}),
		rec(map[string]any{"id": 3, "memo": "c"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{2, 3}, ids)
	assert.Equal(t, []nt.RowId{1, 2, 3}, st.Index())

	val, _ := st.Get(2, "memo")
	assert.Equal(t, "B", val.Raw)

	_, err = st.Replace([]nt.Record{
		rec(map[string]any{"id": 3, "memo": "C"}),
		rec(map[string]any{"id": 4, "memo": "d"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{3, 4}, st.Index())

	_, err = st.Replace(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())
}

func TestColumnsAddRemove(t *testing.T) {

	st := newStore(t)
	ids, err := st.Append([]nt.Record{rec(map[string]any{"memo": "a"}), rec(nil)})
	require.NoError(t, err)

	require.NoError(t, st.AddColumn("category", nt.NewValue("none")))
	for _, id := range ids {
		val, err := st.Get(id, "category")
		require.NoError(t, err)
		assert.Equal(t, "none", val.Raw)
	}
	assert.Error(t, st.AddColumn("category", nt.Null))

	require.NoError(t, st.RemoveColumn("memo"))
	row, _ := st.Record(ids[0])
	assert.False(t, row.Has("memo"))
	assert.NotContains(t, st.Columns(), "memo")

	assert.Error(t, st.RemoveColumn("id"))
	assert.Error(t, st.RemoveColumn("memo"))
}

func TestSwap(t *testing.T) {

	st := newStore(t)
	_, err := st.Append([]nt.Record{
		rec(map[string]any{"id": 1, "memo": "a"}),
		rec(map[string]any{"id": 2, "memo": "b"}),
	})
	require.NoError(t, err)

	require.NoError(t, st.Swap(1, 2))

	a, _ := st.Get(1, "memo")
	b, _ := st.Get(2, "memo")
	assert.Equal(t, "b", a.Raw)
	assert.Equal(t, "a", b.Raw)

	id, _ := st.Get(1, "id")
	assert.Equal(t, int64(1), id.Raw)
}

func TestSaveLoadRoundTrip(t *testing.T) {

	paid := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	st := newStore(t)
	_, err := st.Append([]nt.Record{
		rec(map[string]any{"id": 1, "date": paid, "amount": decimal.RequireFromString("10.50"), "memo": "rent"}),
		rec(map[string]any{"id": 2, "amount": decimal.RequireFromString("-5"), "memo": nil}),
		rec(map[string]any{"id": 3, "amount": decimal.RequireFromString("9"), "memo": "refund"}),
		rec(map[string]any{"id": 4, "amount": nil, "memo": "2024-01-02"}),
		rec(map[string]any{"id": 5, "amount": -5.5, "memo": 12}),
	})
	require.NoError(t, err)
	require.NoError(t, st.SortBy("amount", nil, false))
	require.Equal(t, []nt.RowId{4, 5, 2, 3, 1}, st.Index())

	buf := &bytes.Buffer{}
	require.NoError(t, st.Save(buf))
	assert.Contains(t, buf.String(), "!decimal 10.50")

	loaded := newStore(t)
	require.NoError(t, loaded.Load(buf))

	assert.Equal(t, st.Index(), loaded.Index())
	for _, id := range st.Index() {
		for _, name := range st.Columns() {
			want, err := st.Get(id, name)
			require.NoError(t, err)
			got, err := loaded.Get(id, name)
			require.NoError(t, err)
			assert.Equal(t, want.Raw, got.Raw, "row %d column %s", id, name)
		}
	}

	amount, err := loaded.Get(1, "amount")
	require.NoError(t, err)
	assert.Equal(t, "10.50", amount.Raw.(decimal.Decimal).StringFixed(2))

	date, err := loaded.Get(1, "date")
	require.NoError(t, err)
	assert.True(t, paid.Equal(date.Raw.(time.Time)))

	require.NoError(t, loaded.SortBy("amount", nil, true))
	require.NoError(t, st.SortBy("amount", nil, true))
	assert.Equal(t, st.Index(), loaded.Index())
	assert.Equal(t, []nt.RowId{4, 1, 3, 2, 5}, loaded.Index())
}

func TestLoadBadRows(t *testing.T) {

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not a mapping", doc: "- just text\n"},
		{name: "bad decimal", doc: "- id: 1\n  amount: !decimal ten\n"},
		{name: "bad time", doc: "- id: 1\n  date: !time yesterday\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			st := newStore(t)
			_, err := st.Append([]nt.Record{rec(map[string]any{"id": 9})})
			require.NoError(t, err)

			assert.Error(t, st.Load(bytes.NewBufferString(tc.doc)))
			assert.Equal(t, 1, st.Len())
		})
	}

	st := newStore(t)
	require.NoError(t, st.Load(bytes.NewBufferString("")))
	assert.Equal(t, 0, st.Len())
}

func TestSaveLoadFile(t *testing.T) {

	st := newStore(t)
	_, err := st.Append([]nt.Record{
		{Values: map[string]nt.Value{"id": nt.NewValue(4), "memo": nt.NewValue("x")}, Tag: "txn", Details: nt.Details{Open: true}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rows.yaml")
	require.NoError(t, st.SaveFile(path))

	loaded := New(context.Background(), "id", nil, nt.NopLogger{})
	require.NoError(t, loaded.LoadFile(path))

	row, ok := loaded.Record(4)
	require.True(t, ok)
	assert.Equal(t, "txn", row.Tag)
	assert.True(t, row.Details.Open)
	assert.Equal(t, "x", row.Get("memo").Raw)
	assert.Contains(t, loaded.Columns(), "amount")
}
