package memo

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "tableau/entity"
	"tableau/rowstore"
)

func newMemo(t *testing.T) *Memo {
	t.Helper()

	st := rowstore.New(context.Background(), "id", []string{"amount"}, nt.NopLogger{})
	for i, amount := range []any{30, nil, 10, 20, -1} {
		_, err := st.Append([]nt.Record{nt.NewRecord(map[string]any{"id": i + 1, "amount": amount})})
		require.NoError(t, err)
	}
	return New(st)
}

func idsOf(recs []nt.Record) (ids []nt.RowId) {
	for _, rec := range recs {
		ids = append(ids, rec.Id)
	}
	return
}

func TestQuery(t *testing.T) {

	mm := newMemo(t)

	recs, err := mm.Query(0, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{1, 2}, idsOf(recs))

	recs, err = mm.Query(4, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{5}, idsOf(recs))

	recs, err = mm.Query(9, 2, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = mm.Query(0, 0, &nt.Sort{Field: "amount", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{2, 1, 4, 3, 5}, idsOf(recs))

	_, err = mm.Query(0, 0, &nt.Sort{Field: "nope"})
	var colErr nt.InvalidColumnError
	assert.True(t, errors.As(err, &colErr))

	_, err = mm.Query(-1, 2, nil)
	assert.Error(t, err)
}

func TestFilterAndCount(t *testing.T) {

	mm := newMemo(t)

	count, known, err := mm.RowCount()
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, 5, count)

	require.NoError(t, mm.SetFilter(nt.Filter{Op: nt.Gte, Field: "amount", Value: 10}))
	count, _, err = mm.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	recs, err := mm.Query(0, 0, &nt.Sort{Field: "amount"})
	require.NoError(t, err)
	assert.Equal(t, []nt.RowId{3, 4, 1}, idsOf(recs))

	mm.HideCount(true)
	_, known, err = mm.RowCount()
	require.NoError(t, err)
	assert.False(t, known)

	assert.Error(t, mm.SetFilter(nt.Filter{Op: nt.Match, Field: "amount", Value: "("}))
}
