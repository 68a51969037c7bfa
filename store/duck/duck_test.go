package duck

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "tableau/entity"
)

const sample = `name,amount
rent,30
food,20
bus,10
tea,
`

func newDuck(t *testing.T) *Duck {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	dk, err := New(context.Background(), "", nt.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(dk.Close)

	require.NoError(t, dk.Load(path))
	return dk
}

func names(recs []nt.Record) (out []string) {
	for _, rec := range recs {
		out = append(out, rec.Get("name").String())
	}
	return
}

func TestLoad(t *testing.T) {

	dk := newDuck(t)

	fields := dk.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "index", fields[0].Name)
	assert.Equal(t, "name", fields[1].Name)

	cols := dk.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "amount", cols[1].Field)
	assert.Equal(t, nt.Packed, cols[1].Sizing)

	count, known, err := dk.RowCount()
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, 4, count)

	assert.Error(t, dk.Load(filepath.Join(t.TempDir(), "sample.xls")))
}

func TestQuery(t *testing.T) {

	dk := newDuck(t)

	recs, err := dk.Query(0, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"rent", "food"}, names(recs))

	id, err := recs[1].Get("index").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	recs, err = dk.Query(2, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bus", "tea"}, names(recs))

	recs, err = dk.Query(0, 0, &nt.Sort{Field: "amount"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tea", "bus", "food", "rent"}, names(recs))

	recs, err = dk.Query(0, 0, &nt.Sort{Field: "amount", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"tea", "rent", "food", "bus"}, names(recs))

	_, err = dk.Query(0, 0, &nt.Sort{Field: "nope"})
	var colErr nt.InvalidColumnError
	assert.True(t, errors.As(err, &colErr))
}

func TestFilter(t *testing.T) {

	tests := []struct {
		name   string
		filter nt.Filter
		expect []string
	}{
		{
			name:   "greater",
			filter: nt.Filter{Op: nt.Gt, Field: "amount", Value: 15},
			expect: []string{"rent", "food"},
		},
		{
			name:   "null",
			filter: nt.Filter{Op: nt.Eq, Field: "amount"},
			expect: []string{"tea"},
		},
		{
			name:   "contains",
			filter: nt.Filter{Op: nt.Contains, Field: "name", Value: "en"},
			expect: []string{"rent"},
		},
		{
			name:   "match",
			filter: nt.Filter{Op: nt.Match, Field: "name", Value: "^b"},
			expect: []string{"bus"},
		},
		{
			name:   "similar",
			filter: nt.Filter{Op: nt.Similar, Field: "name", Value: "fod"},
			expect: []string{"food"},
		},
		{
			name: "not or",
			filter: nt.Filter{Op: nt.Not, Children: []nt.Filter{
				{Op: nt.Or, Children: []nt.Filter{
					{Op: nt.Eq, Field: "name", Value: "rent"},
					{Op: nt.Lt, Field: "amount", Value: 15},
				}},
			}},
			expect: []string{"food", "tea"},
		},
		{
			name:   "everything",
			filter: nt.Filter{},
			expect: []string{"rent", "food", "bus", "tea"},
		},
	}

	dk := newDuck(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			require.NoError(t, dk.SetFilter(tc.filter))

			recs, err := dk.Query(0, 0, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, names(recs))

			count, _, err := dk.RowCount()
			require.NoError(t, err)
			assert.Equal(t, len(tc.expect), count)
		})
	}
}

func TestFilterUnknownField(t *testing.T) {

	dk := newDuck(t)

	var colErr nt.InvalidColumnError
	err := dk.SetFilter(nt.Filter{Op: nt.Eq, Field: "nope; drop table records", Value: 1})
	assert.True(t, errors.As(err, &colErr))
}

func TestConvert(t *testing.T) {

	dec := convert(duckdb.Decimal{Width: 10, Scale: 2, Value: big.NewInt(1250)})
	assert.True(t, decimal.RequireFromString("12.50").Equal(dec.(decimal.Decimal)))

	assert.Equal(t, "raw", convert([]byte("raw")))
	assert.Equal(t, int64(3), convert(int64(3)))
}
