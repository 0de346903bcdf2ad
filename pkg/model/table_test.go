package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numeric(name string, vals ...float64) *Column {
	c := NewNumericColumn(name, len(vals))
	for i, v := range vals {
		c.SetFloat(i, v)
	}
	return c
}

func TestTable_AddColumnRejectsMismatch(t *testing.T) {
	tbl := NewTable(2)
	require.NoError(t, tbl.AddColumn(numeric("a", 1, 2)))

	err := tbl.AddColumn(numeric("b", 1))
	assert.Error(t, err)

	err = tbl.AddColumn(numeric("a", 3, 4))
	assert.Error(t, err)
}

func TestTable_ColumnNotFound(t *testing.T) {
	tbl := NewTable(0)
	_, err := tbl.Column("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestTable_DropIsAllOrNothing(t *testing.T) {
	tbl := NewTable(1)
	require.NoError(t, tbl.AddColumn(numeric("a", 1)))
	require.NoError(t, tbl.AddColumn(numeric("b", 2)))

	err := tbl.Drop("a", "nope")
	require.ErrorIs(t, err, ErrColumnNotFound)
	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())

	require.NoError(t, tbl.Drop("a"))
	assert.Equal(t, []string{"b"}, tbl.ColumnNames())
	c, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.Num[0])
}

func TestTable_FilterAndSelect(t *testing.T) {
	tbl := NewTable(4)
	require.NoError(t, tbl.AddColumn(numeric("x", 10, 20, math.NaN(), 40)))
	cat := NewCategoricalColumn("s", 4)
	cat.SetString(0, "a")
	cat.SetString(2, "c")
	require.NoError(t, tbl.AddColumn(cat))

	out := tbl.Filter([]bool{false, true, true, false})
	require.Equal(t, 2, out.NumRows())
	x, _ := out.Column("x")
	v, ok := x.Float(0)
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)
	assert.True(t, x.IsNull(1))

	s, _ := out.Column("s")
	assert.True(t, s.IsNull(0))
	txt, ok := s.Text(1)
	assert.True(t, ok)
	assert.Equal(t, "c", txt)

	sel := tbl.Select([]int{3, 0})
	x, _ = sel.Column("x")
	assert.Equal(t, []float64{40, 10}, x.Num)

	// source untouched
	orig, _ := tbl.Column("x")
	assert.Equal(t, 10.0, orig.Num[0])
}

func TestTable_NullAccounting(t *testing.T) {
	tbl := NewTable(3)
	require.NoError(t, tbl.AddColumn(numeric("a", 1, math.NaN(), 3)))
	require.NoError(t, tbl.AddColumn(numeric("b", math.NaN(), math.NaN(), 3)))

	assert.Equal(t, 1, tbl.RowNonNull(0))
	assert.Equal(t, 0, tbl.RowNonNull(1))
	assert.Equal(t, 2, tbl.RowNonNull(2))
	assert.True(t, tbl.HasNulls())

	clean := tbl.DropNullRows()
	assert.Equal(t, 1, clean.NumRows())
	assert.False(t, clean.HasNulls())
}

func TestColumn_FillIsIdempotent(t *testing.T) {
	c := numeric("a", 1, math.NaN(), 3)
	assert.Equal(t, 1, c.FillFloat(9))
	assert.Equal(t, []float64{1, 9, 3}, c.Num)

	assert.Equal(t, 0, c.FillFloat(42))
	assert.Equal(t, []float64{1, 9, 3}, c.Num)
}

func TestColumn_Format(t *testing.T) {
	c := numeric("a", 1.5, math.NaN(), 1200)
	assert.Equal(t, "1.5", c.Format(0))
	assert.Equal(t, "", c.Format(1))
	assert.Equal(t, "1200", c.Format(2))
}

func TestMangleDuplicateNames(t *testing.T) {
	got := MangleDuplicateNames([]string{"parcelid", "logerror", "parcelid", "transactiondate", "parcelid", "transactiondate"})
	assert.Equal(t, []string{"parcelid", "logerror", "parcelid.1", "transactiondate", "parcelid.2", "transactiondate.1"}, got)
}

func TestValidateSchema(t *testing.T) {
	tbl := NewTable(1)
	for _, name := range RequiredColumns {
		kind, _ := KindOf(name)
		if kind == Categorical {
			require.NoError(t, tbl.AddColumn(NewCategoricalColumn(name, 1)))
			continue
		}
		require.NoError(t, tbl.AddColumn(NewNumericColumn(name, 1)))
	}
	require.NoError(t, ValidateSchema(tbl))

	require.NoError(t, tbl.Drop("regionidzip"))
	err := ValidateSchema(tbl)
	require.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), "regionidzip")
}

func TestValidateSchema_KindDrift(t *testing.T) {
	tbl := NewTable(1)
	for _, name := range RequiredColumns {
		if name == "taxamount" {
			require.NoError(t, tbl.AddColumn(NewCategoricalColumn(name, 1)))
			continue
		}
		kind, _ := KindOf(name)
		if kind == Categorical {
			require.NoError(t, tbl.AddColumn(NewCategoricalColumn(name, 1)))
			continue
		}
		require.NoError(t, tbl.AddColumn(NewNumericColumn(name, 1)))
	}
	err := ValidateSchema(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taxamount")
}
