package acquire

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/property-wrangle/pkg/testutil"
)

func TestColumnsData(t *testing.T) {
	tbl := testutil.Table(
		testutil.Num("a", 1, nil, 3, nil),
		testutil.Cat("b", "x", "y", "z", "w"),
	)
	got := ColumnsData(tbl)
	assert.Equal(t, []ColumnMissing{
		{Column: "a", NumRowsMissing: 2, PctRowsMissing: 0.5},
		{Column: "b", NumRowsMissing: 0, PctRowsMissing: 0},
	}, got)
}

func TestRowData(t *testing.T) {
	tbl := testutil.Table(
		testutil.Num("a", 1, nil, nil, 4),
		testutil.Num("b", nil, nil, 2, 3),
	)
	got := RowData(tbl)
	assert.Equal(t, []RowMissing{
		{NumColsMissing: 0, NumRows: 1, PctColsMissing: 0},
		{NumColsMissing: 1, NumRows: 2, PctColsMissing: 0.5},
		{NumColsMissing: 2, NumRows: 1, PctColsMissing: 1},
	}, got)
}

func TestDescribe(t *testing.T) {
	tbl := testutil.Table(
		testutil.Num("lotsizesquarefeet", 1000, 1050, 1100, 1150, 50000, nil),
		testutil.Num("empty", nil, nil, nil, nil, nil, nil),
		testutil.Cat("heatingorsystemdesc", "Central", nil, nil, nil, nil, nil),
	)
	got := Describe(tbl)
	require.Len(t, got, 2)

	d := got[0]
	assert.Equal(t, 5, d.Count)
	assert.InDelta(t, 10860.0, d.Mean, 1e-9)
	assert.Equal(t, 1000.0, d.Min)
	assert.Equal(t, 1050.0, d.Q1)
	assert.Equal(t, 1100.0, d.Median)
	assert.Equal(t, 1150.0, d.Q3)
	assert.Equal(t, 50000.0, d.Max)
	assert.Greater(t, d.Std, 0.0)

	assert.Equal(t, 0, got[1].Count)
	assert.True(t, math.IsNaN(got[1].Mean))
}

func TestSummarize(t *testing.T) {
	tbl := testutil.Table(testutil.Num("bathroomcnt", 1, 2, 3))
	var buf bytes.Buffer
	require.NoError(t, Summarize(&buf, tbl))
	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "(3, 1)")
}
