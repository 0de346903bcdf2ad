package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/config"
	"github.com/David-Botos/property-wrangle/pkg/model"
	"github.com/David-Botos/property-wrangle/pkg/testutil"
)

func newCleaner(t *testing.T) *DataCleaner {
	t.Helper()
	c, err := NewDataCleaner(config.DefaultCleaningConfig(), zap.NewNop())
	require.NoError(t, err)
	return c
}

func column(t *testing.T, tbl *model.Table, name string) *model.Column {
	t.Helper()
	col, err := tbl.Column(name)
	require.NoError(t, err)
	return col
}

func TestNewDataCleaner(t *testing.T) {
	_, err := NewDataCleaner(config.DefaultCleaningConfig(), nil)
	assert.Error(t, err)

	bad := config.DefaultCleaningConfig()
	bad.TestSize = 0
	_, err = NewDataCleaner(bad, zap.NewNop())
	assert.Error(t, err)
}

func TestHandleMissingValues(t *testing.T) {
	c := newCleaner(t)
	tbl := testutil.Table(
		testutil.Num("a", 1, 2, 3, 4, 5),
		testutil.Num("b", 1, nil, 3, nil, nil), // 40% coverage
		testutil.Num("c", 1, nil, nil, 4, 5),
		testutil.Cat("d", "x", nil, "z", nil, "v"),
	)

	out := c.HandleMissingValues(tbl, 0.6, 0.6)
	assert.Equal(t, []string{"a", "c", "d"}, out.ColumnNames())

	// row 1 keeps only 1/3 of the reduced columns
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, []float64{1, 3, 4, 5}, column(t, out, "a").Num)

	for _, col := range out.Columns() {
		assert.GreaterOrEqual(t, float64(column(t, tbl, col.Name).NonNull())/5, 0.6)
	}
	for i := 0; i < out.NumRows(); i++ {
		assert.GreaterOrEqual(t, float64(out.RowNonNull(i))/float64(out.NumCols()), 0.6)
	}
	assert.Equal(t, 2, c.Log().Count(StageMissing))
}

func TestHandleMissingValues_EmptyTable(t *testing.T) {
	c := newCleaner(t)
	out := c.HandleMissingValues(testutil.Table(testutil.Num("a")), 0.6, 0.5)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, 0, out.NumCols())
}

func TestDeriveFeatures(t *testing.T) {
	c := newCleaner(t)
	out, err := c.DeriveFeatures(testutil.PropertyTable(40))
	require.NoError(t, err)

	// commercial parcels are gone
	assert.Equal(t, 36, out.NumRows())
	for _, name := range append(DroppedColumns, "parcelid.1") {
		assert.False(t, out.Has(name), name)
	}

	// row 0 has poolcnt 1 and basementsqft 500, row 1 has both null
	pool := column(t, out, HasPool)
	assert.Equal(t, 1.0, pool.Num[0])
	assert.Equal(t, 0.0, pool.Num[1])
	basement := column(t, out, HasBasement)
	assert.Equal(t, 1.0, basement.Num[0])
	assert.Equal(t, 0.0, basement.Num[1])

	ratio := column(t, out, TaxPerLotSqft)
	assert.Equal(t, 60.0, ratio.Num[0])
	ratio = column(t, out, TaxPerStructureSqft)
	assert.Equal(t, 250.0, ratio.Num[0])

	baths := column(t, out, MoreThanTwoBath)
	assert.Equal(t, []float64{0, 0, 1, 1}, baths.Num[:4])

	heating := column(t, out, HeatingColumn)
	assert.Equal(t, out.NumRows(), heating.NonNull())
	v, _ := heating.Text(0)
	assert.Equal(t, HeatingFill, v)
	assert.Equal(t, out.NumRows(), column(t, out, HotTubColumn).NonNull())

	flag := column(t, out, "fireplaceflag")
	assert.Equal(t, model.Numeric, flag.Kind)
	assert.Equal(t, 1.0, flag.Num[0])
	assert.True(t, flag.IsNull(1))
}

func TestDeriveFeatures_NullOperands(t *testing.T) {
	c := newCleaner(t)
	tbl := testutil.PropertyTable(3)
	column(t, tbl, "lotsizesquarefeet").SetFloat(0, 0)
	column(t, tbl, "calculatedfinishedsquarefeet").SetNull(1)
	column(t, tbl, "poolcnt").SetFloat(1, 0)

	out, err := c.DeriveFeatures(tbl)
	require.NoError(t, err)
	assert.True(t, column(t, out, TaxPerLotSqft).IsNull(0))
	assert.True(t, column(t, out, TaxPerStructureSqft).IsNull(1))
	assert.Equal(t, 0.0, column(t, out, HasPool).Num[1])
	assert.Equal(t, 0.0, column(t, out, HasPool).Num[2])
}

func TestDeriveFeatures_MissingColumn(t *testing.T) {
	c := newCleaner(t)
	tbl := testutil.PropertyTable(5)
	require.NoError(t, tbl.Drop("unitcnt"))

	_, err := c.DeriveFeatures(tbl)
	require.ErrorIs(t, err, model.ErrColumnNotFound)
	assert.Contains(t, err.Error(), "unitcnt")
}

func TestDeriveFeatures_NoSingleUnitRows(t *testing.T) {
	c := newCleaner(t)
	tbl := testutil.PropertyTable(10)
	landUse := column(t, tbl, LandUseColumn)
	for i := 0; i < landUse.Len(); i++ {
		landUse.SetFloat(i, 31)
	}

	_, err := c.DeriveFeatures(tbl)
	require.ErrorIs(t, err, ErrEmptyTable)
	assert.Contains(t, err.Error(), "land-use filter")
}

func TestDeriveFeatures_MissingLandUse(t *testing.T) {
	c := newCleaner(t)
	tbl := testutil.PropertyTable(5)
	require.NoError(t, tbl.Drop(LandUseColumn))

	_, err := c.DeriveFeatures(tbl)
	require.ErrorIs(t, err, model.ErrColumnNotFound)
}
