package wrangle

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/acquire"
	"github.com/David-Botos/property-wrangle/pkg/cleaner"
	"github.com/David-Botos/property-wrangle/pkg/config"
	"github.com/David-Botos/property-wrangle/pkg/converter"
	"github.com/David-Botos/property-wrangle/pkg/model"
	"github.com/David-Botos/property-wrangle/pkg/testutil"
)

type tableSource struct {
	table *model.Table
	err   error
	calls int
}

func (s *tableSource) Acquire(ctx context.Context) (*model.Table, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.table.Clone(), nil
}

func newRunner(t *testing.T, source acquire.Source) *Runner {
	t.Helper()
	r, err := NewRunner(source, config.DefaultCleaningConfig(), zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestNewRunner(t *testing.T) {
	_, err := NewRunner(nil, config.DefaultCleaningConfig(), zap.NewNop())
	assert.Error(t, err)

	_, err = NewRunner(&tableSource{}, config.DefaultCleaningConfig(), nil)
	assert.Error(t, err)

	bad := config.DefaultCleaningConfig()
	bad.TestSize = 0
	_, err = NewRunner(&tableSource{}, bad, zap.NewNop())
	assert.Error(t, err)
}

func TestRunner_Run(t *testing.T) {
	source := &tableSource{table: testutil.PropertyTable(200)}
	result, err := newRunner(t, source).Run(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// 20 commercial parcels go, nothing else is lost
	train, validate, test := result.Partitions().Sizes()
	assert.Equal(t, 108, train)
	assert.Equal(t, 36, validate)
	assert.Equal(t, 36, test)
	assert.Equal(t, 180, result.TotalRows())

	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Passed())

	names := result.Train.ColumnNames()
	assert.Equal(t, names, result.Validate.ColumnNames())
	assert.Equal(t, names, result.Test.ColumnNames())
	for _, gone := range []string{"poolcnt", "basementsqft", "fireplaceflag", "parcelid", "parcelid.1", "unitcnt"} {
		assert.NotContains(t, names, gone)
	}
	for _, kept := range []string{cleaner.HasPool, cleaner.HasBasement, cleaner.TaxPerLotSqft, cleaner.MoreThanTwoBath} {
		assert.Contains(t, names, kept)
	}
	for _, name := range names {
		assert.False(t, strings.HasSuffix(name, cleaner.OutlierSuffix), name)
	}
	for _, part := range result.Partitions().All() {
		assert.False(t, part.Table.HasNulls(), part.Name)
	}

	assert.Equal(t, map[int64]float64{12447: 5000, 24832: 5001, 24435: 5002}, result.Stats.CityByZip)
	assert.Len(t, result.Stats.Medians, len(cleaner.MedianColumns))
	assert.NotEmpty(t, result.Thresholds)
	assert.NotEmpty(t, result.Operations)

	var stages []string
	for _, sm := range result.Metrics.Stages {
		stages = append(stages, sm.Stage)
		assert.Empty(t, sm.Err)
	}
	assert.Equal(t, []string{
		StageAcquire, StageSchema, cleaner.StageDerive, cleaner.StageMissing,
		cleaner.StageOutliers, cleaner.StageSplit, cleaner.StageImpute, StageVerify,
	}, stages)
	assert.Equal(t, 200, result.Metrics.RowsRead)
	assert.Equal(t, 180, result.Metrics.RowsWritten)
	assert.Equal(t, 180, result.Metrics.Stage(cleaner.StageDerive).RowsOut)
	assert.Positive(t, result.Metrics.Stage(cleaner.StageMissing).Operations)
}

func TestRunner_RunIsDeterministic(t *testing.T) {
	source := &tableSource{table: testutil.PropertyTable(200)}
	r := newRunner(t, source)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprints(), second.Fingerprints())
	for _, name := range []string{"latitude", "taxamount", "yearbuilt"} {
		a, err := first.Test.Column(name)
		require.NoError(t, err)
		b, err := second.Test.Column(name)
		require.NoError(t, err)
		assert.Equal(t, a.Num, b.Num, name)
	}
}

func TestRunner_MissingRequiredColumn(t *testing.T) {
	table := testutil.PropertyTable(40)
	require.NoError(t, table.Drop("yearbuilt"))

	_, err := newRunner(t, &tableSource{table: table}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageSchema, se.Stage)
	assert.Equal(t, "yearbuilt", se.Column)
	assert.Equal(t, ErrorCategorySchema, se.Category())
}

func TestRunner_AllNullCutoffColumn(t *testing.T) {
	table := testutil.PropertyTable(40)
	taxamount, err := table.Column("taxamount")
	require.NoError(t, err)
	for i := 0; i < taxamount.Len(); i++ {
		taxamount.SetNull(i)
	}

	// the missingness filter removes taxamount, so its magnitude column never exists
	_, err = newRunner(t, &tableSource{table: table}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, cleaner.StageOutliers, se.Stage)
	assert.Equal(t, "taxamount_outliers", se.Column)
	assert.Equal(t, ErrorCategoryData, CategorizeError(err))
}

func TestRunner_NoSingleUnitProperties(t *testing.T) {
	table := testutil.PropertyTable(40)
	landUse, err := table.Column("propertylandusetypeid")
	require.NoError(t, err)
	for i := 0; i < landUse.Len(); i++ {
		landUse.SetFloat(i, 31)
	}

	r := newRunner(t, &tableSource{table: table})
	_, err = r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyTable))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, cleaner.StageDerive, se.Stage)
	assert.Empty(t, se.Column)
	assert.Equal(t, ErrorCategoryData, CategorizeError(err))

	// the pipeline stops at the stage that emptied the table
	stages := r.LastMetrics().Stages
	assert.Equal(t, cleaner.StageDerive, stages[len(stages)-1].Stage)
	assert.Nil(t, r.LastMetrics().Stage(cleaner.StageOutliers))
}

func TestRunner_AcquireFailure(t *testing.T) {
	cause := errors.New("connection refused")
	_, err := newRunner(t, &tableSource{err: cause}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrorCategoryAcquisition, CategorizeError(err))
}

func TestRunner_LastMetricsAfterFailure(t *testing.T) {
	r := newRunner(t, &tableSource{err: errors.New("connection refused")})
	assert.Nil(t, r.LastMetrics())

	_, err := r.Run(context.Background())
	require.Error(t, err)

	m := r.LastMetrics()
	require.NotNil(t, m)
	require.Len(t, m.Stages, 1)
	assert.Equal(t, StageAcquire, m.Stages[0].Stage)
	assert.Contains(t, m.Stages[0].Err, "connection refused")
	assert.Equal(t, 1, m.ErrorCounts[ErrorCategoryAcquisition])
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &tableSource{table: testutil.PropertyTable(40)}
	_, err := newRunner(t, source).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, ErrorCategoryCanceled, CategorizeError(err))
	assert.Zero(t, source.calls)
}

func TestRunner_Thresholds(t *testing.T) {
	source := &tableSource{table: testutil.PropertyTable(60)}
	thresholds, err := newRunner(t, source).Thresholds(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, thresholds)

	seen := make(map[string]bool)
	for _, th := range thresholds {
		seen[th.Column] = true
		assert.GreaterOrEqual(t, th.Value, 0.0, th.Column)
	}
	assert.True(t, seen["taxamount"])
	assert.True(t, seen[cleaner.TaxPerLotSqft])
}

func TestWritePartitions(t *testing.T) {
	result, err := newRunner(t, &tableSource{table: testutil.PropertyTable(200)}).Run(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WritePartitions(dir, result))

	conv := converter.NewTypeConverter(zap.NewNop())
	for name, rows := range map[string]int{"train": 108, "validate": 36, "test": 36} {
		table, err := acquire.ReadCSVFile(filepath.Join(dir, name+".csv"), conv)
		require.NoError(t, err, name)
		assert.Equal(t, rows, table.NumRows(), name)
		assert.Equal(t, result.Train.ColumnNames(), table.ColumnNames(), name)
	}

	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	require.NoError(t, err)

	var report struct {
		RunID     string            `json:"run_id"`
		Rows      map[string]int    `json:"rows"`
		Checksums map[string]string `json:"checksums"`
		Stats     struct {
			CityByZip map[string]float64 `json:"city_by_zip"`
		} `json:"stats"`
		Operations []model.CleaningOperation `json:"operations"`
		Metrics    struct {
			Stages []struct {
				Stage string `json:"stage"`
			} `json:"stages"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, result.RunID, report.RunID)
	assert.Equal(t, map[string]int{"train": 108, "validate": 36, "test": 36}, report.Rows)
	assert.Equal(t, result.Fingerprints(), report.Checksums)
	assert.Equal(t, 5001.0, report.Stats.CityByZip["24832"])
	assert.Len(t, report.Operations, len(result.Operations))
	assert.Len(t, report.Metrics.Stages, 8)
}
