// pkg/wrangle/runner.go
package wrangle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/acquire"
	"github.com/David-Botos/property-wrangle/pkg/cleaner"
	"github.com/David-Botos/property-wrangle/pkg/config"
	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Output file names written by WritePartitions
const (
	ReportFile = "report.json"
	csvExt     = ".csv"
)

// Runner orchestrates one pass of the wrangling pipeline
type Runner struct {
	source   acquire.Source
	cfg      config.CleaningConfig
	verifier *Verifier
	logger   *zap.Logger

	// metrics of the most recent Run, kept when the run fails
	last *RunMetrics
}

// NewRunner creates a runner reading from source with the given cleaning parameters
func NewRunner(source acquire.Source, cfg config.CleaningConfig, logger *zap.Logger) (*Runner, error) {
	if source == nil {
		return nil, errors.New("source cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cleaning configuration: %w", err)
	}

	logger = logger.Named("runner")
	return &Runner{
		source:   source,
		cfg:      cfg,
		verifier: NewVerifier(logger.Named("verifier")),
		logger:   logger,
	}, nil
}

// Run acquires the table and takes it through schema validation, feature
// derivation, the missingness filter, outlier removal, the split and
// imputation, then verifies the partitions
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := NewResult()
	metrics := NewRunMetrics(r.logger.With(zap.String("runID", result.RunID)))
	result.Metrics = metrics
	r.last = metrics

	dc, err := cleaner.NewDataCleaner(r.cfg, r.logger)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Starting run",
		zap.String("runID", result.RunID),
		zap.Int64("seed", r.cfg.Seed),
		zap.Float64("columnThreshold", r.cfg.ColumnThreshold),
		zap.Float64("rowThreshold", r.cfg.RowThreshold))

	t, err := r.prepare(ctx, metrics, dc)
	if err != nil {
		return nil, err
	}

	var thresholds []cleaner.Threshold
	err = r.runStage(ctx, metrics, dc, cleaner.StageOutliers, t, func() (int, int, error) {
		var err error
		t, thresholds, err = dc.TagAndRemoveOutliers(t)
		if err != nil {
			return 0, 0, err
		}
		if t.NumRows() == 0 {
			return 0, t.NumCols(), fmt.Errorf("%w: every row exceeds an outlier cutoff", cleaner.ErrEmptyTable)
		}
		return t.NumRows(), t.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}
	filteredRows := t.NumRows()

	var parts *cleaner.Partitions
	err = r.runStage(ctx, metrics, dc, cleaner.StageSplit, t, func() (int, int, error) {
		var err error
		parts, err = dc.Split(t)
		if err != nil {
			return 0, 0, err
		}
		return filteredRows, t.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}

	var learned *cleaner.Stats
	err = r.runStage(ctx, metrics, dc, cleaner.StageImpute, t, func() (int, int, error) {
		var err error
		parts, learned, err = dc.Impute(parts)
		if err != nil {
			return 0, 0, err
		}
		train, validate, test := parts.Sizes()
		return train + validate + test, parts.Train.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}

	expected := filteredRows - droppedNullRows(dc.Operations())
	err = r.runStage(ctx, metrics, dc, StageVerify, parts.Train, func() (int, int, error) {
		result.Report = r.verifier.VerifyPartitions(parts, expected)
		if err := result.Report.Err(); err != nil {
			return 0, 0, err
		}
		return result.Report.PartitionRows, parts.Train.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}

	result.Train = parts.Train
	result.Validate = parts.Validate
	result.Test = parts.Test
	result.Stats = learned
	result.Thresholds = thresholds
	result.Operations = dc.Operations()

	metrics.RecordWritten(result.TotalRows())
	metrics.Complete()
	result.Complete()
	return result, nil
}

// LastMetrics returns the metrics of the most recent Run, or nil before the first
func (r *Runner) LastMetrics() *RunMetrics {
	return r.last
}

// Thresholds runs the pipeline up to outlier tagging and returns the
// diagnostic removal thresholds without removing any row
func (r *Runner) Thresholds(ctx context.Context) ([]cleaner.Threshold, error) {
	metrics := NewRunMetrics(r.logger)
	dc, err := cleaner.NewDataCleaner(r.cfg, r.logger)
	if err != nil {
		return nil, err
	}

	t, err := r.prepare(ctx, metrics, dc)
	if err != nil {
		return nil, err
	}

	var thresholds []cleaner.Threshold
	err = r.runStage(ctx, metrics, dc, cleaner.StageOutliers, t, func() (int, int, error) {
		if err := dc.AddUpperOutlierColumns(t, r.cfg.OutlierK); err != nil {
			return 0, 0, err
		}
		thresholds = cleaner.RemovalThresholds(t)
		return t.NumRows(), t.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}
	return thresholds, nil
}

// prepare runs acquisition, schema validation, feature derivation and the
// missingness filter
func (r *Runner) prepare(ctx context.Context, metrics *RunMetrics, dc *cleaner.DataCleaner) (*model.Table, error) {
	var t *model.Table
	err := r.runStage(ctx, metrics, dc, StageAcquire, model.NewTable(0), func() (int, int, error) {
		var err error
		t, err = r.source.Acquire(ctx)
		if err != nil {
			return 0, 0, err
		}
		metrics.RecordRead(t.NumRows())
		return t.NumRows(), t.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}

	err = r.runStage(ctx, metrics, dc, StageSchema, t, func() (int, int, error) {
		return t.NumRows(), t.NumCols(), model.ValidateSchema(t)
	})
	if err != nil {
		return nil, err
	}

	err = r.runStage(ctx, metrics, dc, cleaner.StageDerive, t, func() (int, int, error) {
		var err error
		t, err = dc.DeriveFeatures(t)
		if err != nil {
			return 0, 0, err
		}
		return t.NumRows(), t.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}

	err = r.runStage(ctx, metrics, dc, cleaner.StageMissing, t, func() (int, int, error) {
		t = dc.HandleMissingValues(t, r.cfg.ColumnThreshold, r.cfg.RowThreshold)
		if t.NumRows() == 0 {
			return 0, t.NumCols(), fmt.Errorf("%w: no row meets the coverage thresholds", cleaner.ErrEmptyTable)
		}
		return t.NumRows(), t.NumCols(), nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// runStage times fn against in, counts the audit operations it records and
// wraps any failure in a StageError
func (r *Runner) runStage(
	ctx context.Context,
	metrics *RunMetrics,
	dc *cleaner.DataCleaner,
	stage string,
	in *model.Table,
	fn func() (rows, cols int, err error),
) error {
	sm := metrics.StartStage(stage, in.NumRows(), in.NumCols())

	if err := ctx.Err(); err != nil {
		err = wrapStage(stage, err)
		metrics.FailStage(sm, err)
		return err
	}

	before := dc.Log().Count(stage)
	rows, cols, err := fn()
	if err != nil {
		err = wrapStage(stage, err)
		metrics.FailStage(sm, err)
		return err
	}
	metrics.EndStage(sm, rows, cols, dc.Log().Count(stage)-before)
	return nil
}

// droppedNullRows totals the rows imputation removed for remaining nulls
func droppedNullRows(ops []model.CleaningOperation) int {
	n := 0
	for _, op := range ops {
		if op.Stage == cleaner.StageImpute && op.Operation == model.OpFilterRows &&
			strings.HasSuffix(op.Reason, "_remaining_nulls") {
			n += op.Rows
		}
	}
	return n
}

// WritePartitions writes train.csv, validate.csv, test.csv and report.json into dir
func WritePartitions(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrapStage(StageWrite, fmt.Errorf("failed to create %s: %w", dir, err))
	}

	for _, part := range result.Partitions().All() {
		path := filepath.Join(dir, part.Name+csvExt)
		if err := acquire.WriteCSVFile(path, part.Table); err != nil {
			return wrapStage(StageWrite, fmt.Errorf("failed to write %s: %w", path, err))
		}
	}

	summary, err := result.Summary()
	if err != nil {
		return wrapStage(StageWrite, fmt.Errorf("failed to build report: %w", err))
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return wrapStage(StageWrite, fmt.Errorf("failed to encode report: %w", err))
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return wrapStage(StageWrite, fmt.Errorf("failed to write %s: %w", path, err))
	}
	return nil
}
