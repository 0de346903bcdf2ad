// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/config"
	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Stage names used in logs, audit records and metrics
const (
	StageDerive   = "derive"
	StageMissing  = "missingness"
	StageOutliers = "outliers"
	StageSplit    = "split"
	StageImpute   = "impute"
)

var (
	// ErrEmptyTable is returned when a stage needs rows and has none
	ErrEmptyTable = errors.New("table has no rows")
	// ErrAllNull is returned when a statistic is requested over a column with no values
	ErrAllNull = errors.New("column has no non-null values")
)

// DataCleaner runs the wrangling stages over a table and keeps an audit of
// every operation it performs
type DataCleaner struct {
	cfg    config.CleaningConfig
	logger *zap.Logger
	log    *model.CleaningLog
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(cfg config.CleaningConfig, logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cleaning configuration: %w", err)
	}

	return &DataCleaner{
		cfg:    cfg,
		logger: logger.Named("cleaner"),
		log:    &model.CleaningLog{},
	}, nil
}

// Config returns the cleaning parameters in use
func (c *DataCleaner) Config() config.CleaningConfig {
	return c.cfg
}

// Operations returns every cleaning operation recorded so far
func (c *DataCleaner) Operations() []model.CleaningOperation {
	return c.log.Operations
}

// Log returns the audit log
func (c *DataCleaner) Log() *model.CleaningLog {
	return c.log
}

func (c *DataCleaner) record(stage, column, operation, reason string, rows int, value string) {
	c.log.Record(model.CleaningOperation{
		Stage:     stage,
		Column:    column,
		Operation: operation,
		Reason:    reason,
		Rows:      rows,
		Value:     value,
	})
}

// numericColumn returns the named column, which must be numeric
func numericColumn(t *model.Table, name string) (*model.Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != model.Numeric {
		return nil, fmt.Errorf("column %s is %s, expected numeric", name, col.Kind)
	}
	return col, nil
}
