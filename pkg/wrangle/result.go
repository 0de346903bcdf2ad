// pkg/wrangle/result.go
package wrangle

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/property-wrangle/pkg/cleaner"
	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Result is the output of one pipeline run
type Result struct {
	RunID      string
	Train      *model.Table
	Validate   *model.Table
	Test       *model.Table
	Stats      *cleaner.Stats
	Thresholds []cleaner.Threshold
	Operations []model.CleaningOperation
	Metrics    *RunMetrics
	Report     *VerificationReport
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// NewResult initializes a result with a fresh run id
func NewResult() *Result {
	return &Result{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
}

// Complete marks the run as complete and calculates duration
func (r *Result) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Partitions returns the output tables as partitions
func (r *Result) Partitions() *cleaner.Partitions {
	return &cleaner.Partitions{Train: r.Train, Validate: r.Validate, Test: r.Test}
}

// TotalRows returns the rows across the three partitions
func (r *Result) TotalRows() int {
	train, validate, test := r.Partitions().Sizes()
	return train + validate + test
}

// RunSummary is the serialized form of a result written next to the partitions
type RunSummary struct {
	RunID      string                    `json:"run_id"`
	StartTime  time.Time                 `json:"start_time"`
	EndTime    time.Time                 `json:"end_time"`
	Duration   string                    `json:"duration"`
	Columns    []string                  `json:"columns"`
	Rows       map[string]int            `json:"rows"`
	Checksums  map[string]string         `json:"checksums"`
	Stats      *cleaner.Stats            `json:"stats"`
	Thresholds []cleaner.Threshold       `json:"removal_thresholds"`
	Operations []model.CleaningOperation `json:"operations"`
	Metrics    json.RawMessage           `json:"metrics,omitempty"`
}

// Summary builds the serialized form of the result
func (r *Result) Summary() (*RunSummary, error) {
	train, validate, test := r.Partitions().Sizes()
	summary := &RunSummary{
		RunID:      r.RunID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Duration:   formatDuration(r.Duration),
		Columns:    r.Train.ColumnNames(),
		Rows:       map[string]int{"train": train, "validate": validate, "test": test},
		Checksums:  r.Fingerprints(),
		Stats:      r.Stats,
		Thresholds: r.Thresholds,
		Operations: r.Operations,
	}
	if r.Metrics != nil {
		raw, err := r.Metrics.ToJSON()
		if err != nil {
			return nil, err
		}
		summary.Metrics = raw
	}
	return summary, nil
}
