// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	Stage     string    `json:"stage"`            // Pipeline stage that performed it (e.g., "missingness")
	Column    string    `json:"column,omitempty"` // Column affected, empty for whole-row operations
	Operation string    `json:"operation"`        // Kind of cleaning performed (e.g., "drop_column")
	Reason    string    `json:"reason"`           // Why it was performed (e.g., "coverage_below_threshold")
	Rows      int       `json:"rows"`             // Rows affected
	Value     string    `json:"value,omitempty"`  // Fill value or statistic, when one applies
	CleanedAt time.Time `json:"cleaned_at"`
}

// Operation names recorded by the cleaning stages
const (
	OpDropColumn  = "drop_column"
	OpFilterRows  = "filter_rows"
	OpDeriveField = "derive_column"
	OpFillValue   = "fill_value"
	OpLearnStat   = "learn_statistic"
	OpBoolToInt   = "bool_to_int"
)

// CleaningLog accumulates the operations performed during one run
type CleaningLog struct {
	Operations []CleaningOperation
}

// Record appends an operation stamped with the current time
func (l *CleaningLog) Record(op CleaningOperation) {
	if l == nil {
		return
	}
	if op.CleanedAt.IsZero() {
		op.CleanedAt = time.Now()
	}
	l.Operations = append(l.Operations, op)
}

// Count returns the number of recorded operations for a stage, or all when stage is empty
func (l *CleaningLog) Count(stage string) int {
	if l == nil {
		return 0
	}
	if stage == "" {
		return len(l.Operations)
	}
	n := 0
	for _, op := range l.Operations {
		if op.Stage == stage {
			n++
		}
	}
	return n
}
