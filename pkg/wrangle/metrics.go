// pkg/wrangle/metrics.go
package wrangle

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StageMetrics tracks the shape of the data around one stage
type StageMetrics struct {
	Stage      string
	StartTime  time.Time
	EndTime    time.Time
	RowsIn     int
	ColsIn     int
	RowsOut    int
	ColsOut    int
	Operations int
	Err        string
}

// Duration returns the duration of the stage
func (sm *StageMetrics) Duration() time.Duration {
	if sm.EndTime.IsZero() {
		return time.Since(sm.StartTime)
	}
	return sm.EndTime.Sub(sm.StartTime)
}

// RowsRemoved returns how many rows the stage dropped
func (sm *StageMetrics) RowsRemoved() int {
	return sm.RowsIn - sm.RowsOut
}

// RunMetrics tracks metrics for one pipeline run
type RunMetrics struct {
	mu          sync.Mutex
	logger      *zap.Logger
	StartTime   time.Time
	EndTime     time.Time
	Stages      []*StageMetrics
	RowsRead    int
	RowsWritten int
	ErrorCounts map[ErrorCategory]int
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		StartTime:   time.Now(),
		Stages:      make([]*StageMetrics, 0, 8),
		ErrorCounts: make(map[ErrorCategory]int),
		logger:      logger,
	}
}

// StartStage begins tracking a stage over an input of the given shape
func (rm *RunMetrics) StartStage(stage string, rows, cols int) *StageMetrics {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sm := &StageMetrics{
		Stage:     stage,
		StartTime: time.Now(),
		RowsIn:    rows,
		ColsIn:    cols,
	}
	rm.Stages = append(rm.Stages, sm)

	if rm.logger != nil {
		rm.logger.Debug("Started stage",
			zap.String("stage", stage),
			zap.Int("rows", rows),
			zap.Int("columns", cols))
	}
	return sm
}

// EndStage completes a stage with the shape of its output
func (rm *RunMetrics) EndStage(sm *StageMetrics, rows, cols, operations int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sm.EndTime = time.Now()
	sm.RowsOut = rows
	sm.ColsOut = cols
	sm.Operations = operations

	if rm.logger != nil {
		rm.logger.Info("Completed stage",
			zap.String("stage", sm.Stage),
			zap.Int("rowsIn", sm.RowsIn),
			zap.Int("rowsOut", rows),
			zap.Int("colsIn", sm.ColsIn),
			zap.Int("colsOut", cols),
			zap.Int("operations", operations),
			zap.Duration("duration", sm.Duration()))
	}
}

// FailStage completes a stage that returned an error
func (rm *RunMetrics) FailStage(sm *StageMetrics, err error) {
	category := CategorizeError(err)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	sm.EndTime = time.Now()
	sm.Err = err.Error()
	rm.ErrorCounts[category]++

	if rm.logger != nil {
		rm.logger.Error("Stage failed",
			zap.String("stage", sm.Stage),
			zap.String("category", category.String()),
			zap.Error(err))
	}
}

// RecordRead records the size of the acquired table
func (rm *RunMetrics) RecordRead(rows int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.RowsRead = rows
}

// RecordWritten records the rows of the final partitions
func (rm *RunMetrics) RecordWritten(rows int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.RowsWritten = rows
}

// Complete marks the run as complete and logs a summary
func (rm *RunMetrics) Complete() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.EndTime = time.Now()

	if rm.logger != nil {
		rm.logger.Info("Run completed",
			zap.Duration("duration", rm.Duration()),
			zap.Int("stages", len(rm.Stages)),
			zap.Int("rowsRead", rm.RowsRead),
			zap.Int("rowsWritten", rm.RowsWritten),
			zap.Float64("retainedPct", rm.retained()))
	}
}

// Duration returns the total duration of the run
func (rm *RunMetrics) Duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// Stage returns the metrics of the named stage, or nil
func (rm *RunMetrics) Stage(name string) *StageMetrics {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, sm := range rm.Stages {
		if sm.Stage == name {
			return sm
		}
	}
	return nil
}

// retained is the share of acquired rows that reached the partitions
func (rm *RunMetrics) retained() float64 {
	return getPercentage(float64(rm.RowsWritten), float64(rm.RowsRead))
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateMetricsReport creates a detailed metrics report
func (rm *RunMetrics) GenerateMetricsReport() string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, `
Wrangle Metrics Report
======================
Duration:                %s
Start Time:              %s
End Time:                %s

Rows Read:               %d
Rows Written:            %d (%.1f%%)
`,
		formatDuration(rm.Duration()),
		rm.StartTime.Format(time.RFC3339),
		rm.EndTime.Format(time.RFC3339),
		rm.RowsRead,
		rm.RowsWritten, rm.retained(),
	)

	sb.WriteString("\nStage Details\n-------------\n")
	for _, sm := range rm.Stages {
		fmt.Fprintf(&sb, "- %-12s %7d x %-3d -> %7d x %-3d %4d ops  %s",
			sm.Stage, sm.RowsIn, sm.ColsIn, sm.RowsOut, sm.ColsOut, sm.Operations, formatDuration(sm.Duration()))
		if sm.Err != "" {
			fmt.Fprintf(&sb, "  FAILED: %s", sm.Err)
		}
		sb.WriteString("\n")
	}

	if len(rm.ErrorCounts) > 0 {
		sb.WriteString("\nError Distribution\n------------------\n")
		for category, count := range rm.ErrorCounts {
			fmt.Fprintf(&sb, "- %s: %d\n", category, count)
		}
	}

	return sb.String()
}

// getPercentage safely calculates a percentage, avoiding division by zero
func getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

type stageJSON struct {
	Stage      string `json:"stage"`
	Duration   string `json:"duration"`
	RowsIn     int    `json:"rowsIn"`
	ColsIn     int    `json:"colsIn"`
	RowsOut    int    `json:"rowsOut"`
	ColsOut    int    `json:"colsOut"`
	Operations int    `json:"operations"`
	Error      string `json:"error,omitempty"`
}

// ToJSON serializes metrics to JSON
func (rm *RunMetrics) ToJSON() ([]byte, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	stages := make([]stageJSON, len(rm.Stages))
	for i, sm := range rm.Stages {
		stages[i] = stageJSON{
			Stage:      sm.Stage,
			Duration:   formatDuration(sm.Duration()),
			RowsIn:     sm.RowsIn,
			ColsIn:     sm.ColsIn,
			RowsOut:    sm.RowsOut,
			ColsOut:    sm.ColsOut,
			Operations: sm.Operations,
			Error:      sm.Err,
		}
	}

	return json.Marshal(struct {
		Duration    string                `json:"duration"`
		RowsRead    int                   `json:"rowsRead"`
		RowsWritten int                   `json:"rowsWritten"`
		RetainedPct float64               `json:"retainedPct"`
		Stages      []stageJSON           `json:"stages"`
		Errors      map[ErrorCategory]int `json:"errors,omitempty"`
	}{
		Duration:    formatDuration(rm.Duration()),
		RowsRead:    rm.RowsRead,
		RowsWritten: rm.RowsWritten,
		RetainedPct: rm.retained(),
		Stages:      stages,
		Errors:      rm.ErrorCounts,
	})
}
