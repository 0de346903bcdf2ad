// pkg/cleaner/outliers.go
package cleaner

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/model"
	"github.com/David-Botos/property-wrangle/pkg/stats"
)

// Threshold is the diagnostic removal threshold of one outlier column:
// half the distance between the maximum magnitude and its third quartile
type Threshold struct {
	Column string  `json:"column"`
	Value  float64 `json:"threshold"`
}

// UpperOutliers returns a column named <col>_outliers holding, per row, how
// far the value lies above Q3 + k·IQR, or 0 when it does not. Null values
// give null magnitudes.
func UpperOutliers(col *model.Column, k float64) *model.Column {
	out := model.NewNumericColumn(col.Name+OutlierSuffix, col.Len())
	values := col.ValidFloats()
	if len(values) == 0 {
		return out
	}

	q1, q3 := stats.Quartiles(values)
	upper := q3 + k*(q3-q1)
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		if !ok {
			continue
		}
		out.SetFloat(i, math.Max(v-upper, 0))
	}
	return out
}

// AddUpperOutlierColumns appends a magnitude column for every numeric column
// present when called. The source columns are untouched.
func (c *DataCleaner) AddUpperOutlierColumns(t *model.Table, k float64) error {
	for _, col := range t.NumericColumns() {
		if err := t.AddColumn(UpperOutliers(col, k)); err != nil {
			return fmt.Errorf("failed to add outlier column for %s: %w", col.Name, err)
		}
	}
	return nil
}

// RemovalThresholds computes round((max − Q3) / 2) for every outlier column.
// Columns without values are skipped.
func RemovalThresholds(t *model.Table) []Threshold {
	var out []Threshold
	for _, col := range t.Columns() {
		if col.Kind != model.Numeric || !strings.HasSuffix(col.Name, OutlierSuffix) {
			continue
		}
		values := col.ValidFloats()
		if len(values) == 0 {
			continue
		}
		_, q3 := stats.Quartiles(values)
		out = append(out, Threshold{
			Column: col.Name,
			Value:  stats.RoundHalfEven((slices.Max(values)-q3)/2, ThresholdDecimalPlaces),
		})
	}
	return out
}

// RemoveOutliers keeps the rows whose magnitude is strictly below every
// cutoff, then drops all outlier columns. A null magnitude is not below its
// cutoff, so such rows are removed too.
func (c *DataCleaner) RemoveOutliers(t *model.Table, cutoffs []Cutoff) (*model.Table, error) {
	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
	}

	for _, cut := range cutoffs {
		col, err := numericColumn(t, cut.Column+OutlierSuffix)
		if err != nil {
			return nil, err
		}
		removed := 0
		for i := range keep {
			if !keep[i] {
				continue
			}
			v, ok := col.Float(i)
			if !ok || !(v < cut.Below) {
				keep[i] = false
				removed++
			}
		}
		c.record(StageOutliers, cut.Column, model.OpFilterRows, "upper_outlier", removed,
			strconv.FormatFloat(cut.Below, 'f', -1, 64))
	}

	out := t.Filter(keep)
	dropped := out.DropIf(func(col *model.Column) bool {
		return strings.HasSuffix(col.Name, OutlierSuffix)
	})

	c.logger.Info("Removed outliers",
		zap.Int("rows_in", t.NumRows()),
		zap.Int("rows_out", out.NumRows()),
		zap.Int("outlier_columns", len(dropped)))
	return out, nil
}

// TagAndRemoveOutliers adds the magnitude columns with the configured k,
// measures the diagnostic thresholds and applies the fixed cutoffs
func (c *DataCleaner) TagAndRemoveOutliers(t *model.Table) (*model.Table, []Threshold, error) {
	if err := c.AddUpperOutlierColumns(t, c.cfg.OutlierK); err != nil {
		return nil, nil, err
	}
	thresholds := RemovalThresholds(t)
	for _, th := range thresholds {
		c.logger.Debug("Removal threshold",
			zap.String("column", th.Column),
			zap.Float64("threshold", th.Value))
	}

	out, err := c.RemoveOutliers(t, RemovalCutoffs)
	if err != nil {
		return nil, nil, err
	}
	return out, thresholds, nil
}
