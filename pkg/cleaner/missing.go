// pkg/cleaner/missing.go
package cleaner

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/model"
)

// HandleMissingValues keeps the columns whose non-null fraction is at least
// propRequiredColumn, then the rows whose non-null fraction over the kept
// columns is at least propRequiredRow. The table's columns are reduced in
// place; the row-filtered table is returned.
func (c *DataCleaner) HandleMissingValues(t *model.Table, propRequiredColumn, propRequiredRow float64) *model.Table {
	rows := float64(t.NumRows())

	// a zero denominator yields NaN, which fails every comparison and drops everything
	dropped := t.DropIf(func(col *model.Column) bool {
		return !(float64(col.NonNull())/rows >= propRequiredColumn)
	})
	for _, name := range dropped {
		c.record(StageMissing, name, model.OpDropColumn, "coverage_below_threshold", t.NumRows(),
			strconv.FormatFloat(propRequiredColumn, 'f', -1, 64))
	}

	width := float64(t.NumCols())
	keep := make([]bool, t.NumRows())
	removed := 0
	for i := range keep {
		keep[i] = float64(t.RowNonNull(i))/width >= propRequiredRow
		if !keep[i] {
			removed++
		}
	}
	if removed > 0 {
		c.record(StageMissing, "", model.OpFilterRows, "coverage_below_threshold", removed,
			strconv.FormatFloat(propRequiredRow, 'f', -1, 64))
	}

	c.logger.Info("Handled missing values",
		zap.Strings("dropped_columns", dropped),
		zap.Int("dropped_rows", removed),
		zap.Int("columns", t.NumCols()),
		zap.Int("rows", t.NumRows()-removed))

	return t.Filter(keep)
}
