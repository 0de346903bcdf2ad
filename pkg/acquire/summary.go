// pkg/acquire/summary.go
package acquire

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/property-wrangle/pkg/model"
	"github.com/David-Botos/property-wrangle/pkg/stats"
)

// ColumnMissing reports the nulls in one column
type ColumnMissing struct {
	Column         string  `json:"column"`
	NumRowsMissing int     `json:"num_rows_missing"`
	PctRowsMissing float64 `json:"pct_rows_missing"`
}

// ColumnsData returns the null count and fraction of every column, in column order
func ColumnsData(t *model.Table) []ColumnMissing {
	out := make([]ColumnMissing, 0, t.NumCols())
	for _, c := range t.Columns() {
		missing := t.NumRows() - c.NonNull()
		out = append(out, ColumnMissing{
			Column:         c.Name,
			NumRowsMissing: missing,
			PctRowsMissing: ratio(missing, t.NumRows()),
		})
	}
	return out
}

// RowMissing counts the rows missing the same number of columns
type RowMissing struct {
	NumColsMissing int     `json:"num_cols_missing"`
	NumRows        int     `json:"num_rows"`
	PctColsMissing float64 `json:"pct_cols_missing"`
}

// RowData groups rows by how many columns they are missing, sorted by that count
func RowData(t *model.Table) []RowMissing {
	counts := make(map[int]int)
	for i := 0; i < t.NumRows(); i++ {
		counts[t.NumCols()-t.RowNonNull(i)]++
	}

	out := make([]RowMissing, 0, len(counts))
	for missing, rows := range counts {
		out = append(out, RowMissing{
			NumColsMissing: missing,
			NumRows:        rows,
			PctColsMissing: ratio(missing, t.NumCols()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumColsMissing < out[j].NumColsMissing })
	return out
}

// ColumnDescription is the summary of one numeric column
type ColumnDescription struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe summarizes every numeric column over its non-null values. Columns
// without values report a zero count and NaN statistics.
func Describe(t *model.Table) []ColumnDescription {
	var out []ColumnDescription
	for _, c := range t.NumericColumns() {
		values := c.ValidFloats()
		d := ColumnDescription{Column: c.Name, Count: len(values)}
		if len(values) == 0 {
			nan := math.NaN()
			d.Mean, d.Std, d.Min, d.Q1, d.Median, d.Q3, d.Max = nan, nan, nan, nan, nan, nan, nan
			out = append(out, d)
			continue
		}
		d.Mean = stat.Mean(values, nil)
		d.Std = math.NaN()
		if len(values) > 1 {
			d.Std = stat.StdDev(values, nil)
		}
		d.Min = floats.Min(values)
		d.Max = floats.Max(values)
		d.Q1 = stats.Quantile(values, 0.25)
		d.Median = stats.Quantile(values, 0.5)
		d.Q3 = stats.Quantile(values, 0.75)
		out = append(out, d)
	}
	return out
}

// Summarize prints the column listing, the numeric description and the shape of t
func Summarize(w io.Writer, t *model.Table) error {
	var b strings.Builder

	b.WriteString("INFO\n")
	for _, c := range t.Columns() {
		fmt.Fprintf(&b, "  %-32s %8d non-null  %s\n", c.Name, c.NonNull(), c.Kind)
	}

	b.WriteString("\nDESCRIPTION\n")
	fmt.Fprintf(&b, "  %-32s %8s %14s %14s %14s %14s %14s %14s %14s\n",
		"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, d := range Describe(t) {
		fmt.Fprintf(&b, "  %-32s %8d %14.4g %14.4g %14.4g %14.4g %14.4g %14.4g %14.4g\n",
			d.Column, d.Count, d.Mean, d.Std, d.Min, d.Q1, d.Median, d.Q3, d.Max)
	}

	b.WriteString("\nSHAPE\n")
	fmt.Fprintf(&b, "  (%d, %d)\n", t.NumRows(), t.NumCols())

	_, err := io.WriteString(w, b.String())
	return err
}

func ratio(n, d int) float64 {
	if d == 0 {
		return math.NaN()
	}
	return float64(n) / float64(d)
}
