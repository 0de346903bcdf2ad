// pkg/cleaner/impute.go
package cleaner

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/model"
	"github.com/David-Botos/property-wrangle/pkg/stats"
)

// Stats are the imputation statistics learned from the training partition
type Stats struct {
	Medians   map[string]float64 `json:"medians"`
	Modes     map[string]float64 `json:"modes"`
	CityByZip map[int64]float64  `json:"city_by_zip"`
}

// FitImputer learns the medians, the year-built mode and the zip to city
// lookup from train. Train is not modified.
func (c *DataCleaner) FitImputer(train *model.Table) (*Stats, error) {
	if train.NumRows() == 0 {
		return nil, fmt.Errorf("%w: training partition", ErrEmptyTable)
	}

	learned := &Stats{
		Medians:   make(map[string]float64, len(MedianColumns)),
		Modes:     make(map[string]float64, 1),
		CityByZip: make(map[int64]float64),
	}

	for _, name := range MedianColumns {
		values, err := trainingValues(train, name)
		if err != nil {
			return nil, err
		}
		learned.Medians[name] = stats.Median(values)
		c.record(StageImpute, name, model.OpLearnStat, "median", len(values), formatStat(learned.Medians[name]))
	}

	years, err := trainingValues(train, YearBuiltColumn)
	if err != nil {
		return nil, err
	}
	learned.Modes[YearBuiltColumn] = math.Trunc(stats.Mode(years))
	c.record(StageImpute, YearBuiltColumn, model.OpLearnStat, "mode", len(years), formatStat(learned.Modes[YearBuiltColumn]))

	lookup, err := cityByZip(train)
	if err != nil {
		return nil, err
	}
	learned.CityByZip = lookup
	c.record(StageImpute, CityColumn, model.OpLearnStat, "city_by_zip", len(lookup), "")

	c.logger.Info("Fitted imputer",
		zap.Int("medians", len(learned.Medians)),
		zap.Float64("yearbuilt_mode", learned.Modes[YearBuiltColumn]),
		zap.Int("zip_lookups", len(learned.CityByZip)))
	return learned, nil
}

func trainingValues(train *model.Table, name string) ([]float64, error) {
	col, err := numericColumn(train, name)
	if err != nil {
		return nil, err
	}
	values := col.ValidFloats()
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAllNull, name)
	}
	return values, nil
}

// cityByZip maps each lookup zip to the most frequent city among the training
// rows in that zip. Zips without any city stay out of the map.
func cityByZip(train *model.Table) (map[int64]float64, error) {
	zips, err := numericColumn(train, ZipColumn)
	if err != nil {
		return nil, err
	}
	cities, err := numericColumn(train, CityColumn)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]float64)
	for i := 0; i < train.NumRows(); i++ {
		zip, ok := zipAt(zips, i)
		if !ok || zip == ExcludedZip || !slices.Contains(CityLookupZips, zip) {
			continue
		}
		if city, ok := cities.Float(i); ok {
			grouped[zip] = append(grouped[zip], city)
		}
	}

	out := make(map[int64]float64, len(grouped))
	for zip, values := range grouped {
		out[zip] = stats.Mode(values)
	}
	return out, nil
}

// zipAt returns the integral zip code at row i
func zipAt(zips *model.Column, i int) (int64, bool) {
	v, ok := zips.Float(i)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int64(v), true
}

// ApplyImputer fills t with the learned statistics and returns the rows left
// without any null. No statistic is read from t itself.
func (c *DataCleaner) ApplyImputer(learned *Stats, t *model.Table, partition string) (*model.Table, error) {
	for _, name := range MedianColumns {
		col, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		filled := col.FillFloat(learned.Medians[name])
		c.record(StageImpute, name, model.OpFillValue, partition+"_median", filled, formatStat(learned.Medians[name]))
	}

	year, err := numericColumn(t, YearBuiltColumn)
	if err != nil {
		return nil, err
	}
	filled := year.FillFloat(learned.Modes[YearBuiltColumn])
	c.record(StageImpute, YearBuiltColumn, model.OpFillValue, partition+"_mode", filled, formatStat(learned.Modes[YearBuiltColumn]))

	zips, err := numericColumn(t, ZipColumn)
	if err != nil {
		return nil, err
	}
	cities, err := numericColumn(t, CityColumn)
	if err != nil {
		return nil, err
	}
	filled = 0
	for i := 0; i < t.NumRows(); i++ {
		if !cities.IsNull(i) {
			continue
		}
		zip, ok := zipAt(zips, i)
		if !ok {
			continue
		}
		if city, ok := learned.CityByZip[zip]; ok {
			cities.SetFloat(i, city)
			filled++
		}
	}
	c.record(StageImpute, CityColumn, model.OpFillValue, partition+"_city_by_zip", filled, "")

	out := t.DropNullRows()
	c.record(StageImpute, "", model.OpFilterRows, partition+"_remaining_nulls", t.NumRows()-out.NumRows(), "")

	c.logger.Info("Imputed partition",
		zap.String("partition", partition),
		zap.Int("rows_in", t.NumRows()),
		zap.Int("rows_out", out.NumRows()))
	return out, nil
}

// Impute fits on the training partition and fills all three partitions
func (c *DataCleaner) Impute(p *Partitions) (*Partitions, *Stats, error) {
	learned, err := c.FitImputer(p.Train)
	if err != nil {
		return nil, nil, err
	}

	out := &Partitions{}
	targets := []struct {
		name string
		in   *model.Table
		out  **model.Table
	}{
		{"train", p.Train, &out.Train},
		{"validate", p.Validate, &out.Validate},
		{"test", p.Test, &out.Test},
	}
	for _, target := range targets {
		filled, err := c.ApplyImputer(learned, target.in, target.name)
		if err != nil {
			return nil, nil, fmt.Errorf("%s partition: %w", target.name, err)
		}
		*target.out = filled
	}
	return out, learned, nil
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
