// pkg/cleaner/features.go
package cleaner

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/converter"
	"github.com/David-Botos/property-wrangle/pkg/model"
	"github.com/David-Botos/property-wrangle/pkg/stats"
)

// DeriveFeatures restricts the table to single-unit properties, drops
// identifier and redundant columns, adds the engineered features, fills the
// heating and hot tub defaults and turns boolean columns into 1/0.
func (c *DataCleaner) DeriveFeatures(t *model.Table) (*model.Table, error) {
	t, err := c.filterLandUse(t)
	if err != nil {
		return nil, err
	}
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("%w: no single-unit properties left after the land-use filter", ErrEmptyTable)
	}

	if err := t.Drop(DroppedColumns...); err != nil {
		return nil, fmt.Errorf("failed to drop identifier columns: %w", err)
	}
	for _, name := range DroppedColumns {
		c.record(StageDerive, name, model.OpDropColumn, "identifier_or_redundant", t.NumRows(), "")
	}
	for _, name := range t.DropIf(func(col *model.Column) bool {
		return strings.HasSuffix(col.Name, DuplicateSuffix)
	}) {
		c.record(StageDerive, name, model.OpDropColumn, "duplicate_join_column", t.NumRows(), "")
	}

	if err := c.addFeatures(t); err != nil {
		return nil, err
	}
	if err := c.fillDefaults(t); err != nil {
		return nil, err
	}
	if err := c.normalizeBooleans(t); err != nil {
		return nil, err
	}

	c.logger.Info("Derived features",
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()))
	return t, nil
}

func (c *DataCleaner) filterLandUse(t *model.Table) (*model.Table, error) {
	landUse, err := numericColumn(t, LandUseColumn)
	if err != nil {
		return nil, err
	}

	keep := make([]bool, t.NumRows())
	removed := 0
	for i := range keep {
		v, ok := landUse.Float(i)
		keep[i] = ok && slices.Contains(SingleUnitLandUseTypes, v)
		if !keep[i] {
			removed++
		}
	}
	c.record(StageDerive, LandUseColumn, model.OpFilterRows, "not_single_unit", removed, "")
	return t.Filter(keep), nil
}

// addFeatures appends the engineered columns. A null operand yields false for
// the comparisons and null for the ratios.
func (c *DataCleaner) addFeatures(t *model.Table) error {
	cols := make(map[string]*model.Column)
	for _, name := range []string{
		"poolcnt", "basementsqft", "taxvaluedollarcnt", "lotsizesquarefeet",
		"calculatedfinishedsquarefeet", "bathroomcnt",
	} {
		col, err := numericColumn(t, name)
		if err != nil {
			return err
		}
		cols[name] = col
	}

	n := t.NumRows()
	flag := func(name string, src *model.Column, pred func(float64) bool) *model.Column {
		out := model.NewNumericColumn(name, n)
		for i := 0; i < n; i++ {
			v, ok := src.Float(i)
			if ok && pred(v) {
				out.SetFloat(i, 1)
			} else {
				out.SetFloat(i, 0)
			}
		}
		return out
	}
	ratio := func(name string, num, den *model.Column) *model.Column {
		out := model.NewNumericColumn(name, n)
		for i := 0; i < n; i++ {
			a, okA := num.Float(i)
			b, okB := den.Float(i)
			if !okA || !okB || b == 0 {
				continue
			}
			out.SetFloat(i, stats.RoundHalfEven(a/b, RatioDecimalPlaces))
		}
		return out
	}

	derived := []*model.Column{
		flag(HasPool, cols["poolcnt"], func(v float64) bool { return v == 1 }),
		flag(HasBasement, cols["basementsqft"], func(v float64) bool { return v > 0 }),
		ratio(TaxPerLotSqft, cols["taxvaluedollarcnt"], cols["lotsizesquarefeet"]),
		ratio(TaxPerStructureSqft, cols["taxvaluedollarcnt"], cols["calculatedfinishedsquarefeet"]),
		flag(MoreThanTwoBath, cols["bathroomcnt"], func(v float64) bool { return v > 2 }),
	}
	for _, col := range derived {
		if err := t.AddColumn(col); err != nil {
			return fmt.Errorf("failed to add %s: %w", col.Name, err)
		}
		c.record(StageDerive, col.Name, model.OpDeriveField, "engineered_feature", col.NonNull(), "")
	}
	return nil
}

func (c *DataCleaner) fillDefaults(t *model.Table) error {
	heating, err := t.Column(HeatingColumn)
	if err != nil {
		return err
	}
	if heating.Kind != model.Categorical {
		return fmt.Errorf("column %s is %s, expected categorical", HeatingColumn, heating.Kind)
	}
	filled := heating.FillString(HeatingFill)
	c.record(StageDerive, HeatingColumn, model.OpFillValue, "absent_means_none", filled, HeatingFill)

	hotTub, err := numericColumn(t, HotTubColumn)
	if err != nil {
		return err
	}
	filled = hotTub.FillFloat(0)
	c.record(StageDerive, HotTubColumn, model.OpFillValue, "absent_means_none", filled, "0")
	return nil
}

// normalizeBooleans replaces every categorical column whose values are all
// boolean literals with a numeric 1/0 column
func (c *DataCleaner) normalizeBooleans(t *model.Table) error {
	for _, col := range t.Columns() {
		if col.Kind != model.Categorical {
			continue
		}
		values, ok := boolValues(col)
		if !ok {
			continue
		}

		out := model.NewNumericColumn(col.Name, col.Len())
		for i, v := range values {
			if !col.Valid[i] {
				continue
			}
			if v {
				out.SetFloat(i, 1)
			} else {
				out.SetFloat(i, 0)
			}
		}
		if err := t.ReplaceColumn(out); err != nil {
			return err
		}
		c.record(StageDerive, col.Name, model.OpBoolToInt, "boolean_column", out.NonNull(), "")
	}
	return nil
}

// boolValues parses a categorical column as booleans. It fails when the
// column has no values or any value is not a boolean literal.
func boolValues(col *model.Column) ([]bool, bool) {
	out := make([]bool, col.Len())
	seen := false
	for i := range out {
		s, ok := col.Text(i)
		if !ok {
			continue
		}
		b, ok := converter.ParseBoolLiteral(s)
		if !ok {
			return nil, false
		}
		out[i] = b
		seen = true
	}
	return out, seen
}
