// pkg/converter/builder.go
package converter

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/model"
)

// BuildTable assembles a typed table from raw row values. Column names in
// meta are mangled for duplicates first; each column's kind is resolved and
// written back into meta.
func (c *TypeConverter) BuildTable(meta *model.TableMetadata, rows [][]interface{}) (*model.Table, error) {
	if meta == nil {
		return nil, errors.New("table metadata cannot be nil")
	}

	names := make([]string, len(meta.Columns))
	for i, col := range meta.Columns {
		names[i] = col.Name
	}
	for i, name := range model.MangleDuplicateNames(names) {
		meta.Columns[i].Name = name
	}

	table := model.NewTable(len(rows))
	raw := make([]interface{}, len(rows))
	for j := range meta.Columns {
		for i, row := range rows {
			if len(row) != len(meta.Columns) {
				return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(meta.Columns))
			}
			raw[i] = row[j]
		}

		kind := c.ResolveKind(meta.Columns[j], raw)
		meta.Columns[j].Kind = kind

		var col *model.Column
		if kind == model.Numeric {
			col = model.NewNumericColumn(meta.Columns[j].Name, len(rows))
		} else {
			col = model.NewCategoricalColumn(meta.Columns[j].Name, len(rows))
		}
		for i, v := range raw {
			if err := c.SetCell(col, i, v); err != nil {
				return nil, err
			}
		}
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("Built table",
		zap.String("table", meta.Table),
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumCols()))
	return table, nil
}
