// pkg/converter/converter.go
package converter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/model"
)

// TypeConverter handles mapping of source data types and values onto table cells
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Tokens that are read as a missing value, compared after trimming
	NullTokens []string
	// Whether to trim surrounding whitespace from text values
	TrimSpace bool
	// Layout used to render DATE/DATETIME values into categorical cells
	DateLayout string
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		NullTokens: []string{"", "NULL", "null", "NaN", "nan", "NA", "None"},
		TrimSpace:  true,
		DateLayout: "2006-01-02",
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// MapSQLTypeToKind converts a database type name, as reported by the driver,
// to the column kind used in memory
func (c *TypeConverter) MapSQLTypeToKind(dbType string) (model.Kind, error) {
	if dbType == "" {
		return model.Categorical, fmt.Errorf("empty database type")
	}

	baseType := getBaseType(strings.ToUpper(dbType))
	switch baseType {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT",
		"INT2", "INT4", "INT8", "UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED INT", "UNSIGNED BIGINT",
		"DECIMAL", "NUMERIC", "NUMBER", "FIXED",
		"FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "DOUBLE PRECISION", "REAL",
		"BOOL", "BOOLEAN", "BIT", "YEAR":
		return model.Numeric, nil
	case "CHAR", "VARCHAR", "NCHAR", "NVARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT",
		"STRING", "ENUM", "SET", "BPCHAR",
		"DATE", "DATETIME", "TIMESTAMP", "TIMESTAMP_NTZ", "TIMESTAMP_TZ", "TIMESTAMP_LTZ", "TIMESTAMPTZ", "TIME":
		return model.Categorical, nil
	default:
		c.logger.Warn("Unknown database type encountered",
			zap.String("dbType", dbType))
		return model.Categorical, fmt.Errorf("unknown database type: %s (mapped to categorical as fallback)", dbType)
	}
}

// getBaseType extracts the base type from a complex type definition
func getBaseType(fullType string) string {
	parts := strings.Split(fullType, "(")
	return strings.TrimSpace(parts[0])
}

// ResolveKind decides the kind of one column: a declared property kind wins,
// then the database type, then inference over the raw values
func (c *TypeConverter) ResolveKind(meta model.ColumnMeta, values []interface{}) model.Kind {
	if kind, ok := model.KindOf(meta.Name); ok {
		return kind
	}
	if meta.DataType != "" {
		if kind, err := c.MapSQLTypeToKind(meta.DataType); err == nil {
			return kind
		}
	}
	return c.InferKind(values)
}

// InferKind returns Numeric when every present value converts to a float
func (c *TypeConverter) InferKind(values []interface{}) model.Kind {
	for _, v := range values {
		if c.IsNull(v) {
			continue
		}
		if _, err := c.toFloat(v); err != nil {
			return model.Categorical
		}
	}
	return model.Numeric
}
