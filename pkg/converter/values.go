// pkg/converter/values.go
package converter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/property-wrangle/pkg/model"
)

// SetCell converts a raw source value and stores it at row i of col
func (c *TypeConverter) SetCell(col *model.Column, i int, value interface{}) error {
	if c.IsNull(value) {
		col.SetNull(i)
		return nil
	}

	switch col.Kind {
	case model.Numeric:
		f, err := c.toFloat(value)
		if err != nil {
			return fmt.Errorf("column %s row %d: %w", col.Name, i, err)
		}
		col.SetFloat(i, f)
	default:
		s, err := c.toText(value)
		if err != nil {
			return fmt.Errorf("column %s row %d: %w", col.Name, i, err)
		}
		col.SetString(i, s)
	}
	return nil
}

// IsNull determines if a value should be treated as missing
func (c *TypeConverter) IsNull(value interface{}) bool {
	var s string
	switch v := value.(type) {
	case nil:
		return true
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return false
	}

	s = strings.TrimSpace(s)
	for _, token := range c.config.NullTokens {
		if s == token {
			return true
		}
	}
	return false
}

// toText converts a value to text
func (c *TypeConverter) toText(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		if c.config.TrimSpace {
			return strings.TrimSpace(v), nil
		}
		return v, nil
	case []byte:
		if c.config.TrimSpace {
			return strings.TrimSpace(string(v)), nil
		}
		return string(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return fmt.Sprintf("%v", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return v.Format(c.config.DateLayout), nil
	default:
		return "", fmt.Errorf("cannot convert %T to text", value)
	}
}

// toFloat attempts to convert a value to float64
func (c *TypeConverter) toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, errors.New("nil value")
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case string:
		return parseFloat(val)
	case []byte:
		return parseFloat(string(val))
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

func parseFloat(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, errors.New("empty string")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// ParseBoolLiteral recognizes the boolean spellings a CSV export or a driver
// produces for a true/false cell
func ParseBoolLiteral(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	default:
		return false, false
	}
}
