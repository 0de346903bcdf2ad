// pkg/config/cleaning.go
package config

import (
	"errors"
	"fmt"
)

// Defaults used by the wrangling stages
const (
	DefaultColumnThreshold = 0.6
	DefaultRowThreshold    = 0.5
	DefaultOutlierK        = 1.5
	DefaultTestSize        = 0.2
	DefaultValidateSize    = 0.25
	DefaultSeed            = 333
)

// CleaningConfig holds the parameters of the cleaning stages
type CleaningConfig struct {
	// Minimum non-null fraction a column needs to be kept
	ColumnThreshold float64
	// Minimum non-null fraction a row needs, over the kept columns
	RowThreshold float64
	// IQR multiplier for the upper fence
	OutlierK float64

	// Split proportions and seed
	TestSize     float64
	ValidateSize float64
	Seed         int64
}

// DefaultCleaningConfig returns the fixed parameters of the pipeline
func DefaultCleaningConfig() CleaningConfig {
	return CleaningConfig{
		ColumnThreshold: DefaultColumnThreshold,
		RowThreshold:    DefaultRowThreshold,
		OutlierK:        DefaultOutlierK,
		TestSize:        DefaultTestSize,
		ValidateSize:    DefaultValidateSize,
		Seed:            DefaultSeed,
	}
}

// LoadCleaningConfig reads overrides of the cleaning parameters from the environment
func LoadCleaningConfig() CleaningConfig {
	return CleaningConfig{
		ColumnThreshold: getEnvAsFloat("WRANGLE_COLUMN_THRESHOLD", DefaultColumnThreshold),
		RowThreshold:    getEnvAsFloat("WRANGLE_ROW_THRESHOLD", DefaultRowThreshold),
		OutlierK:        getEnvAsFloat("WRANGLE_OUTLIER_K", DefaultOutlierK),
		TestSize:        getEnvAsFloat("WRANGLE_TEST_SIZE", DefaultTestSize),
		ValidateSize:    getEnvAsFloat("WRANGLE_VALIDATE_SIZE", DefaultValidateSize),
		Seed:            int64(getEnvAsInt("WRANGLE_SEED", DefaultSeed)),
	}
}

// Validate rejects parameters outside their meaningful range
func (c CleaningConfig) Validate() error {
	if c.ColumnThreshold <= 0 || c.ColumnThreshold > 1 {
		return fmt.Errorf("column threshold must be in (0, 1], got %v", c.ColumnThreshold)
	}
	if c.RowThreshold <= 0 || c.RowThreshold > 1 {
		return fmt.Errorf("row threshold must be in (0, 1], got %v", c.RowThreshold)
	}
	if c.OutlierK <= 0 {
		return errors.New("outlier multiplier must be positive")
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("test size must be in (0, 1), got %v", c.TestSize)
	}
	if c.ValidateSize <= 0 || c.ValidateSize >= 1 {
		return fmt.Errorf("validate size must be in (0, 1), got %v", c.ValidateSize)
	}
	return nil
}
