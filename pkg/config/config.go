// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// Source database, used only when the cache file is absent
	Database *DatabaseConfig

	// Cleaning parameters
	Cleaning CleaningConfig

	// Local files
	CachePath string
	OutputDir string

	// Logging
	LogLevel  string
	LogFormat string

	// Prometheus Pushgateway receiving run metrics; empty disables the push
	PushgatewayURL string
	PushgatewayJob string
}

// LoadConfig loads configuration from an optional .env file and the environment
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		Cleaning:  LoadCleaningConfig(),
		CachePath: getEnv("WRANGLE_CACHE_PATH", "zillow_full.csv"),
		OutputDir: getEnv("WRANGLE_OUTPUT_DIR", "out"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
		PushgatewayJob: getEnv("PUSHGATEWAY_JOB", "wrangle"),
	}

	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	cfg.Database = dbConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFiles reads .env files into the environment. Variables already set
// win, and a missing file is not an error.
func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Database == nil {
		return errors.New("database configuration is required")
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Cleaning.Validate(); err != nil {
		return err
	}
	if c.CachePath == "" {
		return errors.New("cache path cannot be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
