// pkg/connector/sqlite.go
package connector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/property-wrangle/pkg/config"
)

// SQLiteConnector implements the DatabaseConnector interface for a local SQLite snapshot
type SQLiteConnector struct {
	*sqlConnector
}

// NewSQLiteConnector opens the SQLite file named by cfg.Database
func NewSQLiteConnector(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLiteConnector, error) {
	logger = logger.Named("sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", cfg.Database))

	base, err := open(ctx, cfg, logger, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &SQLiteConnector{base}, nil
}

// Validate checks the snapshot holds the properties table
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowxContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}

	var n int
	err := c.db.QueryRowxContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", "properties_2017").Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("table properties_2017 not found in %s", c.cfg.Database)
	}

	c.logger.Info("Opened SQLite database", zap.String("version", version))
	return nil
}
