// pkg/connector/mysql.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/config"
)

// MySQLConnector implements the DatabaseConnector interface for MySQL
type MySQLConnector struct {
	*sqlConnector
}

// NewMySQLConnector creates and initializes a new MySQL connector
func NewMySQLConnector(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*MySQLConnector, error) {
	logger = logger.Named("mysql-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to MySQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	base, err := open(ctx, cfg, logger, 5*time.Second)
	if err != nil {
		return nil, err
	}

	LogConnectionStats(logger, cfg.Database, base.db.DB)
	return &MySQLConnector{base}, nil
}

// Validate verifies the MySQL connection
func (c *MySQLConnector) Validate(ctx context.Context) error {
	var version, database string
	err := c.db.QueryRowxContext(ctx, "SELECT VERSION(), DATABASE()").Scan(&version, &database)
	if err != nil {
		return fmt.Errorf("failed to query MySQL version: %w", err)
	}
	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)", database, c.cfg.Database)
	}
	c.logger.Info("Connected to MySQL",
		zap.String("version", version),
		zap.String("database", database))
	return nil
}
