// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.DatabaseConfig
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.DatabaseConfig, logger *zap.Logger) *ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Create opens a connector for the configured driver
func (f *ConnectorFactory) Create(ctx context.Context) (DatabaseConnector, error) {
	if f.cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}
	f.logger.Info("Creating connector", zap.String("driver", f.cfg.Driver))

	var (
		conn DatabaseConnector
		err  error
	)
	switch f.cfg.Driver {
	case config.DriverMySQL:
		conn, err = NewMySQLConnector(ctx, f.cfg, f.logger)
	case config.DriverPostgres:
		conn, err = NewPostgresConnector(ctx, f.cfg, f.logger)
	case config.DriverSnowflake:
		conn, err = NewSnowflakeConnector(ctx, f.cfg, f.logger)
	case config.DriverSQLite:
		conn, err = NewSQLiteConnector(ctx, f.cfg, f.logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", f.cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", f.cfg.Driver, err)
	}
	return conn, nil
}
