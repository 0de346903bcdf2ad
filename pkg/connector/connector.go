// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/config"
	"github.com/David-Botos/property-wrangle/pkg/model"
)

// DatabaseConnector defines the interface for source database connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sqlx.DB

	// Dialect returns the configured driver (mysql, postgres, snowflake, sqlite)
	Dialect() string

	// Validate verifies the connection
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error

	// QueryWithTimeout executes a query with a timeout and reads the whole result
	QueryWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (*ResultSet, error)
}

// ResultSet is a fully read query result
type ResultSet struct {
	Columns []string
	Types   []string
	Rows    [][]interface{}
}

// Metadata describes the result set as a table
func (r *ResultSet) Metadata(table string) *model.TableMetadata {
	meta := &model.TableMetadata{
		Table:   table,
		Columns: make([]model.ColumnMeta, len(r.Columns)),
	}
	for i, name := range r.Columns {
		meta.Columns[i] = model.ColumnMeta{Name: name, DataType: r.Types[i]}
	}
	return meta
}

// sqlConnector holds what every driver shares
type sqlConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.DatabaseConfig
}

// open builds the DSN, opens the pool, applies pool settings and pings
func open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger, pingTimeout time.Duration) (*sqlConnector, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s connection: %w", cfg.Driver, err)
	}

	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)
	if cfg.Driver == config.DriverSQLite {
		// an in-memory database lives and dies with its single connection
		db.SetMaxOpenConns(1)
	}

	if err := PingWithTimeout(ctx, db.DB, pingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	return &sqlConnector{db: db, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *sqlConnector) DB() *sqlx.DB {
	return c.db
}

// Dialect returns the configured driver
func (c *sqlConnector) Dialect() string {
	return c.cfg.Driver
}

// Close closes the database connection
func (c *sqlConnector) Close() error {
	c.logger.Info("Closing connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout. Rows are scanned as
// slices so repeated column names in a join survive.
func (c *sqlConnector) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (*ResultSet, error) {
	if timeout <= 0 {
		timeout = c.cfg.QueryTimeout
	}
	queryCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rows, err := c.db.QueryxContext(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	rs := &ResultSet{Columns: columns, Types: make([]string, len(types))}
	for i, ct := range types {
		rs.Types[i] = ct.DatabaseTypeName()
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(rs.Rows), err)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	c.logger.Debug("Query complete",
		zap.Int("columns", len(rs.Columns)),
		zap.Int("rows", len(rs.Rows)))
	return rs, nil
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}
