// pkg/acquire/source.go
package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/connector"
	"github.com/David-Botos/property-wrangle/pkg/converter"
	"github.com/David-Botos/property-wrangle/pkg/model"
)

// TableName names the acquired extract in logs and metadata
const TableName = "zillow"

// Source yields the raw property table
type Source interface {
	Acquire(ctx context.Context) (*model.Table, error)
}

// FileSource reads the table from a CSV file
type FileSource struct {
	Path      string
	converter *converter.TypeConverter
	logger    *zap.Logger
}

// NewFileSource creates a source reading path
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{
		Path:      path,
		converter: converter.NewTypeConverter(logger),
		logger:    logger.Named("file-source"),
	}
}

// Acquire reads the file
func (s *FileSource) Acquire(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := ReadCSVFile(s.Path, s.converter)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	s.logger.Info("Read table from file",
		zap.String("path", s.Path),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()))
	return t, nil
}

// Connect opens the source database
type Connect func(ctx context.Context) (connector.DatabaseConnector, error)

// DatabaseSource runs the extract query against the source database
type DatabaseSource struct {
	connect   Connect
	schema    string
	timeout   time.Duration
	converter *converter.TypeConverter
	logger    *zap.Logger
}

// NewDatabaseSource creates a source that connects on Acquire. schema
// qualifies the type lookup tables; timeout bounds the query.
func NewDatabaseSource(connect Connect, schema string, timeout time.Duration, logger *zap.Logger) *DatabaseSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatabaseSource{
		connect:   connect,
		schema:    schema,
		timeout:   timeout,
		converter: converter.NewTypeConverter(logger),
		logger:    logger.Named("database-source"),
	}
}

// Acquire connects, runs the extract query and converts the result
func (s *DatabaseSource) Acquire(ctx context.Context) (*model.Table, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer conn.Close()

	if err := conn.Validate(ctx); err != nil {
		return nil, fmt.Errorf("source database validation failed: %w", err)
	}

	start := time.Now()
	query := PropertiesQuery(conn.Dialect(), s.schema)
	rs, err := conn.QueryWithTimeout(ctx, query, s.timeout)
	if err != nil {
		return nil, fmt.Errorf("extract query failed: %w", err)
	}

	t, err := s.converter.BuildTable(rs.Metadata(TableName), rs.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to convert extract: %w", err)
	}

	s.logger.Info("Extracted table from database",
		zap.String("dialect", conn.Dialect()),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()),
		zap.Duration("duration", time.Since(start)))
	return t, nil
}

// CachedSource serves the table from a CSV cache, filling the cache from
// the remote source the first time
type CachedSource struct {
	Path   string
	remote Source
	file   *FileSource
	logger *zap.Logger
}

// NewCachedSource creates a cache in front of remote
func NewCachedSource(path string, remote Source, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		Path:   path,
		remote: remote,
		file:   NewFileSource(path, logger),
		logger: logger.Named("cached-source"),
	}
}

// Acquire reads the cache when it exists. Otherwise it fetches from the
// remote source and writes the cache; a failed cache write fails the call.
func (s *CachedSource) Acquire(ctx context.Context) (*model.Table, error) {
	_, err := os.Stat(s.Path)
	switch {
	case err == nil:
		s.logger.Debug("Cache hit", zap.String("path", s.Path))
		return s.file.Acquire(ctx)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to stat cache %s: %w", s.Path, err)
	}

	s.logger.Info("Cache miss, fetching from source", zap.String("path", s.Path))
	t, err := s.remote.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if err := WriteCSVFile(s.Path, t); err != nil {
		return nil, fmt.Errorf("failed to write cache: %w", err)
	}
	s.logger.Info("Wrote cache", zap.String("path", s.Path), zap.Int("rows", t.NumRows()))
	return t, nil
}
