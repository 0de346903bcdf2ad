package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DB_PORT", "DB_NAME", "WRANGLE_SEED", "WRANGLE_TEST_SIZE",
		"WRANGLE_VALIDATE_SIZE", "WRANGLE_COLUMN_THRESHOLD", "WRANGLE_ROW_THRESHOLD", "WRANGLE_OUTLIER_K",
		"WRANGLE_CACHE_PATH", "LOG_FORMAT", "PUSHGATEWAY_URL", "PUSHGATEWAY_JOB"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "zillow", cfg.Database.Database)
	assert.Equal(t, "zillow_full.csv", cfg.CachePath)
	assert.Equal(t, DefaultCleaningConfig(), cfg.Cleaning)
	assert.Equal(t, int64(333), cfg.Cleaning.Seed)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Equal(t, "wrangle", cfg.PushgatewayJob)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	// godotenv never overrides a variable that is already set, so clear them
	// after registering the restore
	for _, key := range []string{"DB_DRIVER", "DB_USER", "DB_PORT", "WRANGLE_SEED", "LOG_FORMAT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER=postgres\nDB_USER=codeup\nWRANGLE_SEED=7\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "codeup", cfg.Database.User)
	assert.Equal(t, int64(7), cfg.Cleaning.Seed)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestCleaningConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultCleaningConfig().Validate())

	bad := DefaultCleaningConfig()
	bad.TestSize = 1
	assert.Error(t, bad.Validate())

	bad = DefaultCleaningConfig()
	bad.ColumnThreshold = 0
	assert.Error(t, bad.Validate())

	bad = DefaultCleaningConfig()
	bad.OutlierK = -1
	assert.Error(t, bad.Validate())
}

func TestConnectionString(t *testing.T) {
	cfg := &DatabaseConfig{
		Driver:   DriverMySQL,
		User:     "user",
		Password: "pw",
		Host:     "db.example.com",
		Port:     3306,
		Database: "zillow",
	}
	dsn, err := cfg.ConnectionString()
	require.NoError(t, err)
	assert.Contains(t, dsn, "user:pw@tcp(db.example.com:3306)/zillow")
	assert.Equal(t, "mysql", cfg.DriverName())
	assert.NotContains(t, dsn, "max_execution_time")

	cfg.QueryTimeout = 30 * time.Second
	dsn, err = cfg.ConnectionString()
	require.NoError(t, err)
	assert.Contains(t, dsn, "max_execution_time=30000")

	cfg.Driver = DriverPostgres
	cfg.Port = 5432
	cfg.SSLMode = "disable"
	dsn, err = cfg.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "host=db.example.com port=5432 user=user password=pw dbname=zillow sslmode=disable statement_timeout=30000", dsn)
	assert.Equal(t, "pgx", cfg.DriverName())

	cfg.Password = `p w'd\x`
	dsn, err = cfg.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, `host=db.example.com port=5432 user=user password='p w\'d\\x' dbname=zillow sslmode=disable statement_timeout=30000`, dsn)

	cfg.Driver = DriverSQLite
	cfg.Database = "snapshot.db"
	dsn, err = cfg.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "snapshot.db", dsn)
}

func TestRequireCredentials(t *testing.T) {
	cfg := &DatabaseConfig{Driver: DriverMySQL, Host: "localhost", Database: "zillow"}
	assert.Error(t, cfg.RequireCredentials())

	cfg.User = "user"
	cfg.Password = "pw"
	assert.NoError(t, cfg.RequireCredentials())

	lite := &DatabaseConfig{Driver: DriverSQLite, Database: ":memory:"}
	assert.NoError(t, lite.RequireCredentials())
}
