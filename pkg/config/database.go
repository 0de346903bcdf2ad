// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/snowflakedb/gosnowflake"
)

// Supported source drivers
const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSnowflake = "snowflake"
	DriverSQLite    = "sqlite"
)

// DatabaseConfig holds the connection parameters of the source database
type DatabaseConfig struct {
	Driver   string
	User     string
	Host     string
	Port     int
	Password string
	Database string // Default: zillow
	Schema   string // Qualifies the lookup tables; defaults to Database on mysql

	// Postgres only
	SSLMode string

	// Snowflake only
	Account       string
	Warehouse     string
	Role          string
	Authenticator gosnowflake.AuthType

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// LoadDatabaseConfig loads source database configuration from environment variables.
// Credentials are not required here; a run served from the cache never connects.
func LoadDatabaseConfig() (*DatabaseConfig, error) {
	driver := getEnv("DB_DRIVER", DriverMySQL)

	defaultPort := 3306
	if driver == DriverPostgres {
		defaultPort = 5432
	}

	cfg := &DatabaseConfig{
		Driver:   driver,
		User:     getEnv("DB_USER", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", defaultPort),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", "zillow"),
		Schema:   getEnv("DB_SCHEMA", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		Account:       getEnv("SNOWFLAKE_ACCOUNT", ""),
		Warehouse:     getEnv("SNOWFLAKE_WAREHOUSE", ""),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake")),

		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt("DB_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt("DB_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

func parseAuthenticator(s string) gosnowflake.AuthType {
	switch s {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}

// Validate checks the driver is known
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverMySQL, DriverPostgres, DriverSnowflake, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Driver)
	}
}

// RequireCredentials checks the fields a connection needs are set
func (c *DatabaseConfig) RequireCredentials() error {
	if c.Database == "" {
		return errors.New("DB_NAME is required")
	}
	if c.Driver == DriverSQLite {
		return nil
	}
	if c.User == "" {
		return errors.New("DB_USER is required")
	}
	if c.Password == "" && c.Authenticator == gosnowflake.AuthTypeSnowflake {
		return errors.New("DB_PASSWORD is required")
	}
	if c.Driver == DriverSnowflake {
		if c.Account == "" {
			return errors.New("SNOWFLAKE_ACCOUNT is required")
		}
	} else if c.Host == "" {
		return errors.New("DB_HOST is required")
	}
	return nil
}

// LookupSchema returns the schema qualifying the type lookup tables
func (c *DatabaseConfig) LookupSchema() string {
	if c.Schema != "" {
		return c.Schema
	}
	if c.Driver == DriverMySQL {
		return c.Database
	}
	return ""
}

// DriverName returns the database/sql driver name registered for Driver
func (c *DatabaseConfig) DriverName() string {
	switch c.Driver {
	case DriverPostgres:
		return "pgx"
	default:
		return c.Driver
	}
}

// ConnectionString returns the DSN for the configured driver
func (c *DatabaseConfig) ConnectionString() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Database
		mc.Timeout = 10 * time.Second
		if c.QueryTimeout > 0 {
			// sent as SET on every pooled connection
			mc.Params = map[string]string{
				"max_execution_time": strconv.FormatInt(c.QueryTimeout.Milliseconds(), 10),
			}
		}
		return mc.FormatDSN(), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			pgValue(c.Host),
			c.Port,
			pgValue(c.User),
			pgValue(c.Password),
			pgValue(c.Database),
			pgValue(c.SSLMode),
		)
		if c.QueryTimeout > 0 {
			// a runtime parameter, applied to every pooled connection
			dsn += fmt.Sprintf(" statement_timeout=%d", c.QueryTimeout.Milliseconds())
		}
		return dsn, nil
	case DriverSnowflake:
		dsn, err := gosnowflake.DSN(&gosnowflake.Config{
			Account:       c.Account,
			User:          c.User,
			Password:      c.Password,
			Database:      c.Database,
			Warehouse:     c.Warehouse,
			Role:          c.Role,
			Authenticator: c.Authenticator,
		})
		if err != nil {
			return "", fmt.Errorf("failed to build Snowflake DSN: %w", err)
		}
		return dsn, nil
	case DriverSQLite:
		return c.Database, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", c.Driver)
	}
}

var pgEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// pgValue quotes a keyword/value connection string value when it is empty or
// holds whitespace, a quote or a backslash
func pgValue(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\\") {
		return s
	}
	return "'" + pgEscaper.Replace(s) + "'"
}
