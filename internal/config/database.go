package config

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"component-graphql/internal/sqlutil"
)

const (
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
)

// Dialect returns the SQL dialect selected by Driver.
func (d *DatabaseConfig) Dialect() (sqlutil.Dialect, error) {
	return sqlutil.ParseDialect(d.Driver)
}

// DSN returns a data source name for the configured driver.
// If ConnectionString is set, it is used as the base; otherwise the DSN is
// built from discrete fields.
func (d *DatabaseConfig) DSN() (string, error) {
	dialect, err := d.Dialect()
	if err != nil {
		return "", err
	}

	switch dialect {
	case sqlutil.DialectPostgres:
		return d.postgresDSN(), nil
	case sqlutil.DialectSQLite:
		if d.ConnectionString != "" {
			return d.ConnectionString, nil
		}
		return d.Database, nil
	default:
		return d.mysqlDSN()
	}
}

// mysqlDSN always enables parseTime so DATETIME columns scan as time.Time.
func (d *DatabaseConfig) mysqlDSN() (string, error) {
	var cfg *mysql.Config
	if d.ConnectionString != "" {
		parsed, err := mysql.ParseDSN(d.ConnectionString)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.portOrDefault(defaultMySQLPort)))
		cfg.DBName = d.Database
	}
	cfg.ParseTime = true

	if tlsParam := mysqlTLSParam(d.SSLMode); tlsParam != "" && cfg.TLSConfig == "" {
		cfg.TLSConfig = tlsParam
	}
	return cfg.FormatDSN(), nil
}

func mysqlTLSParam(sslMode string) string {
	switch strings.ToLower(strings.TrimSpace(sslMode)) {
	case "require":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return "true"
	default:
		return ""
	}
}

func (d *DatabaseConfig) postgresDSN() string {
	if d.ConnectionString != "" {
		if d.SSLMode != "" && !strings.Contains(d.ConnectionString, "sslmode") {
			return d.ConnectionString + " sslmode=" + quotePostgresValue(d.SSLMode)
		}
		return d.ConnectionString
	}

	params := map[string]string{
		"host":   d.Host,
		"port":   strconv.Itoa(d.portOrDefault(defaultPostgresPort)),
		"user":   d.User,
		"dbname": d.Database,
	}
	if d.Password != "" {
		params["password"] = d.Password
	}
	if d.SSLMode != "" {
		params["sslmode"] = d.SSLMode
	}

	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+quotePostgresValue(params[key]))
	}
	return strings.Join(parts, " ")
}

// quotePostgresValue quotes a libpq keyword value when it contains spaces,
// quotes or backslashes.
func quotePostgresValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

func (d *DatabaseConfig) portOrDefault(fallback int) int {
	if d.Port > 0 {
		return d.Port
	}
	return fallback
}
