package store

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/weather-station-etl/internal/config"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between the supported stores.
type Dialect struct {
	Name   string
	Driver string

	// MaxParams is the number of bound parameters one statement may carry.
	MaxParams int

	// AutoIncrementKey declares an auto-incrementing integer primary key.
	AutoIncrementKey string

	tableExists  string
	foldsCase    bool
	positionalPH bool
	dsn          func(config.Credentials) string
}

var (
	Postgres = Dialect{
		Name:             "postgres",
		Driver:           "postgres",
		MaxParams:        65535,
		AutoIncrementKey: "serial PRIMARY KEY",
		tableExists:      `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`,
		foldsCase:        true,
		positionalPH:     true,
		dsn:              postgresDSN,
	}

	MySQL = Dialect{
		Name:             "mysql",
		Driver:           "mysql",
		MaxParams:        65535,
		AutoIncrementKey: "INT AUTO_INCREMENT PRIMARY KEY",
		tableExists:      `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
		dsn:              mysqlDSN,
	}

	SQLite = Dialect{
		Name:             "sqlite",
		Driver:           "sqlite",
		MaxParams:        32766,
		AutoIncrementKey: "INTEGER PRIMARY KEY AUTOINCREMENT",
		tableExists:      `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		dsn:              sqliteDSN,
	}
)

// DialectFor resolves a dialect by name. Common aliases are accepted.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// Placeholder returns the bind marker for the n-th parameter, 1-based.
func (d Dialect) Placeholder(n int) string {
	if d.positionalPH {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// DSN builds the driver connection string for creds.
func (d Dialect) DSN(creds config.Credentials) string {
	return d.dsn(creds)
}

// tableName is the form the catalog stores an unquoted identifier in.
func (d Dialect) tableName(name string) string {
	if d.foldsCase {
		return strings.ToLower(name)
	}
	return name
}

func postgresDSN(c config.Credentials) string {
	q := url.Values{}
	for k, v := range c.Options {
		q.Set(k, v)
	}
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	host := c.ServiceName
	if c.Port != 0 {
		host = c.Address()
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     host,
		Path:     "/" + c.DatabaseName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func mysqlDSN(c config.Credentials) string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Address()
	if c.Port == 0 {
		cfg.Addr = c.ServiceName + ":3306"
	}
	cfg.DBName = c.DatabaseName
	cfg.ParseTime = true
	if len(c.Options) > 0 {
		cfg.Params = make(map[string]string, len(c.Options))
		for k, v := range c.Options {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN()
}

// sqliteDSN always selects the "sqlite" time format so stored timestamps
// compare correctly as text.
func sqliteDSN(c config.Credentials) string {
	q := url.Values{}
	for k, v := range c.Options {
		q.Set(k, v)
	}
	q.Set("_time_format", "sqlite")
	return c.DatabaseName + "?" + q.Encode()
}
