// Package database opens the SQL store (MySQL or PostgreSQL) and owns the
// schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/iliyamo/crimson-storefront/internal/config"
)

// Supported drivers.
const (
	MySQL    = "mysql"
	Postgres = "postgres"
)

// DB is a connection pool that knows its SQL dialect.  Repositories write
// queries with '?' placeholders and pass them through Rebind.
type DB struct {
	*sql.DB
	Driver string
}

// Wrap pairs an existing pool with a driver name.
func Wrap(db *sql.DB, driver string) *DB { return &DB{DB: db, Driver: driver} }

// Open builds the pool for cfg.  It does not dial: the API must come up
// even while the store is down, see PingWithin.
func Open(cfg config.Config) (*DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	return Wrap(db, cfg.DBDriver), nil
}

// DSN builds the driver-specific connection string.
func DSN(cfg config.Config) (string, error) {
	switch cfg.DBDriver {
	case MySQL:
		auth := cfg.DBUser
		if cfg.DBPass != "" {
			auth = fmt.Sprintf("%s:%s", cfg.DBUser, cfg.DBPass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, cfg.DBHost, cfg.DBPort, cfg.DBName), nil
	case Postgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.DBUser, cfg.DBPass),
			Host:     cfg.DBHost + ":" + cfg.DBPort,
			Path:     "/" + cfg.DBName,
			RawQuery: "sslmode=" + url.QueryEscape(cfg.DBSSLMode),
		}
		if cfg.DBPass == "" {
			u.User = url.User(cfg.DBUser)
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("database: unsupported driver %q", cfg.DBDriver)
}

// Rebind rewrites '?' placeholders into '$n' for PostgreSQL.  Queries must
// not contain literal question marks.
func (d *DB) Rebind(q string) string {
	if d.Driver != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PingWithin reports whether the store answers within timeout.
func (d *DB) PingWithin(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.PingContext(ctx)
}
