package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a supported database and the SQL details that differ.
type Dialect struct {
	Name        string // "sqlite3" or "postgres"
	Driver      string // database/sql driver name
	Placeholder sq.PlaceholderFormat
}

var (
	SQLite   = Dialect{Name: "sqlite3", Driver: "sqlite3", Placeholder: sq.Question}
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Placeholder: sq.Dollar}
)

// DialectFor maps a configured driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite3", "sqlite", "":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("db: unsupported driver %q", driver)
}

// Open opens and pings the database for the given driver.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	if d.Name == SQLite.Name {
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("db: open %s: %w", d.Name, err)
	}
	if d.Name == SQLite.Name {
		// one writer; also keeps ":memory:" databases on a single connection
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, Dialect{}, fmt.Errorf("db: ping %s: %w", d.Name, err)
	}
	return conn, d, nil
}

// sqliteDSN turns on foreign keys and a busy timeout through the DSN, so
// every pooled connection gets them.
func sqliteDSN(dsn string) string {
	params := []string{"_foreign_keys=on", "_busy_timeout=3000"}
	if !strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory") {
		params = append(params, "_journal_mode=WAL")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
