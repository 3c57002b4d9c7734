package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

// DriverName picks the sql driver for a DSN: PostgreSQL URLs go to lib/pq,
// anything else is treated as a SQLite file path
func DriverName(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return driverPostgres
	}
	return driverSQLite
}

// ConnectDB opens the session database
func ConnectDB(dsn string) (*sql.DB, error) {
	driver := DriverName(dsn)
	if driver == driverPostgres {
		return sql.Open(driver, dsn)
	}

	// Expand tilde to home directory if present
	if strings.HasPrefix(dsn, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dsn = homeDir + dsn[1:]
	}

	dbDir := filepath.Dir(dsn)
	if dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// SQLite creates the file on first use
	return sql.Open(driver, dsn)
}

// EnsureSchema creates the session table if it doesn't exist
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	return err
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL
func rebind(driver, query string) string {
	if driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
