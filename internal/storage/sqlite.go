package storage

import (
	_ "modernc.org/sqlite" // register the sqlite driver
)

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

func (sqliteDialect) placeholder(int) string { return "?" }

// SQLite's LIKE is case-insensitive for ASCII, which matches what the
// production ILIKE gives us for the fields we search.
func (sqliteDialect) matchOp() string { return "LIKE" }

// OpenSQLite opens (or creates) a SQLite database file. Intended for local
// and development deployments; production runs against Postgres.
func OpenSQLite(path string) (*SQLClient, error) {
	return open(sqliteDialect{}, path)
}
