package storage

import (
	"strconv"

	_ "github.com/lib/pq" // register the postgres driver
)

type postgresDialect struct{}

func (postgresDialect) driverName() string { return "postgres" }

func (postgresDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) matchOp() string { return "ILIKE" }

// OpenPostgres connects to a Postgres database. dsn is a lib/pq connection
// string or URL (postgres://...).
func OpenPostgres(dsn string) (*SQLClient, error) {
	return open(postgresDialect{}, dsn)
}
