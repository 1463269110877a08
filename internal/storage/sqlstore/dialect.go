package sqlstore

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// Dialect names a supported SQL database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"

	driverSQLite   = "sqlite3"
	driverPostgres = "pgx"
)

func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectSQLite:
		return driverSQLite, nil
	case DialectPostgres:
		return driverPostgres, nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported driver %q (want sqlite or postgres)", string(d))
	}
}

// placeholder returns the bind parameter for the index-th argument.
// SQLite uses ?, PostgreSQL uses $1, $2, etc.
func (d Dialect) placeholder(index int) string {
	if d == DialectSQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", index)
}

// bytesType is the column type for opaque byte strings. User IDs and
// origins are stored as bytes so that values which are not valid UTF-8
// survive a PostgreSQL round trip unchanged.
func (d Dialect) bytesType() string {
	if d == DialectPostgres {
		return "BYTEA"
	}
	return "BLOB"
}

// configurePool applies cfg to db. SQLite gets a single connection so that
// writers never contend for the database lock and ":memory:" databases
// survive between calls.
func (d Dialect) configurePool(db *sql.DB, cfg Config) {
	if d == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}
