package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the positional placeholder syntax of the backing engine.
type Dialect int

const (
	// DialectPostgres renders $1, $2, ... (lib/pq and pgx).
	DialectPostgres Dialect = iota
	// DialectSQLite renders ?1, ?2, ... so each argument binds by explicit
	// index regardless of where it appears in the statement text.
	DialectSQLite
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pgx":
		return DialectPostgres, nil
	case "sqlite3":
		return DialectSQLite, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Placeholder returns the marker for the 1-based parameter slot n.
func (d Dialect) Placeholder(n int) string {
	if d == DialectSQLite {
		return "?" + strconv.Itoa(n)
	}
	return "$" + strconv.Itoa(n)
}

func (d Dialect) String() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "postgres"
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
