package ledger

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// dialect carries the few differences between the SQLite and Postgres ledgers.
type dialect struct {
	name       string
	driverName string
	schema     string
	// forUpdate is appended to row reads inside a unit of work.
	forUpdate string
	numbered  bool
}

var (
	sqliteDialect = dialect{
		name:       "sqlite",
		driverName: "sqlite3",
		schema:     SQLiteSchema,
	}
	postgresDialect = dialect{
		name:       "postgres",
		driverName: "pgx",
		schema:     PostgresSchema,
		forUpdate:  " FOR UPDATE",
		numbered:   true,
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return sqliteDialect, nil
	case "postgres", "pgx":
		return postgresDialect, nil
	}
	return dialect{}, fmt.Errorf("unknown ledger driver %q", driver)
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
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

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
