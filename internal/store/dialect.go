package store

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// dialect captures what differs between the supported databases. Queries
// are written with '?' placeholders and rebound per dialect.
type dialect struct {
	name        string
	driver      string
	placeholder byte
	forUpdate   string
	schema      []string
}

var dialects = map[string]dialect{
	"sqlite": {
		name:   "sqlite",
		driver: "sqlite",
		schema: []string{
			"PRAGMA journal_mode=WAL;",
			"PRAGMA busy_timeout=5000;",
			`CREATE TABLE IF NOT EXISTS canvases (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				width REAL NOT NULL,
				height REAL NOT NULL,
				elements_json TEXT NOT NULL,
				created_at_unixms INTEGER NOT NULL,
				updated_at_unixms INTEGER NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_canvases_created ON canvases(created_at_unixms);`,
		},
	},
	"postgres": {
		name:        "postgres",
		driver:      "pgx",
		placeholder: '$',
		forUpdate:   " FOR UPDATE",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS canvases (
				id VARCHAR(36) PRIMARY KEY,
				name TEXT NOT NULL,
				width DOUBLE PRECISION NOT NULL,
				height DOUBLE PRECISION NOT NULL,
				elements_json TEXT NOT NULL,
				created_at_unixms BIGINT NOT NULL,
				updated_at_unixms BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_canvases_created ON canvases(created_at_unixms)`,
		},
	},
	"mysql": {
		name:      "mysql",
		driver:    "mysql",
		forUpdate: " FOR UPDATE",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS canvases (
				id VARCHAR(36) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				width DOUBLE NOT NULL,
				height DOUBLE NOT NULL,
				elements_json LONGTEXT NOT NULL,
				created_at_unixms BIGINT NOT NULL,
				updated_at_unixms BIGINT NOT NULL,
				INDEX idx_canvases_created (created_at_unixms)
			)`,
		},
	},
}

func lookupDialect(name string) (dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite", "sqlite3":
		return dialects["sqlite"], nil
	case "postgres", "postgresql", "pgsql", "pgx":
		return dialects["postgres"], nil
	case "mysql", "mariadb":
		return dialects["mysql"], nil
	}
	return dialect{}, fmt.Errorf("unsupported database driver %q", name)
}

// rebind numbers the '?' placeholders in query for dialects that need it.
// A doubled "??" is left alone.
func (d dialect) rebind(query string) string {
	if d.placeholder == 0 || d.placeholder == '?' {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '?' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(query) && query[i+1] == '?' {
			b.WriteString("??")
			i++
			continue
		}
		b.WriteByte(d.placeholder)
		b.WriteString(strconv.Itoa(n))
		n++
	}
	return b.String()
}
