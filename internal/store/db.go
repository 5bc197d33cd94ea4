package store

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the daemon's handle on hirrd.db: jobs, applications and the
// append-only message log.
type DB struct {
	*sql.DB
}

// dsn builds the go-sqlite3 connection string. Write transactions take the
// lock up front so concurrent sends queue on busy_timeout instead of failing
// with SQLITE_BUSY on upgrade.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// Open connects to the database at path and checks it is reachable.
// Migrations are applied separately by Migrate.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("open db: empty path")
	}
	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping db %s: %w", path, err)
	}
	return &DB{conn}, nil
}
