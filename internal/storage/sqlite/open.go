// Package sqlite is the file-based target backend: a HYSTEM-EXTRAN model
// database provisioned from a template and written through modernc.org/sqlite.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver modernc.org/sqlite registers.
const DriverName = "sqlite"

func init() {
	// sqlx only knows "sqlite3" by default.
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Open opens a SQLite database. dsn is a file path, a file: URI or
// ":memory:". The pool is limited to one connection: SQLite has a single
// writer, and an in-memory database exists only on the connection that
// created it.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return db, nil
}
