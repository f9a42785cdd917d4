package mssql

import (
	"context"

	"github.com/jmoiron/sqlx"

	"qkhe/internal/storage"
	msddl "qkhe/internal/storage/mssql/ddl"
)

// Kind is the storage kind this package registers.
const Kind = "mssql"

// openDB is a test hook that points to Open by default.
// Tests may replace this variable to avoid real DB connections.
var openDB = Open

func Backend() storage.Backend {
	return storage.Backend{
		Open: func(ctx context.Context, dsn string) (*sqlx.DB, error) {
			return openDB(ctx, dsn)
		},
		CreateTable: msddl.BuildCreateTableSQL,
		Quote:       msddl.QuoteFQN,
	}
}

func init() {
	storage.Register(Kind, Backend())
}
