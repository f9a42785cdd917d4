package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"qkhe/internal/storage"
	sqliteddl "qkhe/internal/storage/sqlite/ddl"
)

// Kind is the storage kind this package registers.
const Kind = "sqlite"

// openDB is a test hook that points to Open by default.
var openDB = Open

// Backend describes the SQLite flavour to the storage registry.
func Backend() storage.Backend {
	return storage.Backend{
		Open: func(ctx context.Context, dsn string) (*sqlx.DB, error) {
			return openDB(ctx, dsn)
		},
		CreateTable: sqliteddl.BuildCreateTableSQL,
		Quote:       sqliteddl.QuoteFQN,
		FileBased:   true,
	}
}

func init() {
	storage.Register(Kind, Backend())
}
