// Package mssql is the server-hosted target backend: a HYSTEM-EXTRAN model
// database on Microsoft SQL Server, written through go-mssqldb.
package mssql

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// DriverName is the database/sql driver go-mssqldb registers.
const DriverName = "sqlserver"

// ValidateDSN parses dsn the way the driver will.
func ValidateDSN(dsn string) error {
	if _, err := msdsn.Parse(dsn); err != nil {
		return fmt.Errorf("mssql dsn: %w", err)
	}
	return nil
}

// Open validates the DSN, connects and pings.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if err := ValidateDSN(dsn); err != nil {
		return nil, err
	}
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
