package qkan

import (
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	spatialiteDriver = "spatialite"
	// DefaultExtension is the SpatiaLite loadable module name.
	DefaultExtension = "mod_spatialite"
)

var (
	driverMu sync.Mutex
	drivers  = map[string]string{}
)

// spatialiteDriverFor registers (once per extension) a go-sqlite3 driver
// that loads the SpatiaLite extension on every new connection.
func spatialiteDriverFor(extension string) string {
	if extension == "" {
		extension = DefaultExtension
	}
	driverMu.Lock()
	defer driverMu.Unlock()
	if name, ok := drivers[extension]; ok {
		return name
	}
	name := spatialiteDriver
	if extension != DefaultExtension {
		name = spatialiteDriver + ":" + extension
	}
	sql.Register(name, &sqlite3.SQLiteDriver{Extensions: []string{extension}})
	sqlx.BindDriver(name, sqlx.QUESTION)
	drivers[extension] = name
	return name
}
