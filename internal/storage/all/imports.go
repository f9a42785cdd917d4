// Package all wires the built-in target backends into the storage registry.
//
// It exists purely for side effects: importing it (even as a blank import)
// runs the init functions of each backend, which register themselves with
// the storage package. After that the following kinds are available:
//
//   - "sqlite" (qkhe/internal/storage/sqlite), a model file from a template
//   - "mssql"  (qkhe/internal/storage/mssql), a model on SQL Server
//
// A binary that needs only one backend can import that package directly
// instead.
package all

import (
	_ "qkhe/internal/storage/mssql"
	_ "qkhe/internal/storage/sqlite"
)
