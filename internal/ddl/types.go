// Package ddl is a small, dialect-neutral model of the tables in a
// HYSTEM-EXTRAN model database. Backend packages (storage/sqlite/ddl,
// storage/mssql/ddl) render it into CREATE TABLE statements.
package ddl

import (
	"fmt"
	"strings"
)

// Logical column kinds. Backends map them with their MapType.
const (
	KindInteger = "integer"
	KindReal    = "real"
	KindText    = "text"
)

// ColumnDef describes a single column.
//
//   - Name: column name, unquoted
//   - Kind: logical kind (KindInteger, KindReal, KindText)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: part of the primary key
//   - Default: raw default expression
type ColumnDef struct {
	Name       string
	Kind       string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds a table name and its ordered columns. FQN may be dotted
// ("dbo.ROHR"); renderers quote each segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Builder renders a CREATE TABLE statement for one backend.
type Builder func(TableDef) (string, error)

// Check validates the parts of a definition every renderer relies on.
// prefix names the renderer in error messages.
func Check(prefix string, t TableDef) error {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%s: at least one column is required", prefix)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		key := strings.ToUpper(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s: duplicate column %s in table %s", prefix, name, fqn)
		}
		seen[key] = struct{}{}
	}
	return nil
}
