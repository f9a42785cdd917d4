// Package ddl renders HYSTEM-EXTRAN table definitions as SQLite DDL.
//
// The builder here:
//   - Uses double-quoted identifiers: "ITWH$PROGINFO", "NAME".
//   - Emits CREATE TABLE IF NOT EXISTS.
//   - Treats ColumnDef.Default as raw SQL.
//   - Renders PRIMARY KEY as a separate table constraint.
package ddl

import (
	"fmt"
	"strings"

	gddl "qkhe/internal/ddl"
)

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk1")
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	if err := gddl.Check("sqlite ddl", t); err != nil {
		return "", err
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)

		var sb strings.Builder
		sb.WriteString(QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(MapType(c.Kind))

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, QuoteIdent(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(strings.TrimSpace(t.FQN)),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent double-quotes one identifier, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each dotted segment of a table name.
func QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}
