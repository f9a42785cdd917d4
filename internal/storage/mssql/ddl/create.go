// Package ddl renders HYSTEM-EXTRAN table definitions as T-SQL.
//
// The builder here:
//   - Uses SQL Server bracket quoting: [dbo].[ROHR], [NAME].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     has no CREATE TABLE IF NOT EXISTS.
//   - Treats ColumnDef.Default as raw SQL.
package ddl

import (
	"fmt"
	"strings"

	gddl "qkhe/internal/ddl"
)

// BuildCreateTableSQL returns a script that creates the table if missing:
//
//	IF OBJECT_ID(N'[dbo].[ROHR]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[ROHR] (
//	    [ID] BIGINT NOT NULL,
//	    PRIMARY KEY ([ID])
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	if err := gddl.Check("mssql ddl", t); err != nil {
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

	fqn := QuoteFQN(strings.TrimSpace(t.FQN))
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		fqn,
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

// QuoteIdent brackets one identifier segment, escaping closing brackets.
//
//	NAME      -> [NAME]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes a possibly schema-qualified name: dbo.ROHR -> [dbo].[ROHR].
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
