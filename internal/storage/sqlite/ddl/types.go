package ddl

import (
	"strings"

	gddl "qkhe/internal/ddl"
)

// MapType maps a logical column kind to a SQLite type affinity. Unknown
// kinds fall back to TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.KindInteger, "int", "bigint":
		return "INTEGER"
	case gddl.KindReal, "float", "double":
		return "REAL"
	default:
		return "TEXT"
	}
}
