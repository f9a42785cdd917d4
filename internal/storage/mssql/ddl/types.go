package ddl

import (
	"strings"

	gddl "qkhe/internal/ddl"
)

// MapType maps a logical column kind to a SQL Server type. Reals use FLOAT
// so that values round-trip without a fixed scale; unknown kinds fall back
// to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.KindInteger, "int", "bigint":
		return "BIGINT"
	case gddl.KindReal, "float", "double":
		return "FLOAT"
	case gddl.KindText:
		return "NVARCHAR(255)"
	default:
		return "NVARCHAR(MAX)"
	}
}
