package ddl

import (
	"fmt"
	"strings"

	"transitsql/internal/schema"
)

// MapType maps a logical type string into a SQL Server column type. Unknown
// or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "DATE"
	case "time":
		return "TIME"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case "float", "double", "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	default:
		return "NVARCHAR(MAX)"
	}
}

// MapHint maps a resolved column hint. VARCHAR keeps its length as
// NVARCHAR(n) and DECIMAL keeps its precision.
func MapHint(h schema.Hint) string {
	switch {
	case h.Kind == schema.HintVarchar:
		return fmt.Sprintf("NVARCHAR(%d)", h.Length)
	case h.Kind == schema.HintDecimal && h.Precision > 0:
		return fmt.Sprintf("DECIMAL(%d, %d)", h.Precision, h.Scale)
	}
	return MapType(h.Logical())
}
