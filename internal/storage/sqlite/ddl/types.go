package ddl

import (
	"strings"

	"transitsql/internal/schema"
)

// MapType maps a logical type onto a SQLite affinity:
//   - integer-ish   -> INTEGER
//   - boolean       -> INTEGER (0/1)
//   - float         -> REAL
//   - decimal       -> NUMERIC
//   - date/time     -> TEXT (ISO-8601)
//   - others        -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "INTEGER"
	case "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal":
		return "NUMERIC"
	case "blob", "bytes":
		return "BLOB"
	default:
		return "TEXT"
	}
}

// MapHint maps a resolved column hint.
func MapHint(h schema.Hint) string { return MapType(h.Logical()) }
