// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"fmt"
	"strings"

	"transitsql/internal/schema"
)

// MapType normalizes a loosely-specified logical type into a Postgres type.
//
//	"int"/"integer"/"bigint"  -> BIGINT
//	"bool"/"boolean"          -> BOOLEAN
//	"decimal"/"numeric"       -> NUMERIC
//	"date"                    -> DATE
//	"time"                    -> TIME
//	"timestamp"               -> TIMESTAMP
//	everything else           -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case "decimal", "numeric", "float", "double", "real":
		return "NUMERIC"
	case "date":
		return "DATE"
	case "time":
		return "TIME"
	case "timestamp", "datetime":
		return "TIMESTAMP"
	case "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// MapHint maps a resolved column hint, keeping VARCHAR lengths and DECIMAL
// precision.
func MapHint(h schema.Hint) string {
	switch {
	case h.Kind == schema.HintVarchar:
		return fmt.Sprintf("VARCHAR(%d)", h.Length)
	case h.Kind == schema.HintDecimal && h.Precision > 0:
		return fmt.Sprintf("NUMERIC(%d,%d)", h.Precision, h.Scale)
	}
	return MapType(h.Logical())
}
