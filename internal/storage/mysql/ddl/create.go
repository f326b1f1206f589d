// Package ddl renders MySQL CREATE TABLE statements from the generic
// ddl.TableDef model: backtick identifiers, IF NOT EXISTS, AUTO_INCREMENT
// for serial ids, and TEXT key columns narrowed to an indexable VARCHAR.
package ddl

import (
	"fmt"
	"strings"

	gddl "transitsql/internal/ddl"
	"transitsql/internal/schema"
)

// keyText is the widest utf8mb4 VARCHAR an InnoDB index key accepts.
const keyText = "VARCHAR(191)"

var dialect = gddl.Dialect{
	Name:        "mysql",
	Quote:       QuoteIdent,
	IfNotExists: true,
	IdentityType: func(gddl.ColumnDef) string {
		return "BIGINT AUTO_INCREMENT"
	},
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols := make([]gddl.ColumnDef, len(t.Columns))
	copy(cols, t.Columns)
	for i, c := range cols {
		if c.PrimaryKey && strings.EqualFold(strings.TrimSpace(c.SQLType), "TEXT") {
			cols[i].SQLType = keyText
		}
	}
	t.Columns = cols
	return gddl.Render(t, dialect)
}

// QuoteIdent quotes one identifier with backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// MapHint maps a resolved column hint to a MySQL column type.
func MapHint(h schema.Hint) string {
	switch h.Kind {
	case schema.HintInteger:
		return "BIGINT"
	case schema.HintDecimal:
		if h.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", h.Precision, h.Scale)
		}
		return "DECIMAL(38,10)"
	case schema.HintVarchar:
		return fmt.Sprintf("VARCHAR(%d)", h.Length)
	case schema.HintBoolean:
		return "BOOLEAN"
	case schema.HintDate:
		return "DATE"
	case schema.HintTime:
		return "TIME"
	case schema.HintTimestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
