// Package ddl renders SQLite CREATE TABLE statements from the generic
// ddl.TableDef model: double-quoted identifiers, IF NOT EXISTS, and the
// primary key as a table constraint.
package ddl

import (
	"strings"

	gddl "transitsql/internal/ddl"
)

var dialect = gddl.Dialect{
	Name:        "sqlite",
	Quote:       QuoteIdent,
	IfNotExists: true,
	IdentityType: func(gddl.ColumnDef) string {
		// A lone INTEGER primary key aliases the rowid and auto-assigns.
		return "INTEGER"
	},
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, dialect)
}

// QuoteIdent quotes one identifier.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
