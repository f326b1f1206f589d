package ddl

import (
	"strings"

	gddl "transitsql/internal/ddl"
)

var dialect = gddl.Dialect{
	Name:        "postgres",
	Quote:       QuoteIdent,
	IfNotExists: true,
	IdentityType: func(gddl.ColumnDef) string {
		return "BIGSERIAL"
	},
}

// BuildCreateTableSQL returns a CREATE TABLE IF NOT EXISTS statement with
// double-quoted identifiers. Identity columns become BIGSERIAL.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, dialect)
}

// QuoteIdent quotes one identifier segment, doubling embedded quotes.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// QuoteFQN quotes a possibly schema-qualified name: public.t -> "public"."t".
func QuoteFQN(name string) string { return gddl.QuoteFQN(name, QuoteIdent) }
