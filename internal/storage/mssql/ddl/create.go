// Package ddl renders SQL Server CREATE TABLE scripts from the generic
// ddl.TableDef model.
//
// The builder here:
//   - Uses bracket quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     has no CREATE TABLE IF NOT EXISTS.
//   - Narrows NVARCHAR(MAX) key columns to NVARCHAR(450), the widest type an
//     index key accepts.
package ddl

import (
	"fmt"
	"strings"

	gddl "transitsql/internal/ddl"
)

// keyText is the widest NVARCHAR usable in a primary key.
const keyText = "NVARCHAR(450)"

var dialect = gddl.Dialect{
	Name:  "mssql",
	Quote: quoteIdent,
	IdentityType: func(gddl.ColumnDef) string {
		return "BIGINT IDENTITY(1,1)"
	},
}

// BuildCreateTableSQL returns a T-SQL script that creates the table if it
// does not already exist:
//
//	IF OBJECT_ID(N'[dbo].[t]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[t] (
//	    [col1] TYPE [NOT NULL] [DEFAULT expr],
//	    PRIMARY KEY ([pk1])
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols := make([]gddl.ColumnDef, len(t.Columns))
	copy(cols, t.Columns)
	for i, c := range cols {
		if c.PrimaryKey && strings.EqualFold(strings.TrimSpace(c.SQLType), "NVARCHAR(MAX)") {
			cols[i].SQLType = keyText
		}
	}
	t.Columns = cols

	stmt, err := gddl.Render(t, dialect)
	if err != nil {
		return "", err
	}
	fqn := quoteFQN(strings.TrimSpace(t.FQN))
	body := "  " + strings.ReplaceAll(stmt, "\n", "\n  ")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", fqn, body), nil
}

// quoteIdent quotes a single identifier segment using bracket syntax,
// escaping closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN quotes a possibly schema-qualified table name, e.g.
// "dbo.Users" -> [dbo].[Users].
func quoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, quoteIdent) }
