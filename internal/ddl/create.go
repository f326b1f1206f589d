// Package ddl renders CREATE TABLE statements for resolved table schemas.
//
// Synthesize produces the portable statement written into SQL artifacts.
// FromSchema and FromDeclared build a TableDef that the dialect packages
// under internal/storage turn into backend-specific DDL.
package ddl

import (
	"fmt"
	"strings"

	"transitsql/internal/schema"
)

// CreatedAtDefault is the default expression of the audit column.
const CreatedAtDefault = "CURRENT_TIMESTAMP"

// Synthesize renders the CREATE TABLE statement for ts under the given table
// name:
//
//	CREATE TABLE IF NOT EXISTS stops (
//	    stop_id VARCHAR(255) PRIMARY KEY,
//	    stop_lat DECIMAL(10,8),
//	    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
//	);
//
// A composite key is emitted as its own PRIMARY KEY line just before
// created_at, and no column then carries an inline key. Names have hyphens
// turned into underscores. An empty schema yields "".
func Synthesize(table string, ts schema.TableSchema) string {
	if ts.Empty() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", schema.Ident(table))
	for _, c := range ts.Columns {
		b.WriteString("    ")
		b.WriteString(schema.Ident(c.Name))
		b.WriteByte(' ')
		b.WriteString(c.Hint.String())
		if ts.Key.Kind == schema.KeySingle && ts.Key.Columns[0] == c.Name {
			b.WriteString(" PRIMARY KEY")
		}
		b.WriteString(",\n")
	}
	if ts.Key.Kind == schema.KeyComposite {
		cols := make([]string, len(ts.Key.Columns))
		for i, c := range ts.Key.Columns {
			cols[i] = schema.Ident(c)
		}
		fmt.Fprintf(&b, "    PRIMARY KEY (%s),\n", strings.Join(cols, ", "))
	}
	b.WriteString("    " + schema.CreatedAt + " TIMESTAMP DEFAULT " + CreatedAtDefault + "\n")
	b.WriteString(");")
	return b.String()
}

// FromSchema builds a TableDef for ts, mapping each hint with mapType and
// appending the created_at audit column.
func FromSchema(table string, ts schema.TableSchema, mapType func(schema.Hint) string) (TableDef, error) {
	if ts.Empty() {
		return TableDef{}, fmt.Errorf("ddl: table %s has no columns", table)
	}
	td := TableDef{FQN: schema.Ident(table)}
	for _, c := range ts.Columns {
		pk := ts.Key.Contains(c.Name)
		td.Columns = append(td.Columns, ColumnDef{
			Name:       schema.Ident(c.Name),
			SQLType:    mapType(c.Hint),
			Nullable:   !pk,
			PrimaryKey: pk,
		})
	}
	td.Columns = append(td.Columns, createdAt(mapType))
	return td, nil
}

// FromDeclared builds a TableDef from a declaration, keeping every declared
// column, including inline keys and serial ids.
func FromDeclared(table string, d *schema.Declared, mapType func(schema.Hint) string) (TableDef, error) {
	if d == nil || len(d.Columns) == 0 {
		return TableDef{}, fmt.Errorf("ddl: table %s has no declared columns", table)
	}
	if table == "" {
		table = d.Table
	}
	key := d.Schema().Key
	td := TableDef{FQN: schema.Ident(table)}
	hasCreatedAt := false
	for _, c := range d.Columns {
		if c.Name == schema.CreatedAt {
			hasCreatedAt = true
			td.Columns = append(td.Columns, createdAt(mapType))
			continue
		}
		pk := c.PrimaryKey || key.Contains(c.Name)
		td.Columns = append(td.Columns, ColumnDef{
			Name:       schema.Ident(c.Name),
			SQLType:    mapType(c.SizedHint()),
			Nullable:   !pk,
			PrimaryKey: pk,
			Identity:   c.Serial(),
		})
	}
	if !hasCreatedAt {
		td.Columns = append(td.Columns, createdAt(mapType))
	}
	return td, nil
}

func createdAt(mapType func(schema.Hint) string) ColumnDef {
	return ColumnDef{
		Name:     schema.CreatedAt,
		SQLType:  mapType(schema.Timestamp()),
		Nullable: true,
		Default:  CreatedAtDefault,
	}
}

// BuildCreateTableSQL renders a plain CREATE TABLE statement from t without
// quoting or dialect clauses:
//
//	CREATE TABLE <FQN> (
//	  <name> <type> [NOT NULL] [DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Render(t, Dialect{})
}

// Dialect customizes Render for one SQL flavour.
type Dialect struct {
	Name         string
	Quote        func(ident string) string
	IfNotExists  bool
	IdentityType func(c ColumnDef) string
}

// Render validates t and renders a CREATE TABLE statement for d.
func Render(t TableDef, d Dialect) (string, error) {
	prefix := "ddl"
	if d.Name != "" {
		prefix = d.Name + " ddl"
	}
	quote := d.Quote
	if quote == nil {
		quote = func(s string) string { return s }
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", prefix)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if c.Identity && d.IdentityType != nil {
			typ = d.IdentityType(c)
		}
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", prefix, name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	head := "CREATE TABLE "
	if d.IfNotExists {
		head += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", head, QuoteFQN(fqn, quote), strings.Join(cols, ",\n  ")), nil
}

// QuoteFQN quotes each dotted segment of fqn with quote.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, quote(p))
		}
	}
	return strings.Join(out, ".")
}
