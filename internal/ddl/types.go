package ddl

// ColumnDef describes a single column in a dialect-neutral table definition.
//
// Fields:
//   - Name: column name (unquoted; dialect builders quote it)
//   - SQLType: target SQL type, already mapped for the dialect
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Identity: whether the column auto-increments
//   - Default: raw default expression (e.g. CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Identity   bool
	Default    string
}

// TableDef holds the table name (FQN, optionally "schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Keys returns the primary-key column names in column order.
func (t TableDef) Keys() []string {
	var out []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			out = append(out, c.Name)
		}
	}
	return out
}
