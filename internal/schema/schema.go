// Package schema resolves the column types and primary key of a table, either
// from a hand-authored CREATE TABLE declaration or by inference over a
// dataset's native column kinds, with GTFS-aware override rules.
package schema

import (
	"errors"
	"strings"
)

// ErrMissingSchema reports that no table name or declaration could be found.
var ErrMissingSchema = errors.New("schema: missing schema")

// CreatedAt is the audit column every generated table gets. It is never
// taken from the data.
const CreatedAt = "created_at"

// Column is one resolved column.
type Column struct {
	Name string
	Hint Hint
}

// Source says where a TableSchema came from: a *Declared or Inferred.
type Source interface {
	source()
}

// Inferred marks a schema built from the data alone.
type Inferred struct{}

func (Inferred) source()  {}
func (*Declared) source() {}

// TableSchema is the resolved shape of one table.
type TableSchema struct {
	Table   string
	Columns []Column
	Key     KeySpec
	Source  Source
}

// Empty reports whether the schema has no columns.
func (s TableSchema) Empty() bool { return len(s.Columns) == 0 }

// Declared returns the declaration when the schema was declared.
func (s TableSchema) Declared() (*Declared, bool) {
	d, ok := s.Source.(*Declared)
	return d, ok && d != nil
}

// Hint returns the type hint for col.
func (s TableSchema) Hint(col string) (Hint, bool) {
	for _, c := range s.Columns {
		if c.Name == col {
			return c.Hint, true
		}
	}
	return Hint{}, false
}

// Has reports whether col is a schema column.
func (s TableSchema) Has(col string) bool {
	_, ok := s.Hint(col)
	return ok
}

// Names returns column names in order.
func (s TableSchema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Ident makes a SQL identifier out of a source name: hyphens become
// underscores. Case is preserved.
func Ident(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}

// TableNameFromFile derives a table name from a CSV file name by dropping the
// directory, a "_clean.csv" or ".csv" suffix, and turning hyphens into
// underscores.
func TableNameFromFile(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	switch {
	case strings.HasSuffix(base, "_clean.csv"):
		base = strings.TrimSuffix(base, "_clean.csv")
	case strings.HasSuffix(base, ".csv"):
		base = strings.TrimSuffix(base, ".csv")
	}
	return Ident(base)
}
