package schema

import (
	"fmt"
	"strings"

	"transitsql/internal/dataset"
)

// Resolve builds the TableSchema for ds. A *Declared source wins outright;
// otherwise hints are inferred from the column kinds and rules are applied.
// An empty dataset resolves to an empty schema without error.
func Resolve(table string, ds *dataset.Dataset, src Source, rules Rules) (TableSchema, error) {
	if d, ok := src.(*Declared); ok && d != nil {
		ts := d.Schema()
		if table != "" {
			ts.Table = table
		}
		return ts, nil
	}
	if strings.TrimSpace(table) == "" {
		return TableSchema{}, fmt.Errorf("%w: no table name", ErrMissingSchema)
	}
	ts := TableSchema{Table: table, Source: Inferred{}}
	if ds.Empty() {
		return ts, nil
	}

	for _, c := range ds.Columns() {
		if c.Name == CreatedAt {
			continue
		}
		hint := inferHint(c)
		for _, r := range rules.Columns {
			if r.Match(c.Name) {
				hint = r.Hint
			}
		}
		ts.Columns = append(ts.Columns, Column{Name: c.Name, Hint: hint})
	}
	ts.Key = resolveKey(table, ts, rules)
	return ts, nil
}

func inferHint(c dataset.Column) Hint {
	switch c.Kind {
	case dataset.KindInt:
		return Integer()
	case dataset.KindFloat:
		return DecimalOf(10, 2)
	case dataset.KindBool:
		return Boolean()
	case dataset.KindTime:
		return Timestamp()
	case dataset.KindString:
		if c.MaxLen > VarcharLimit {
			return Text()
		}
		return Varchar(VarcharLimit)
	default:
		return Varchar(VarcharLimit)
	}
}

// resolveKey applies the first matching entity rule. A matching rule whose
// key columns are not all present yields no key at all.
func resolveKey(table string, ts TableSchema, rules Rules) KeySpec {
	for _, r := range rules.Entities {
		if !r.Match(table) {
			continue
		}
		for _, c := range r.Key {
			if !ts.Has(c) {
				return NoKey()
			}
		}
		return Composite(r.Key...)
	}
	if len(ts.Columns) > 0 && strings.Contains(strings.ToLower(ts.Columns[0].Name), "id") {
		return Single(ts.Columns[0].Name)
	}
	return NoKey()
}
