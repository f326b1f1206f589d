// Package records holds the loosely-typed row shape passed between the CSV
// parser and the transformer chain.
package records

// Record is a single row keyed by column name. Values are usually strings as
// read from the source; transformers may replace them with nil for missing.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value of field as a string. Missing and nil fields
// yield "".
func (r Record) String(field string) string {
	switch t := r[field].(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return ""
	}
}
