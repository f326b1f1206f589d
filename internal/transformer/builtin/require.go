package builtin

import "transitsql/internal/records"

// Require removes any record missing a value for one of Fields. OnDrop, when
// set, sees every removed record.
type Require struct {
	Fields []string
	OnDrop func(records.Record)
}

// Apply filters in place and returns the surviving records.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil || v == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		} else if r.OnDrop != nil {
			r.OnDrop(rec)
		}
	}
	return out
}
