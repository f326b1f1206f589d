// Package builtin contains the reusable transformers the GTFS cleaner chains
// together.
package builtin

import (
	"strings"

	"transitsql/internal/records"
)

const nbspace = "\u00a0"

// Normalize trims string values and turns no-break spaces (including the
// "Â" + NBSP mojibake left by a Latin-1 round trip) into plain spaces. With no
// Fields every string value is trimmed.
type Normalize struct {
	Fields []string
}

func (n Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		if len(n.Fields) == 0 {
			for k, v := range r {
				if s, ok := v.(string); ok {
					r[k] = clean(s)
				}
			}
			continue
		}
		for _, k := range n.Fields {
			if s, ok := r[k].(string); ok {
				r[k] = clean(s)
			}
		}
	}
	return in
}

func clean(s string) string {
	s = strings.ReplaceAll(s, "Â"+nbspace, " ")
	s = strings.ReplaceAll(s, nbspace, " ")
	return strings.TrimSpace(s)
}
