// Package transformer defines record-slice transformations and a Chain that
// applies them in order.
package transformer

import "transitsql/internal/records"

// Transformer rewrites a batch of records. It may mutate records in place
// and may return a shorter slice.
type Transformer interface{ Apply([]records.Record) []records.Record }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order, feeding each the previous output.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
