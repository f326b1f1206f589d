package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"transitsql/internal/records"
)

// DeDup collapses records sharing the same business key, e.g. stop_id or
// (trip_id, stop_sequence). Policy picks the survivor:
//
//   - "keep-first": the earliest occurrence (default)
//   - "keep-last":  the latest occurrence
//
// Survivors keep their input order. Records missing a key field pass through
// after the keyed ones. Keys are compared by their 128-bit xxh3 digest, so
// memory stays flat for wide composite keys.
type DeDup struct {
	Keys   []string
	Policy string
}

func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}
	last := strings.EqualFold(strings.TrimSpace(d.Policy), "keep-last")

	winner := make(map[xxh3.Uint128]int, len(in))
	var loose []int
	var b strings.Builder
	for i, r := range in {
		key, ok := d.keyOf(&b, r)
		if !ok {
			loose = append(loose, i)
			continue
		}
		if _, seen := winner[key]; !seen || last {
			winner[key] = i
		}
	}

	idx := make([]int, 0, len(winner))
	for _, i := range winner {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]records.Record, 0, len(idx)+len(loose))
	for _, i := range idx {
		out = append(out, in[i])
	}
	for _, i := range loose {
		out = append(out, in[i])
	}
	return out
}

func (d DeDup) keyOf(b *strings.Builder, r records.Record) (xxh3.Uint128, bool) {
	b.Reset()
	for i, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return xxh3.Uint128{}, false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch t := v.(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return xxh3.HashString128(b.String()), true
}
