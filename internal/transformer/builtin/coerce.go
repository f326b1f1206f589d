package builtin

import (
	"math"
	"strconv"
	"strings"
	"time"

	"transitsql/internal/literal"
	"transitsql/internal/records"
)

// Coerce kinds.
const (
	KindInt   = "int"   // integer; floats with no fraction are accepted
	KindFloat = "float" // float64
	KindDate  = "date"  // Layout in, "YYYY-MM-DD" out
	KindFlag  = "flag"  // integer clipped to 0..1, missing -> 0
	KindTime  = "time"  // GTFS clock time, hours may exceed 23
)

// Coerce converts string fields to the configured kinds. Values that cannot
// be read become nil. Defaults fill fields that are nil after coercion.
type Coerce struct {
	Types    map[string]string // field -> one of the Kind constants
	Layout   string            // date input layout; "20060102" when empty
	Defaults map[string]any
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	layout := c.Layout
	if layout == "" {
		layout = "20060102"
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok {
				continue
			}
			out := coerceOne(v, typ, layout)
			if out == nil {
				if d, ok := c.Defaults[field]; ok {
					out = d
				} else if typ == KindFlag {
					out = int64(0)
				}
			}
			r[field] = out
		}
	}
	return in
}

func coerceOne(v any, typ, layout string) any {
	switch t := v.(type) {
	case nil:
		return nil
	case int64, float64:
		if typ == KindFlag {
			return clip01(t)
		}
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		switch typ {
		case KindInt:
			if i, ok := parseInt(s); ok {
				return i
			}
		case KindFlag:
			if i, ok := parseInt(s); ok {
				return clip01(i)
			}
		case KindFloat:
			if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
				return f
			}
		case KindDate:
			if d, err := time.Parse(layout, s); err == nil {
				return d.Format("2006-01-02")
			}
		case KindTime:
			if n, ok := literal.NormalizeTimeHHMMSS(s); ok {
				return n
			}
		default:
			return s
		}
	}
	return nil
}

func parseInt(s string) (int64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

func clip01(v any) int64 {
	var f float64
	switch t := v.(type) {
	case int64:
		f = float64(t)
	case float64:
		f = t
	}
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return int64(f)
	}
}
