package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultNAValues are the cell texts read as missing.
var DefaultNAValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "NULL", "null", "None", "<NA>", "#N/A"}

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04",
}

// FromRows builds a Dataset from a header and string rows, inferring one
// native kind per column the way a dataframe reader would:
//
//	all missing           -> KindMissing
//	all int64             -> KindInt
//	any int beyond int64  -> KindString
//	all int or float      -> KindFloat
//	all true/false        -> KindBool
//	all date+time         -> KindTime
//	anything else         -> KindString
//
// Date-only text stays KindString. Rows shorter than the header are padded
// with missing cells; longer rows are an error.
func FromRows(name string, header []string, rows [][]string, naValues []string) (*Dataset, error) {
	if naValues == nil {
		naValues = DefaultNAValues
	}
	na := make(map[string]struct{}, len(naValues))
	for _, s := range naValues {
		na[s] = struct{}{}
	}

	cols := make([]Column, len(header))
	raw := make([]string, len(rows))
	for j, h := range header {
		for i, r := range rows {
			if len(r) > len(header) {
				return nil, fmt.Errorf("dataset: %s: row %d has %d fields, header has %d", name, i+1, len(r), len(header))
			}
			if j < len(r) {
				raw[i] = r[j]
			} else {
				raw[i] = ""
			}
		}
		kind := InferKind(raw, na)
		vals := make([]Value, len(raw))
		for i, s := range raw {
			vals[i] = convert(s, kind, na)
		}
		cols[j] = Column{Name: h, Kind: kind, Values: vals}
	}
	return New(name, cols)
}

// InferKind returns the narrowest kind every non-missing value satisfies.
func InferKind(values []string, na map[string]struct{}) Kind {
	var nonEmpty []string
	for _, v := range values {
		if isNA(v, na) {
			continue
		}
		nonEmpty = append(nonEmpty, strings.TrimSpace(v))
	}
	switch {
	case len(nonEmpty) == 0:
		return KindMissing
	case allMatch(nonEmpty, isInt):
		return KindInt
	case anyMatch(nonEmpty, overflowsInt):
		return KindString
	case allMatch(nonEmpty, isNumber):
		return KindFloat
	case allMatch(nonEmpty, isBool):
		return KindBool
	case allMatch(nonEmpty, isTimestamp):
		return KindTime
	default:
		return KindString
	}
}

func convert(s string, kind Kind, na map[string]struct{}) Value {
	if isNA(s, na) {
		return Missing()
	}
	t := strings.TrimSpace(s)
	var v Value
	switch kind {
	case KindInt:
		i, _ := strconv.ParseInt(t, 10, 64)
		v = Int(i)
	case KindFloat:
		f, _ := strconv.ParseFloat(t, 64)
		v = Float(f)
	case KindBool:
		v = Bool(strings.EqualFold(t, "true"))
	case KindTime:
		ts, _ := ParseTimestamp(t)
		v = Time(ts)
	default:
		return String(s)
	}
	v.Raw = t
	return v
}

func isNA(s string, na map[string]struct{}) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, ok := na[s]
	return ok
}

func allMatch(vals []string, pred func(string) bool) bool {
	for _, v := range vals {
		if !pred(v) {
			return false
		}
	}
	return true
}

func anyMatch(vals []string, pred func(string) bool) bool {
	for _, v := range vals {
		if pred(v) {
			return true
		}
	}
	return false
}

// overflowsInt reports an integer literal too wide for int64. Such columns
// (long ticket or card numbers) are kept as text rather than rounded floats.
func overflowsInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return errors.Is(err, strconv.ErrRange)
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func isTimestamp(s string) bool {
	_, ok := ParseTimestamp(s)
	return ok
}

// ParseTimestamp parses s using the accepted date+time layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
