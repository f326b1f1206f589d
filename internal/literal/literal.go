// Package literal renders dataset cells as SQL literals and normalizes GTFS
// clock times. Nothing here fails: any cell yields some valid literal.
package literal

import (
	"math"
	"strconv"
	"strings"
	"time"

	"transitsql/internal/dataset"
	"transitsql/internal/schema"
)

// Null is the SQL null literal.
const Null = "NULL"

// maxIntID bounds numeric ids emitted unquoted into text columns; larger
// values stay quoted so they survive a 32-bit INTEGER column.
const maxIntID = 2147483647

// Normalize renders v as a SQL literal for a column with the given hint.
//
// Precedence:
//
//	missing                          -> NULL
//	phone/email/url column           -> quoted string
//	TEXT/VARCHAR hint                -> bare number for numeric *id* columns, else the quoted source text
//	bool                             -> TRUE / FALSE
//	int / float                      -> plain number
//	time (DATE / TIME / other hint)  -> 'YYYY-MM-DD' / 'HH:MM:SS' / 'YYYY-MM-DD HH:MM:SS'
//	anything else                    -> quoted string
func Normalize(v dataset.Value, hint schema.Hint, column string) string {
	if v.IsMissing() {
		return Null
	}
	if schema.IsContactColumn(column) {
		return Quote(v.Source())
	}
	if hint.Textual() {
		if v.IsNumeric() && isIDColumn(column) && v.Number() < maxIntID && !leadingZero(v.Raw) {
			return number(v)
		}
		return Quote(v.Source())
	}
	switch v.Kind {
	case dataset.KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case dataset.KindInt, dataset.KindFloat:
		if v.IsNumeric() {
			return number(v)
		}
	case dataset.KindTime:
		switch hint.Kind {
		case schema.HintDate:
			return Quote(v.Time.Format("2006-01-02"))
		case schema.HintTime:
			return Quote(v.Time.Format("15:04:05"))
		default:
			return Quote(v.Time.Format(dataset.TimestampLayout))
		}
	}
	return Quote(v.Text())
}

// Quote wraps s in single quotes, doubling embedded quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isIDColumn(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "id") && !strings.Contains(n, "phone")
}

// leadingZero reports integer text such as "007" whose zeros a bare number
// would drop.
func leadingZero(raw string) bool {
	s := strings.TrimLeft(raw, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

func number(v dataset.Value) string {
	if v.Kind == dataset.KindInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

var dateLayouts = []string{"2006-01-02", "20060102", "02/01/2006"}

// Coerce converts a textual cell to the native kind a non-textual hint
// expects. It returns false when the text cannot be read as that kind.
// Missing cells, already-native cells and textual hints pass through.
func Coerce(v dataset.Value, hint schema.Hint) (dataset.Value, bool) {
	if v.IsMissing() || v.Kind != dataset.KindString || hint.Textual() || hint.IsZero() {
		return v, true
	}
	s := strings.TrimSpace(v.Str)
	switch hint.Kind {
	case schema.HintInteger:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return dataset.Int(i), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return dataset.Int(int64(f)), true
		}
	case schema.HintDecimal:
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return dataset.Float(f), true
		}
	case schema.HintBoolean:
		switch strings.ToLower(s) {
		case "true", "t", "1", "yes", "y", "sim", "s":
			return dataset.Bool(true), true
		case "false", "f", "0", "no", "n", "nao", "não":
			return dataset.Bool(false), true
		}
	case schema.HintDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dataset.Time(t), true
			}
		}
		if t, ok := dataset.ParseTimestamp(s); ok {
			return dataset.Time(t), true
		}
	case schema.HintTimestamp:
		if t, ok := dataset.ParseTimestamp(s); ok {
			return dataset.Time(t), true
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dataset.Time(t), true
			}
		}
	case schema.HintTime:
		if hms, ok := NormalizeTimeHHMMSS(s); ok {
			return dataset.String(hms), true
		}
	}
	return dataset.Missing(), false
}
