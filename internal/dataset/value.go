package dataset

import (
	"math"
	"strconv"
	"time"
)

// Kind is the native type of a cell or of a whole column.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "missing"
	}
}

// TimestampLayout is the canonical text form of KindTime values.
const TimestampLayout = "2006-01-02 15:04:05"

// Value is a single typed cell. Only the field matching Kind is meaningful.
// Raw is the cell text as read, kept so textual columns can be rendered
// without going through the inferred kind.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	Str   string
	Raw   string
}

func Missing() Value         { return Value{} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Int(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Time(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// IsMissing reports whether v is the null sentinel. Empty strings and NaN
// floats count as missing.
func (v Value) IsMissing() bool {
	switch v.Kind {
	case KindMissing:
		return true
	case KindString:
		return v.Str == ""
	case KindFloat:
		return math.IsNaN(v.Float)
	}
	return false
}

// IsNumeric reports whether v holds a finite int or float.
func (v Value) IsNumeric() bool {
	switch v.Kind {
	case KindInt:
		return true
	case KindFloat:
		return !math.IsNaN(v.Float) && !math.IsInf(v.Float, 0)
	}
	return false
}

// Number returns the numeric value of v as float64.
func (v Value) Number() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// Text returns the plain textual form of v. Missing values yield "".
// Floats never use exponent notation.
func (v Value) Text() string {
	if v.IsMissing() {
		return ""
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindTime:
		return v.Time.Format(TimestampLayout)
	default:
		return v.Str
	}
}

// Source returns the cell text as it was read, or Text when v was built
// without one. Missing values yield "".
func (v Value) Source() string {
	if v.IsMissing() {
		return ""
	}
	if v.Raw != "" {
		return v.Raw
	}
	return v.Text()
}

// Any converts v to a driver-friendly Go value: nil, string, int64, float64,
// bool or time.Time.
func (v Value) Any() any {
	if v.IsMissing() {
		return nil
	}
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindTime:
		return v.Time
	default:
		return v.Str
	}
}
