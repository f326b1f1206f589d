package schema

import "fmt"

// HintKind enumerates the SQL type families a column may resolve to.
type HintKind int

const (
	HintUnknown HintKind = iota
	HintInteger
	HintDecimal
	HintText
	HintVarchar
	HintDate
	HintTime
	HintTimestamp
	HintBoolean
)

// Hint is the resolved SQL type of a column. Length applies to VARCHAR;
// Precision and Scale apply to DECIMAL when Precision > 0.
type Hint struct {
	Kind      HintKind
	Length    int
	Precision int
	Scale     int
}

func Integer() Hint           { return Hint{Kind: HintInteger} }
func Text() Hint              { return Hint{Kind: HintText} }
func Varchar(n int) Hint      { return Hint{Kind: HintVarchar, Length: n} }
func Decimal() Hint           { return Hint{Kind: HintDecimal} }
func DecimalOf(p, s int) Hint { return Hint{Kind: HintDecimal, Precision: p, Scale: s} }
func Date() Hint              { return Hint{Kind: HintDate} }
func Time() Hint              { return Hint{Kind: HintTime} }
func Timestamp() Hint         { return Hint{Kind: HintTimestamp} }
func Boolean() Hint           { return Hint{Kind: HintBoolean} }

// IsZero reports whether h carries no type at all.
func (h Hint) IsZero() bool { return h.Kind == HintUnknown }

// Textual reports whether h is TEXT or VARCHAR.
func (h Hint) Textual() bool { return h.Kind == HintText || h.Kind == HintVarchar }

// String renders the SQL type text, e.g. "VARCHAR(255)" or "DECIMAL(10,8)".
func (h Hint) String() string {
	switch h.Kind {
	case HintInteger:
		return "INTEGER"
	case HintDecimal:
		if h.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", h.Precision, h.Scale)
		}
		return "DECIMAL"
	case HintText:
		return "TEXT"
	case HintVarchar:
		return fmt.Sprintf("VARCHAR(%d)", h.Length)
	case HintDate:
		return "DATE"
	case HintTime:
		return "TIME"
	case HintTimestamp:
		return "TIMESTAMP"
	case HintBoolean:
		return "BOOLEAN"
	default:
		return ""
	}
}

// Logical returns the loose logical type name understood by the dialect
// MapType helpers in the storage packages.
func (h Hint) Logical() string {
	switch h.Kind {
	case HintInteger:
		return "integer"
	case HintDecimal:
		return "decimal"
	case HintDate:
		return "date"
	case HintTime:
		return "time"
	case HintTimestamp:
		return "timestamp"
	case HintBoolean:
		return "boolean"
	default:
		return "text"
	}
}
