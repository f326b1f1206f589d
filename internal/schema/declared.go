package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DeclaredColumn is one column line of a CREATE TABLE declaration.
type DeclaredColumn struct {
	Name       string
	RawType    string
	Hint       Hint
	PrimaryKey bool
}

// Declared is a parsed, hand-authored CREATE TABLE declaration. Text keeps
// the original statement so it can be passed through verbatim.
type Declared struct {
	Table    string
	Columns  []DeclaredColumn
	TableKey []string
	Text     string
}

var createTableRe = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([\w."]+)`)

var tableKeyRe = regexp.MustCompile(`(?i)^PRIMARY\s+KEY\s*\(([^)]*)\)`)

// ParseDeclared reads the first CREATE TABLE statement in text. The column
// list may span lines or sit on one line; elements are split on commas
// outside parentheses, and "--" comments are ignored. Table-level
// PRIMARY KEY (...) constraints fill TableKey; other table constraints are
// skipped.
func ParseDeclared(text string) (*Declared, error) {
	loc := createTableRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, fmt.Errorf("%w: no CREATE TABLE statement", ErrMissingSchema)
	}
	name := text[loc[2]:loc[3]]
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	d := &Declared{Table: strings.Trim(name, `"`), Text: strings.TrimSpace(text)}

	for _, elem := range columnList(stripComments(text[loc[1]:])) {
		line := strings.Join(strings.Fields(elem), " ")
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		if m := tableKeyRe.FindStringSubmatch(line); m != nil {
			for _, c := range strings.Split(m[1], ",") {
				if c = strings.Trim(strings.TrimSpace(c), `"`); c != "" {
					d.TableKey = append(d.TableKey, c)
				}
			}
			continue
		}
		if isConstraintLine(upper) {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		col := DeclaredColumn{
			Name:       strings.Trim(parts[0], `"`),
			RawType:    strings.ToUpper(rawType(line, parts)),
			PrimaryKey: strings.Contains(upper, "PRIMARY KEY"),
		}
		col.Hint = CanonicalHint(col.RawType)
		d.Columns = append(d.Columns, col)
	}
	if len(d.Columns) == 0 {
		return nil, fmt.Errorf("%w: table %s declares no columns", ErrMissingSchema, d.Table)
	}
	return d, nil
}

func stripComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if j := strings.Index(l, "--"); j >= 0 {
			lines[i] = l[:j]
		}
	}
	return strings.Join(lines, "\n")
}

// columnList returns the comma-separated elements inside the first
// parenthesised group of body. Commas nested in type arguments such as
// DECIMAL(10, 8) or in quoted defaults do not split. An unclosed list runs
// to the end of body.
func columnList(body string) []string {
	open := strings.Index(body, "(")
	if open < 0 {
		return nil
	}
	var elems []string
	depth, start, quoted := 0, open+1, false
	for i := open + 1; i < len(body); i++ {
		if body[i] == '\'' {
			quoted = !quoted
		}
		if quoted {
			continue
		}
		switch body[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return append(elems, body[start:i])
			}
			depth--
		case ',':
			if depth == 0 {
				elems = append(elems, body[start:i])
				start = i + 1
			}
		}
	}
	return append(elems, body[start:])
}

// rawType is the type token after the column name, with any argument list
// kept whole even when it holds spaces, as in "DECIMAL(10, 8)".
func rawType(line string, parts []string) string {
	rest := strings.TrimSpace(line[strings.Index(line, parts[0])+len(parts[0]):])
	open := strings.Index(rest, "(")
	if open < 0 || strings.ContainsAny(rest[:open], " \t") {
		return parts[1]
	}
	if end := strings.Index(rest, ")"); end > open {
		return strings.Join(strings.Fields(rest[:end+1]), "")
	}
	return parts[1]
}

func isConstraintLine(upper string) bool {
	for _, p := range []string{"PRIMARY ", "CONSTRAINT ", "UNIQUE ", "UNIQUE(", "FOREIGN ", "CHECK ", "CHECK("} {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// CanonicalHint maps a declared SQL type onto the canonical hint set.
// Known base names are matched exactly; anything else falls back to
// substring checks, then TEXT.
func CanonicalHint(raw string) Hint {
	t := strings.ToUpper(strings.TrimSpace(raw))
	base := t
	if i := strings.Index(base, "("); i >= 0 {
		base = base[:i]
	}
	switch base {
	case "SMALLINT", "INT", "INTEGER", "BIGINT", "TINYINT", "INT2", "INT4", "INT8",
		"SERIAL", "BIGSERIAL", "SMALLSERIAL":
		return Integer()
	case "VARCHAR", "TEXT", "CHAR", "CHARACTER", "NVARCHAR", "NCHAR", "STRING", "UUID":
		return Text()
	case "DECIMAL", "NUMERIC", "FLOAT", "FLOAT4", "FLOAT8", "REAL", "DOUBLE", "MONEY":
		return Decimal()
	case "DATE":
		return Date()
	case "TIME", "TIMETZ":
		return Time()
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "DATETIME2":
		return Timestamp()
	case "BOOL", "BOOLEAN", "BIT":
		return Boolean()
	}
	switch {
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"):
		return Text()
	case strings.Contains(t, "TIMESTAMP"), strings.Contains(t, "DATETIME"):
		return Timestamp()
	case strings.Contains(t, "DATE"):
		return Date()
	case strings.Contains(t, "TIME"):
		return Time()
	case strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "FLOAT"), strings.Contains(t, "REAL"):
		return Decimal()
	case strings.Contains(t, "BOOL"):
		return Boolean()
	case strings.Contains(t, "INTEGER"):
		return Integer()
	}
	return Text()
}

var sizeArgsRe = regexp.MustCompile(`\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\)`)

// SizedHint is Hint refined with the length or precision written in RawType,
// so VARCHAR(50) keeps 50 and DECIMAL(5,2) keeps 5 and 2.
func (c DeclaredColumn) SizedHint() Hint {
	m := sizeArgsRe.FindStringSubmatch(c.RawType)
	if m == nil {
		return c.Hint
	}
	n, _ := strconv.Atoi(m[1])
	switch {
	case c.Hint.Kind == HintText && strings.Contains(strings.ToUpper(c.RawType), "CHAR"):
		return Varchar(n)
	case c.Hint.Kind == HintDecimal:
		scale, _ := strconv.Atoi(m[2])
		return DecimalOf(n, scale)
	}
	return c.Hint
}

// Serial reports whether the declared type auto-increments.
func (c DeclaredColumn) Serial() bool {
	return strings.Contains(c.RawType, "SERIAL")
}

// Schema converts the declaration into a TableSchema. Inline PRIMARY KEY
// columns and created_at are dropped from the columns; the key is taken
// from the table constraint, or else the inline key column. Key columns
// are always declared columns, but an inline key column is tracked only in
// Key, not in Columns. A table constraint naming an undeclared column
// yields no key.
func (d *Declared) Schema() TableSchema {
	ts := TableSchema{Table: d.Table, Source: d}
	var inline []string
	for _, c := range d.Columns {
		if c.PrimaryKey {
			inline = append(inline, c.Name)
			continue
		}
		if c.Name == CreatedAt {
			continue
		}
		ts.Columns = append(ts.Columns, Column{Name: c.Name, Hint: c.Hint})
	}
	switch {
	case len(d.TableKey) > 0:
		for _, c := range d.TableKey {
			if !d.declares(c) {
				return ts
			}
		}
		ts.Key = Composite(d.TableKey...)
	case len(inline) > 0:
		ts.Key = Single(inline[0])
	}
	return ts
}

func (d *Declared) declares(name string) bool {
	for _, c := range d.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
