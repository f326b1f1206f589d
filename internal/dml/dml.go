// Package dml renders a dataset as batched INSERT statements.
package dml

import (
	"io"
	"iter"
	"strings"

	"transitsql/internal/dataset"
	"transitsql/internal/literal"
	"transitsql/internal/schema"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 1000

// Malformed describes a cell that could not be read as its declared type.
// The cell is emitted as NULL.
type Malformed struct {
	Row    int // 0-based data row
	Column string
	Raw    string
	Hint   schema.Hint
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithBatchSize sets the rows per statement. Values below 1 keep the default.
func WithBatchSize(n int) Option {
	return func(e *Emitter) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithMalformed installs a callback for cells that fail coercion. It runs
// every time the rows are rendered.
func WithMalformed(fn func(Malformed)) Option {
	return func(e *Emitter) { e.onMalformed = fn }
}

type column struct {
	name   string
	ident  string
	hint   schema.Hint
	coerce bool
}

// Emitter renders INSERT statements for one table. It holds no iteration
// state, so Statements can be ranged over any number of times.
type Emitter struct {
	table       string
	ds          *dataset.Dataset
	cols        []column
	batchSize   int
	onMalformed func(Malformed)
}

// New prepares an Emitter for ds resolved as ts and written into table.
//
// Columns follow dataset order. created_at is always dropped. With a declared
// schema only columns the declaration knows are kept, plus a literal "id".
func New(table string, ds *dataset.Dataset, ts schema.TableSchema, opts ...Option) *Emitter {
	e := &Emitter{table: schema.Ident(table), ds: ds, batchSize: DefaultBatchSize}
	for _, o := range opts {
		o(e)
	}
	if ds.Empty() {
		return e
	}
	decl, declared := ts.Declared()
	for _, name := range ds.Names() {
		if name == schema.CreatedAt {
			continue
		}
		hint, ok := ts.Hint(name)
		if declared {
			if !ok {
				hint, ok = declaredHint(decl, name)
			}
			if !ok && name != "id" {
				continue
			}
		}
		e.cols = append(e.cols, column{
			name:   name,
			ident:  `"` + schema.Ident(name) + `"`,
			hint:   hint,
			coerce: declared && !hint.Textual() && !hint.IsZero(),
		})
	}
	return e
}

func declaredHint(d *schema.Declared, name string) (schema.Hint, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c.Hint, true
		}
	}
	return schema.Hint{}, false
}

// Columns returns the emitted column names in order.
func (e *Emitter) Columns() []string {
	out := make([]string, len(e.cols))
	for i, c := range e.cols {
		out[i] = c.name
	}
	return out
}

// Rows is the number of rows emitted, zero when no column survives.
func (e *Emitter) Rows() int {
	if len(e.cols) == 0 || e.ds.Empty() {
		return 0
	}
	return e.ds.Len()
}

// Batches is the number of statements Statements yields: ceil(Rows/batch).
func (e *Emitter) Batches() int {
	return (e.Rows() + e.batchSize - 1) / e.batchSize
}

// Statements yields one statement per batch:
//
//	INSERT INTO stops ("stop_id", "stop_name") VALUES
//	    ('S1', 'Main St'),
//	    ('S2', 'Side St');
func (e *Emitter) Statements() iter.Seq[string] {
	return func(yield func(string) bool) {
		var b strings.Builder
		for start := 0; start < e.Rows(); start += e.batchSize {
			b.Reset()
			e.writeBatch(&b, start, min(start+e.batchSize, e.Rows()))
			if !yield(b.String()) {
				return
			}
		}
	}
}

// WriteTo writes every statement to w, each followed by a blank line.
func (e *Emitter) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for stmt := range e.Statements() {
		n, err := io.WriteString(w, stmt+"\n\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Row renders one data row as a parenthesised tuple of literals.
func (e *Emitter) Row(i int) string {
	var b strings.Builder
	e.writeRow(&b, i)
	return b.String()
}

func (e *Emitter) writeBatch(b *strings.Builder, start, end int) {
	b.WriteString("INSERT INTO ")
	b.WriteString(e.table)
	b.WriteString(" (")
	for i, c := range e.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.ident)
	}
	b.WriteString(") VALUES\n")
	for i := start; i < end; i++ {
		b.WriteString("    ")
		e.writeRow(b, i)
		if i < end-1 {
			b.WriteString(",\n")
		}
	}
	b.WriteString(";")
}

func (e *Emitter) writeRow(b *strings.Builder, row int) {
	b.WriteByte('(')
	for i, c := range e.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(literal.Normalize(e.cell(row, c), c.hint, c.name))
	}
	b.WriteByte(')')
}

func (e *Emitter) cell(row int, c column) dataset.Value {
	v := e.ds.Cell(row, c.name)
	if !c.coerce {
		return v
	}
	out, ok := literal.Coerce(v, c.hint)
	if ok {
		return out
	}
	if e.onMalformed != nil {
		e.onMalformed(Malformed{Row: row, Column: c.name, Raw: v.Source(), Hint: c.hint})
	}
	return dataset.Missing()
}
