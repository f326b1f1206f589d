// Package dataset models a cleaned tabular input: ordered named columns, each
// with a native kind inferred over the whole column, and typed cells.
//
// A Dataset is immutable once built. Readers (the schema resolver and the
// INSERT emitter) may share one across goroutines.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDataset reports a dataset with no rows or no columns.
var ErrEmptyDataset = errors.New("dataset: empty")

// Column is a named, typed column.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value

	// MaxLen is the longest textual representation among non-missing cells,
	// counted in runes.
	MaxLen int
}

// Dataset is an ordered collection of equally long columns.
type Dataset struct {
	name  string
	cols  []Column
	index map[string]int
	rows  int
}

// New validates cols and builds a Dataset. Column names must be unique and
// every column must have the same number of values.
func New(name string, cols []Column) (*Dataset, error) {
	d := &Dataset{name: name, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("dataset: %s: column %d has empty name", name, i)
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("dataset: %s: duplicate column %q", name, c.Name)
		}
		if i == 0 {
			d.rows = len(c.Values)
		} else if len(c.Values) != d.rows {
			return nil, fmt.Errorf("dataset: %s: column %q has %d values, want %d", name, c.Name, len(c.Values), d.rows)
		}
		if c.MaxLen == 0 {
			c.MaxLen = maxLen(c.Values)
		}
		d.index[c.Name] = i
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// Name returns the source name (usually the file base name).
func (d *Dataset) Name() string { return d.name }

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Empty reports whether the dataset has no rows or no columns.
func (d *Dataset) Empty() bool { return d == nil || d.rows == 0 || len(d.cols) == 0 }

// Columns returns the columns in source order. Callers must not modify the
// returned Values slices.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Names returns column names in source order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by exact name.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.cols[i], true
}

// Has reports whether the dataset carries a column with the given name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Cell returns the value at (row, column name). Unknown columns yield Missing.
func (d *Dataset) Cell(row int, name string) Value {
	i, ok := d.index[name]
	if !ok || row < 0 || row >= d.rows {
		return Missing()
	}
	return d.cols[i].Values[row]
}

func maxLen(vals []Value) int {
	n := 0
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		if l := len([]rune(v.Source())); l > n {
			n = l
		}
	}
	return n
}
