// Package csv parses delimited text exports into header-ordered rows or
// records. Malformed rows are skipped and counted instead of failing the
// whole file.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"

	"transitsql/internal/parser"
	"transitsql/internal/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Encoding names the source character set (see Decoder). Empty means UTF-8.
	Encoding string

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap renames source header names after normalization.
	HeaderMap map[string]string

	// LogLimit caps the number of skipped-row log lines. Zero means 400.
	LogLimit int
}

// Table is a parsed file: the header and every well-formed row, in order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

var _ parser.Parser = (*Parser)(nil)

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ReadTable consumes r and returns the header plus rows. Rows whose width
// differs from the header, or that encoding/csv rejects, are skipped and
// counted.
func (p *Parser) ReadTable(r io.Reader) (Table, int, error) {
	dec, err := Decoder(r, p.opt.Encoding)
	if err != nil {
		return Table{}, 0, err
	}
	cr := csv.NewReader(dec)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return Table{}, 0, nil
	}
	if err != nil {
		return Table{}, 0, fmt.Errorf("read csv header: %w", err)
	}
	t := Table{Header: normalizeHeaders(h, p.opt)}

	limit := p.opt.LogLimit
	if limit <= 0 {
		limit = 400
	}
	var skipped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < limit {
				log.Printf("csv: skipping line %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(t.Header) {
			if skipped < limit {
				log.Printf("csv: skipping line %d: incorrect number of fields (expected %d, got %d)", line, len(t.Header), len(row))
			}
			skipped++
			continue
		}
		out := make([]string, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			out[i] = val
		}
		t.Rows = append(t.Rows, out)
	}
	return t, skipped, nil
}

// Parse implements parser.Parser. Empty cells become nil.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	t, skipped, err := p.ReadTable(r)
	if err != nil {
		return nil, skipped, err
	}
	return t.Records(), skipped, nil
}

// Records converts the rows to records keyed by header name. Empty cells
// become nil.
func (t Table) Records() []records.Record {
	out := make([]records.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(records.Record, len(row))
		for i, val := range row {
			rec[t.Header[i]] = emptyToNil(val)
		}
		out = append(out, rec)
	}
	return out
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders trims each name, strips a UTF-8 BOM from the first cell,
// applies Unicode NFC so composed and decomposed accents compare equal, and
// then applies HeaderMap.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		c = norm.NFC.String(c)
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}
