// Package parser defines the contract shared by input parsers.
package parser

import (
	"io"

	"transitsql/internal/records"
)

// Parser reads r into records and reports how many rows it skipped.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
