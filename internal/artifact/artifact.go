// Package artifact assembles the per-table SQL file: a header block, the
// CREATE TABLE section and the batched INSERT section.
package artifact

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"transitsql/internal/dml"
)

// Suffix is appended to the table name to form the artifact file name.
const Suffix = "_complete.sql"

const (
	banner  = "-- ============================================\n"
	divider = "-- ==================================================\n"
)

// Artifact is everything rendered for one table.
type Artifact struct {
	Table  string
	Source string // input file the rows came from
	DDL    string
	Rows   *dml.Emitter
}

// FileName is "<table>_complete.sql".
func (a Artifact) FileName() string { return a.Table + Suffix }

// WriteTo renders the artifact into w:
//
//	-- ============================================
//	-- COMPLETE SQL: stops
//	-- CREATE TABLE and INSERT statements
//	-- ============================================
//
//	-- SCHEMA (CREATE TABLE)
//	-- ==================================================
//	CREATE TABLE IF NOT EXISTS stops (...);
//
//	-- DADOS (INSERT statements)
//	-- ==================================================
//	-- Generated from stops_clean.csv
//	-- Table: stops
//	-- Records: 1
//	--
//
//	INSERT INTO stops (...) VALUES
//	    (...);
func (a Artifact) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	fmt.Fprint(cw, banner)
	fmt.Fprintf(cw, "-- COMPLETE SQL: %s\n", a.Table)
	fmt.Fprint(cw, "-- CREATE TABLE and INSERT statements\n")
	fmt.Fprint(cw, banner, "\n")

	fmt.Fprint(cw, "-- SCHEMA (CREATE TABLE)\n", divider)
	fmt.Fprint(cw, strings.TrimSpace(a.DDL), "\n\n")

	fmt.Fprint(cw, "-- DADOS (INSERT statements)\n", divider)
	if a.Source != "" {
		fmt.Fprintf(cw, "-- Generated from %s\n", filepath.Base(a.Source))
	}
	rows := 0
	if a.Rows != nil {
		rows = a.Rows.Rows()
	}
	fmt.Fprintf(cw, "-- Table: %s\n-- Records: %d\n--\n\n", a.Table, rows)
	if cw.err == nil && a.Rows != nil {
		_, _ = a.Rows.WriteTo(cw)
	}
	return cw.n, cw.err
}

// Bytes renders the artifact in memory.
func (a Artifact) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = a.WriteTo(&buf)
	return buf.Bytes()
}

// Write renders a into dir/<table>_complete.sql. The file is written to a
// temp file in dir and renamed into place, so readers never see a partial
// artifact.
func Write(dir string, a Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, a.FileName())
	tmp, err := os.CreateTemp(dir, "."+a.Table+"-*")
	if err != nil {
		return "", fmt.Errorf("artifact: %w", err)
	}
	tmpName := tmp.Name()

	_, writeErr := a.WriteTo(tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("artifact: write %s: %w", a.Table, writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("artifact: close %s: %w", a.Table, closeErr)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("artifact: rename %s: %w", path, err)
	}
	return path, nil
}

// Diff compares want with the file at path and returns a unified diff, or ""
// when they match. A missing file diffs against empty content.
func Diff(path string, want []byte) (string, error) {
	have, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("artifact: read %s: %w", path, err)
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), string(have), string(want))
	if len(edits) == 0 {
		return "", nil
	}
	name := filepath.Base(path)
	return fmt.Sprint(gotextdiff.ToUnified("disk/"+name, "generated/"+name, string(have), edits)), nil
}

type countWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
