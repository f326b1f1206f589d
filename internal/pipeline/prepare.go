package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"

	"transitsql/internal/config"
	"transitsql/internal/dataset"
	"transitsql/internal/datasource/file"
	pcsv "transitsql/internal/parser/csv"
	"transitsql/internal/schema"
)

// table is a job after its schema and rows have been read.
type table struct {
	job     Job
	name    string
	ds      *dataset.Dataset
	ts      schema.TableSchema
	skipped int // malformed CSV lines
}

// declaredName reads the table name of a declared job without touching the
// CSV, so --only can filter before any heavy work.
func declaredName(j Job) (string, *schema.Declared, error) {
	if j.Schema == "" {
		return j.Name(), nil, nil
	}
	text, err := os.ReadFile(j.Schema)
	if err != nil {
		return "", nil, fmt.Errorf("read schema: %w", err)
	}
	d, err := schema.ParseDeclared(string(text))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", j.Schema, err)
	}
	return d.Table, d, nil
}

// prepare reads the job's CSV into a dataset and resolves its schema. An
// empty file yields dataset.ErrEmptyDataset.
func prepare(ctx context.Context, cfg *config.Config, rules schema.Rules, j Job, name string, decl *schema.Declared) (*table, error) {
	rc, err := file.NewLocal(j.Path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	p := pcsv.NewParser(pcsv.Options{
		Comma:     cfg.CSV.Comma,
		Encoding:  cfg.CSV.Encoding,
		TrimSpace: cfg.CSV.TrimSpace,
		HeaderMap: cfg.CSV.HeaderMap,
	})
	raw, skipped, err := p.ReadTable(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", j.Path, err)
	}
	header, rows := dedupeColumns(name, raw.Header, raw.Rows)

	ds, err := dataset.FromRows(name, header, rows, cfg.NAValues)
	if err != nil {
		return nil, err
	}
	if ds.Empty() {
		return nil, fmt.Errorf("%s: %w", j.Path, dataset.ErrEmptyDataset)
	}

	var src schema.Source = schema.Inferred{}
	if decl != nil {
		src = decl
	}
	ts, err := schema.Resolve(name, ds, src, rules)
	if err != nil {
		return nil, err
	}
	return &table{job: j, name: name, ds: ds, ts: ts, skipped: skipped}, nil
}

// dedupeColumns turns hyphens in header names into underscores and keeps
// only the first of any repeated name, dropping the matching cells.
func dedupeColumns(table string, header []string, rows [][]string) ([]string, [][]string) {
	keep := make([]int, 0, len(header))
	names := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		n := schema.Ident(h)
		if seen[n] {
			log.Printf("warn: %s: duplicate column %q dropped", table, n)
			continue
		}
		seen[n] = true
		keep = append(keep, i)
		names = append(names, n)
	}
	if len(keep) == len(header) {
		return names, rows
	}
	out := make([][]string, len(rows))
	for r, row := range rows {
		nr := make([]string, len(keep))
		for k, i := range keep {
			nr[k] = row[i]
		}
		out[r] = nr
	}
	return names, out
}
