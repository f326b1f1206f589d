package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"transitsql/internal/artifact"
	"transitsql/internal/config"
	"transitsql/internal/dataset"
	"transitsql/internal/ddl"
	"transitsql/internal/dml"
	"transitsql/internal/metrics"
	"transitsql/internal/schema"
)

// malformedLogLimit caps per-table malformed-cell warnings.
const malformedLogLimit = 20

// GenerateOptions tunes Generate.
type GenerateOptions struct {
	// Check renders every artifact and diffs it against the file on disk
	// instead of writing. Differences are reported as StatusDrift.
	Check bool
	// Rules overrides schema.DefaultRules().
	Rules *schema.Rules
}

// Generate writes one <table>_complete.sql artifact per discovered table
// into cfg.OutDir.
func Generate(ctx context.Context, cfg *config.Config, opts GenerateOptions) (*Report, error) {
	rules := schema.DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	return run(ctx, cfg, "sqlgen", func(ctx context.Context, rep *Report, j Job, name string, decl *schema.Declared) TableResult {
		return generateTable(ctx, cfg, rules, opts, rep.RunID, j, name, decl)
	})
}

func generateTable(ctx context.Context, cfg *config.Config, rules schema.Rules, opts GenerateOptions, runID string, j Job, name string, decl *schema.Declared) (tr TableResult) {
	tr = TableResult{Table: name, Source: j.Path}
	done := metrics.Timer(name, "generate")
	defer func() { done(tr.Err) }()

	t, err := prepare(ctx, cfg, rules, j, name, decl)
	if errors.Is(err, dataset.ErrEmptyDataset) {
		log.Printf("warn: sqlgen: run=%s table=%s skipped: empty dataset", runID, name)
		tr.Status, tr.Reason = StatusSkipped, "empty dataset"
		return tr
	}
	if err != nil {
		tr.Status, tr.Err = StatusFailed, err
		return tr
	}

	stmt := ddl.Synthesize(name, t.ts)
	if d, ok := t.ts.Declared(); ok {
		stmt = d.Text
	}

	em := dml.New(name, t.ds, t.ts,
		dml.WithBatchSize(cfg.BatchSize),
		dml.WithMalformed(func(m dml.Malformed) {
			if tr.Malformed < malformedLogLimit {
				log.Printf("warn: sqlgen: table=%s row=%d column=%s value=%q is not %s; NULL emitted",
					name, m.Row+1, m.Column, m.Raw, m.Hint)
			}
			tr.Malformed++
		}),
	)
	a := artifact.Artifact{Table: name, Source: j.Path, DDL: stmt, Rows: em}

	if opts.Check {
		path := filepath.Join(cfg.OutDir, a.FileName())
		diff, err := artifact.Diff(path, a.Bytes())
		if err != nil {
			tr.Status, tr.Err = StatusFailed, err
			return tr
		}
		tr.Output, tr.Diff, tr.Status = path, diff, StatusOK
		if diff != "" {
			tr.Status = StatusDrift
		}
	} else {
		path, err := artifact.Write(cfg.OutDir, a)
		if err != nil {
			tr.Status, tr.Err = StatusFailed, fmt.Errorf("pipeline: %w", err)
			return tr
		}
		tr.Output, tr.Status = path, StatusOK
	}

	tr.Rows, tr.Statements = em.Rows(), em.Batches()
	metrics.RecordRows(name, metrics.KindRead, int64(t.ds.Len()))
	metrics.RecordRows(name, metrics.KindSkipped, int64(t.skipped))
	metrics.RecordRows(name, metrics.KindEmitted, int64(tr.Rows))
	metrics.RecordRows(name, metrics.KindMalformed, int64(tr.Malformed))
	metrics.RecordStatements(name, int64(tr.Statements))

	log.Printf("sqlgen: run=%s table=%s source=%s rows=%d statements=%d malformed=%d skipped_lines=%d status=%s",
		runID, name, filepath.Base(j.Path), tr.Rows, tr.Statements, tr.Malformed, t.skipped, tr.Status)
	return tr
}
