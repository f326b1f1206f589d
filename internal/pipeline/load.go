package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"transitsql/internal/config"
	"transitsql/internal/dataset"
	"transitsql/internal/literal"
	"transitsql/internal/metrics"
	"transitsql/internal/schema"
	"transitsql/internal/storage"
)

// LoadOptions tunes Load.
type LoadOptions struct {
	// Rules overrides schema.DefaultRules().
	Rules *schema.Rules
}

// Load creates each discovered table on repo when it does not exist yet and
// replaces its contents with the CSV rows. cfg.DB.Driver selects the DDL
// dialect. Each table is truncated and refilled inside one transaction, so
// a failure leaves its previous contents in place.
func Load(ctx context.Context, cfg *config.Config, repo storage.Repository, opts LoadOptions) (*Report, error) {
	rules := schema.DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	return run(ctx, cfg, "load", func(ctx context.Context, rep *Report, j Job, name string, decl *schema.Declared) TableResult {
		return loadTable(ctx, cfg, repo, rules, rep.RunID, j, name, decl)
	})
}

// loadColumn pairs a dataset column with the live column it fills.
type loadColumn struct {
	src  string
	dst  string
	hint schema.Hint
}

func loadTable(ctx context.Context, cfg *config.Config, repo storage.Repository, rules schema.Rules, runID string, j Job, name string, decl *schema.Declared) (tr TableResult) {
	tr = TableResult{Table: name, Source: j.Path}
	done := metrics.Timer(name, "load")
	defer func() { done(tr.Err) }()
	fail := func(err error) TableResult {
		tr.Status, tr.Err = StatusFailed, err
		return tr
	}

	t, err := prepare(ctx, cfg, rules, j, name, decl)
	if errors.Is(err, dataset.ErrEmptyDataset) {
		log.Printf("warn: load: run=%s table=%s skipped: empty dataset", runID, name)
		tr.Status, tr.Reason = StatusSkipped, "empty dataset"
		return tr
	}
	if err != nil {
		return fail(err)
	}

	live, err := repo.TableColumns(ctx, name)
	if err != nil {
		return fail(err)
	}
	if len(live) == 0 {
		if err := storage.EnsureTable(ctx, cfg.DB.Driver, repo, name, t.ts); err != nil {
			return fail(err)
		}
		if live, err = repo.TableColumns(ctx, name); err != nil {
			return fail(err)
		}
		log.Printf("load: run=%s table=%s created", runID, name)
	}
	cols := matchColumns(t, live)
	if len(cols) == 0 {
		return fail(fmt.Errorf("pipeline: %s: no columns in common (csv %v, table %v)", name, t.ds.Names(), live))
	}

	rows, dropped := buildRows(t, cols, &tr.Malformed)
	tr.Rows = len(rows)
	if len(rows) == 0 {
		log.Printf("warn: load: run=%s table=%s skipped: no rows after dropping empty ones", runID, name)
		tr.Status, tr.Reason = StatusSkipped, "no non-empty rows"
		return tr
	}

	dst := make([]string, len(cols))
	for i, c := range cols {
		dst[i] = c.dst
	}
	n, err := replaceRows(ctx, repo, name, dst, rows, cfg.BatchSize)
	tr.Loaded = n
	if err != nil {
		return fail(err)
	}

	tr.Status = StatusOK
	tr.Statements = (len(rows) + cfg.BatchSize - 1) / max(cfg.BatchSize, 1)
	metrics.RecordRows(name, metrics.KindRead, int64(t.ds.Len()))
	metrics.RecordRows(name, metrics.KindDropped, int64(dropped))
	metrics.RecordRows(name, metrics.KindMalformed, int64(tr.Malformed))
	metrics.RecordRows(name, metrics.KindLoaded, n)
	metrics.RecordStatements(name, int64(tr.Statements))
	log.Printf("load: run=%s table=%s rows=%d dropped_empty=%d malformed=%d columns=%s",
		runID, name, n, dropped, tr.Malformed, strings.Join(dst, ","))
	return tr
}

// replaceRows truncates table and copies rows in batches inside one session.
func replaceRows(ctx context.Context, repo storage.Repository, table string, columns []string, rows [][]any, batchSize int) (n int64, err error) {
	sess, err := repo.Begin(ctx, table)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rbErr := sess.Rollback(ctx); rbErr != nil {
				log.Printf("load: table=%s rollback: %v", table, rbErr)
			}
		}
	}()

	if err = sess.Truncate(ctx); err != nil {
		return 0, err
	}

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := make(chan []any, batchSize)
	go func() {
		defer close(ch)
		for _, r := range rows {
			select {
			case ch <- r:
			case <-feedCtx.Done():
				return
			}
		}
	}()

	n, err = storage.LoadBatches(ctx, table, columns, ch, batchSize, sess.CopyFrom)
	if err != nil {
		return n, err
	}
	if err = sess.Commit(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// matchColumns keeps the dataset columns that exist on the live table,
// matched case-insensitively since unquoted identifiers fold case. The
// audit column is never written.
func matchColumns(t *table, live []string) []loadColumn {
	byLower := make(map[string]string, len(live))
	for _, c := range live {
		if _, dup := byLower[strings.ToLower(c)]; !dup {
			byLower[strings.ToLower(c)] = c
		}
	}
	var out []loadColumn
	for _, name := range t.ds.Names() {
		if name == schema.CreatedAt {
			continue
		}
		dst, ok := byLower[strings.ToLower(name)]
		if !ok || strings.EqualFold(dst, schema.CreatedAt) {
			continue
		}
		out = append(out, loadColumn{src: name, dst: dst, hint: hintFor(t.ts, name)})
	}
	return out
}

func hintFor(ts schema.TableSchema, col string) schema.Hint {
	if h, ok := ts.Hint(col); ok {
		return h
	}
	if d, ok := ts.Declared(); ok {
		for _, c := range d.Columns {
			if c.Name == col {
				return c.Hint
			}
		}
	}
	return schema.Hint{}
}

// buildRows converts the dataset into driver values for cols, dropping rows
// whose selected cells are all missing.
func buildRows(t *table, cols []loadColumn, malformed *int) (rows [][]any, dropped int) {
	rows = make([][]any, 0, t.ds.Len())
	for i := 0; i < t.ds.Len(); i++ {
		row := make([]any, len(cols))
		empty := true
		for k, c := range cols {
			v := t.ds.Cell(i, c.src)
			if v.IsMissing() {
				continue
			}
			val, ok := driverValue(v, c.hint)
			if !ok {
				*malformed++
				continue
			}
			row[k] = val
			empty = false
		}
		if empty {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped
}

// driverValue converts v for a column of hint h. Textual columns get the
// source text; others are coerced, and false means the text did not parse.
func driverValue(v dataset.Value, h schema.Hint) (any, bool) {
	if h.Textual() {
		return v.Source(), true
	}
	if h.IsZero() {
		return v.Any(), true
	}
	c, ok := literal.Coerce(v, h)
	if !ok {
		return nil, false
	}
	if h.Kind == schema.HintInteger && c.Kind == dataset.KindFloat && c.Float == math.Trunc(c.Float) {
		return int64(c.Float), true
	}
	return c.Any(), true
}
