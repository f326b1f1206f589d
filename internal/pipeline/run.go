package pipeline

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"transitsql/internal/config"
	"transitsql/internal/schema"
)

// tableFunc processes one discovered table whose name (and declaration, if
// any) is already known.
type tableFunc func(ctx context.Context, rep *Report, j Job, name string, decl *schema.Declared) TableResult

// run discovers the jobs for cfg and hands each one that passes --only to
// fn, at most cfg.Workers at a time. A failing table never stops the others;
// only discovery errors and cancellation are returned.
func run(ctx context.Context, cfg *config.Config, stage string, fn tableFunc) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), Started: time.Now()}
	defer func() { rep.Duration = time.Since(rep.Started) }()

	jobs, err := Discover(cfg)
	if err != nil {
		return rep, err
	}
	log.Printf("%s: run=%s jobs=%d workers=%d", stage, rep.RunID, len(jobs), cfg.Workers)

	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for _, j := range jobs {
		if j.Skip != "" {
			if cfg.Wants(j.Name()) {
				log.Printf("warn: %s: run=%s file=%s skipped: %s", stage, rep.RunID, j.Path, j.Skip)
				rep.add(TableResult{Table: j.Name(), Source: j.Path, Status: StatusSkipped, Reason: j.Skip})
			}
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			name, decl, err := declaredName(j)
			if err != nil {
				rep.add(TableResult{Table: j.Name(), Source: j.Path, Status: StatusFailed, Err: err})
				return nil
			}
			if !cfg.Wants(name) {
				return nil
			}
			rep.add(fn(ctx, rep, j, name, decl))
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(rep.Tables, func(a, b int) bool { return rep.Tables[a].Table < rep.Tables[b].Table })
	return rep, ctx.Err()
}
