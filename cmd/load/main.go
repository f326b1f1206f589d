// Command load creates missing tables and replaces their contents with the
// rows of the cleaned CSV exports, one transaction per table.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"transitsql/internal/config"
	"transitsql/internal/metrics/backends"
	"transitsql/internal/pipeline"
	"transitsql/internal/storage"

	// every driver the config may name
	_ "transitsql/internal/storage/all"
)

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("load", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	validate := fs.Bool("validate", false, "validate the configuration and exit")
	timeout := fs.Duration("timeout", 0, "abort the run after this long (0 = no limit)")

	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if err != nil {
		fmt.Fprintf(stderr, "load: %v\n", err)
		return 2
	}
	log.SetOutput(stderr)

	issues := append(config.Validate(cfg), config.ValidateDB(cfg)...)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "load: configuration is invalid")
		return 1
	}
	if *validate {
		fmt.Fprintln(stdout, "configuration is valid")
		return 0
	}

	flush, err := backends.Install(cfg.Metrics)
	if err != nil {
		fmt.Fprintf(stderr, "load: %v\n", err)
		return 1
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	repo, err := storage.New(ctx, storage.Config{Kind: cfg.DB.Driver, DSN: cfg.DB.ResolvedDSN()})
	if err != nil {
		fmt.Fprintf(stderr, "load: %v\n", err)
		return 1
	}
	defer repo.Close()

	start := time.Now()
	rep, err := pipeline.Load(ctx, cfg, repo, pipeline.LoadOptions{})
	if err != nil {
		fmt.Fprintf(stderr, "load: %v\n", err)
		return 1
	}
	rep.Log("load")

	var total int64
	for _, t := range rep.Tables {
		switch t.Status {
		case pipeline.StatusOK:
			total += t.Loaded
			fmt.Fprintf(stdout, "[OK] %s: %d rows\n", t.Table, t.Loaded)
		case pipeline.StatusSkipped:
			fmt.Fprintf(stdout, "[--] %s: skipped (%s)\n", t.Table, t.Reason)
		case pipeline.StatusFailed:
			fmt.Fprintf(stdout, "[!!] %s: %v\n", t.Table, t.Err)
		}
	}
	fmt.Fprintf(stdout, "%d rows into %d tables in %s (%d skipped, %d failed)\n",
		total, rep.Count(pipeline.StatusOK), time.Since(start).Truncate(time.Millisecond),
		rep.Count(pipeline.StatusSkipped), rep.Count(pipeline.StatusFailed))

	if !rep.OK() {
		return 1
	}
	return 0
}
