// Command sqlgen turns cleaned CSV exports into one <table>_complete.sql
// artifact per table: the declared or inferred CREATE TABLE followed by
// batched INSERT statements.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"transitsql/internal/config"
	"transitsql/internal/metrics/backends"
	"transitsql/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 when every table was generated or
// skipped, 1 on failures, drift in --check mode or invalid configuration,
// 2 on usage errors.
func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("sqlgen", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	check := fs.Bool("check", false, "diff generated artifacts against the files on disk instead of writing them")
	validate := fs.Bool("validate", false, "validate the configuration and exit")
	verbose := fs.BoolP("verbose", "v", false, "log every table")

	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if err != nil {
		fmt.Fprintf(stderr, "sqlgen: %v\n", err)
		return 2
	}
	log.SetOutput(stderr)
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "sqlgen: configuration is invalid")
		return 1
	}
	if *validate {
		fmt.Fprintln(stdout, "configuration is valid")
		return 0
	}

	flush, err := backends.Install(cfg.Metrics)
	if err != nil {
		fmt.Fprintf(stderr, "sqlgen: %v\n", err)
		return 1
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := pipeline.Generate(ctx, cfg, pipeline.GenerateOptions{Check: *check})
	if err != nil {
		fmt.Fprintf(stderr, "sqlgen: %v\n", err)
		return 1
	}
	rep.Log("sqlgen")

	for _, t := range rep.Tables {
		switch t.Status {
		case pipeline.StatusOK:
			if *check {
				fmt.Fprintf(stdout, "[OK] %s: up to date\n", t.Table)
			} else {
				fmt.Fprintf(stdout, "[OK] %s: %d rows -> %s\n", t.Table, t.Rows, t.Output)
			}
		case pipeline.StatusSkipped:
			fmt.Fprintf(stdout, "[--] %s: skipped (%s)\n", t.Table, t.Reason)
		case pipeline.StatusDrift:
			fmt.Fprintf(stdout, "[!!] %s: out of date\n%s", t.Table, t.Diff)
		case pipeline.StatusFailed:
			fmt.Fprintf(stdout, "[!!] %s: %v\n", t.Table, t.Err)
		}
	}
	fmt.Fprintf(stdout, "%d ok, %d skipped, %d failed, %d out of date\n",
		rep.Count(pipeline.StatusOK), rep.Count(pipeline.StatusSkipped),
		rep.Count(pipeline.StatusFailed), rep.Count(pipeline.StatusDrift))

	if !rep.OK() {
		return 1
	}
	return 0
}
