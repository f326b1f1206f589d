// Command cleangtfs standardises a raw GTFS feed: it trims and coerces every
// known file, drops rows missing their keys or duplicating an entity, and
// writes <name>_clean.csv into the first GTFS dir, where sqlgen and load
// pick them up.
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
	"transitsql/internal/gtfs"
	"transitsql/internal/metrics/backends"
	pcsv "transitsql/internal/parser/csv"
)

// DefaultRawDir holds the feed as downloaded.
const DefaultRawDir = "data/raw/gtfs"

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("cleangtfs", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	in := DefaultRawDir
	if v := getenv("GTFS_RAW_DIR"); v != "" {
		in = v
	}
	fs.StringVar(&in, "in", in, "directory of the raw GTFS .txt/.csv files")

	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if err != nil {
		fmt.Fprintf(stderr, "cleangtfs: %v\n", err)
		return 2
	}
	log.SetOutput(stderr)

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return 1
	}

	flush, err := backends.Install(cfg.Metrics)
	if err != nil {
		fmt.Fprintf(stderr, "cleangtfs: %v\n", err)
		return 1
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &gtfs.Cleaner{
		InDir:  in,
		OutDir: cfg.GTFSDirs[0],
		CSV: pcsv.Options{
			Comma:     cfg.CSV.Comma,
			Encoding:  cfg.CSV.Encoding,
			TrimSpace: cfg.CSV.TrimSpace,
		},
		Workers: cfg.Workers,
	}
	log.Printf("cleangtfs: in=%s out=%s", c.InDir, c.OutDir)
	results, err := c.Run(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "cleangtfs: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "=== SUMMARY ===")
	for _, line := range gtfs.Summary(results) {
		fmt.Fprintln(stdout, line)
	}
	if gtfs.Found(results) == 0 {
		fmt.Fprintf(stderr, "cleangtfs: %v in %s\n", gtfs.ErrNoInput, in)
		return 1
	}
	return 0
}
