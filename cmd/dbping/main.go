// Command dbping checks that the configured database is reachable and
// prints what it is connected to.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"transitsql/internal/config"
	"transitsql/internal/storage"

	_ "transitsql/internal/storage/all"
)

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("dbping", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := fs.Duration("timeout", 10*time.Second, "connect and ping timeout")

	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if err != nil {
		fmt.Fprintf(stderr, "dbping: %v\n", err)
		return 2
	}
	log.SetOutput(stderr)

	issues := config.ValidateDB(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.DB.Driver, DSN: cfg.DB.ResolvedDSN()})
	if err != nil {
		fmt.Fprintf(stderr, "dbping: connect: %v\n", err)
		return 1
	}
	defer repo.Close()

	info, err := repo.Ping(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "dbping: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "[OK] connected to %s in %s\n", cfg.DB.Driver, time.Since(start).Truncate(time.Millisecond))
	fmt.Fprintf(stdout, "version:  %s\n", info.Version)
	fmt.Fprintf(stdout, "database: %s\n", info.Database)
	fmt.Fprintf(stdout, "user:     %s\n", info.User)
	return 0
}
