package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	pcsv "transitsql/internal/parser/csv"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one validation finding. Path is the flag or project-file key it
// refers to, e.g. "batch-size" or "schema_map[semaforos_clean.csv]".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error so a single Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints the settings every binary shares: layout, CSV reader,
// throughput and metrics. It never mutates c.
func Validate(c *Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.OutDir) == "" {
		add(SeverityError, "out", "output directory must not be empty")
	}
	if !isDir(c.ProcessedDir) {
		add(SeverityWarning, "processed-dir", "%q does not exist; no sensor files will be found", c.ProcessedDir)
	}
	if !isDir(c.SchemaDir) {
		add(SeverityWarning, "schema-dir", "%q does not exist; sensor files will be skipped for lack of a schema", c.SchemaDir)
	}
	for name, schemaFile := range c.SchemaMap {
		path := fmt.Sprintf("schema_map[%s]", name)
		if !strings.HasSuffix(name, ".csv") {
			add(SeverityWarning, path, "key should be a CSV file name")
		}
		if _, err := os.Stat(filepath.Join(c.SchemaDir, schemaFile)); err != nil {
			add(SeverityWarning, path, "schema %q not found in %s", schemaFile, c.SchemaDir)
		}
	}
	if c.GTFSPrefix != "" && !validIdent(c.GTFSPrefix) {
		add(SeverityError, "gtfs-prefix", "%q is not a valid identifier prefix", c.GTFSPrefix)
	}

	if _, err := pcsv.Decoder(strings.NewReader(""), c.CSV.Encoding); err != nil {
		add(SeverityError, "encoding", "%v", err)
	}
	if c.CSV.Comma == '"' || c.CSV.Comma == '\n' || c.CSV.Comma == '\r' || c.CSV.Comma == unicode.ReplacementChar {
		add(SeverityError, "delimiter", "%q cannot be used as a delimiter", c.CSV.Comma)
	}

	if c.BatchSize <= 0 {
		add(SeverityError, "batch-size", "must be > 0 (got %d)", c.BatchSize)
	}
	if c.Workers <= 0 {
		add(SeverityError, "workers", "must be > 0 (got %d)", c.Workers)
	} else if c.Workers > 64 {
		add(SeverityWarning, "workers", "%d workers is unusually high", c.Workers)
	}

	switch c.Metrics.Backend {
	case "", "none":
	case "prometheus":
		if c.Metrics.PushgatewayURL == "" {
			add(SeverityError, "pushgateway-url", "required when metrics-backend=prometheus")
		}
	case "datadog":
		if c.Metrics.DatadogAddr == "" {
			add(SeverityError, "datadog-addr", "required when metrics-backend=datadog")
		}
	default:
		add(SeverityError, "metrics-backend", "unknown backend %q (want none, prometheus or datadog)", c.Metrics.Backend)
	}
	return issues
}

// ValidateDB lints the database settings needed by the loader and dbping.
func ValidateDB(c *Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	switch c.DB.Driver {
	case "postgres":
		if c.DB.ResolvedDSN() == "" {
			add(SeverityError, "dsn", "set DATABASE_URL or DB_NAME (with DB_HOST, DB_USER, DB_PASSWORD)")
		}
		if c.DB.DSN == "" && c.DB.Password == "" {
			add(SeverityWarning, "db-password", "no password configured")
		}
	case "mssql", "mysql", "sqlite":
		if c.DB.DSN == "" {
			add(SeverityError, "dsn", "a full DSN is required for %s", c.DB.Driver)
		}
	default:
		add(SeverityError, "db-driver", "unknown driver %q (want postgres, mssql, mysql or sqlite)", c.DB.Driver)
	}
	return issues
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func validIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}
