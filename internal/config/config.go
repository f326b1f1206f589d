// Package config gathers the tunables shared by the transitsql binaries.
//
// Values come from three places, lowest precedence first:
//
//  1. an optional JSON project file (--config), which also carries the
//     CSV-to-schema map and CSV reader options;
//  2. environment variables, which seed each flag's default;
//  3. explicit command-line flags.
//
// For tests, LoadFromArgs takes a private FlagSet and a getenv func so runs
// stay hermetic:
//
//	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
//	cfg, err := config.LoadFromArgs(fs, func(k string) string { return env[k] }, []string{"--workers=2"})
//
// A project file looks like:
//
//	{
//	  "processed_dir": "data/processed",
//	  "schema_dir":    "database/schemas",
//	  "out_dir":       "database/sql_complete",
//	  "gtfs_dirs":     ["data/processed/gtfs"],
//	  "schema_map":    { "semaforos_clean.csv": "semaforos_schema.sql" },
//	  "csv":           { "comma": ";", "encoding": "latin1", "header_map": { "Sensor ": "sensor" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"transitsql/internal/datasource/file"
)

// Defaults for the project layout.
const (
	DefaultProcessedDir = "data/processed"
	DefaultSchemaDir    = "database/schemas"
	DefaultOutDir       = "database/sql_complete"
	DefaultGTFSPrefix   = "gtfs_"
	DefaultBatchSize    = 1000
	DefaultWorkers      = 4
)

// Config holds everything the binaries need after flags, environment and the
// project file have been merged. It is not mutated after LoadFromArgs
// returns.
type Config struct {
	ProjectFile string

	// Layout.
	ProcessedDir string
	SchemaDir    string
	OutDir       string
	GTFSDirs     []string
	GTFSPrefix   string
	SchemaMap    map[string]string // CSV base name -> schema file name

	// Only restricts a run to these table names (union of --only and
	// --only-file). Empty means every table.
	Only     []string
	OnlyFile string

	CSV       CSVOptions
	NAValues  []string
	BatchSize int
	Workers   int

	DB      DB
	Metrics Metrics
}

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Comma     rune
	Encoding  string
	TrimSpace bool
	HeaderMap map[string]string
}

// DB describes the target database. For postgres the DSN can be assembled
// from discrete parts; mssql, mysql and sqlite need a full DSN.
type DB struct {
	Driver   string
	DSN      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string // "none", "prometheus" or "datadog"
	Job            string
	PushgatewayURL string
	DatadogAddr    string
	Namespace      string
}

// Project is the JSON project file.
type Project struct {
	ProcessedDir string            `json:"processed_dir"`
	SchemaDir    string            `json:"schema_dir"`
	OutDir       string            `json:"out_dir"`
	GTFSDirs     []string          `json:"gtfs_dirs"`
	GTFSPrefix   string            `json:"gtfs_prefix"`
	SchemaMap    map[string]string `json:"schema_map"`
	NAValues     []string          `json:"na_values"`
	CSV          Options           `json:"csv"`
}

// LoadProject decodes a project file. Unknown fields are rejected so typos
// surface early.
func LoadProject(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	var p Project
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if p.CSV == nil {
		p.CSV = Options{}
	}
	return &p, nil
}

// LoadFromArgs defines the flags on fs, seeds their defaults from getenv,
// parses args and merges the project file named by --config (or
// TRANSITSQL_CONFIG). Callers may add their own flags to fs beforehand.
func LoadFromArgs(fs *pflag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{}

	envOr := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOr := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOr := func(k string, d bool) bool {
		switch strings.ToLower(getenv(k)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		return d
	}
	listEnv := func(k string) []string {
		v := getenv(k)
		if v == "" {
			return nil
		}
		return splitList(v)
	}

	var comma string

	fs.StringVar(&cfg.ProjectFile, "config", getenv("TRANSITSQL_CONFIG"), "JSON project file")

	fs.StringVar(&cfg.ProcessedDir, "processed-dir", envOr("PROCESSED_DIR", DefaultProcessedDir), "directory of *_clean.csv sensor exports")
	fs.StringVar(&cfg.SchemaDir, "schema-dir", envOr("SCHEMA_DIR", DefaultSchemaDir), "directory of *_schema.sql declarations")
	fs.StringVar(&cfg.OutDir, "out", envOr("OUTPUT_DIR", DefaultOutDir), "directory for <table>_complete.sql artifacts")
	fs.StringSliceVar(&cfg.GTFSDirs, "gtfs-dir", listEnv("GTFS_DIRS"), "directories of cleaned GTFS files (default <processed-dir>/gtfs)")
	fs.StringVar(&cfg.GTFSPrefix, "gtfs-prefix", envOr("GTFS_PREFIX", DefaultGTFSPrefix), "table name prefix for GTFS files")
	fs.StringSliceVar(&cfg.Only, "only", listEnv("ONLY_TABLES"), "only process these tables")
	fs.StringVar(&cfg.OnlyFile, "only-file", getenv("ONLY_FILE"), "file listing tables to process, one per line")

	fs.StringVar(&comma, "delimiter", getenv("CSV_DELIMITER"), "CSV field delimiter (default ',')")
	fs.StringVar(&cfg.CSV.Encoding, "encoding", getenv("CSV_ENCODING"), "CSV source encoding: utf-8, latin1, windows-1252")
	fs.BoolVar(&cfg.CSV.TrimSpace, "trim-space", boolEnvOr("CSV_TRIM_SPACE", false), "trim spaces around CSV fields")
	fs.IntVar(&cfg.BatchSize, "batch-size", intEnvOr("BATCH_SIZE", DefaultBatchSize), "rows per INSERT statement or COPY batch")
	fs.IntVar(&cfg.Workers, "workers", intEnvOr("WORKERS", DefaultWorkers), "tables processed in parallel")

	fs.StringVar(&cfg.DB.Driver, "db-driver", envOr("DB_DRIVER", "postgres"), "database driver: postgres, mssql, mysql or sqlite")
	fs.StringVar(&cfg.DB.DSN, "dsn", getenv("DATABASE_URL"), "full DSN; overrides the discrete DB_* parts")
	fs.StringVar(&cfg.DB.Host, "db-host", envOr("DB_HOST", "localhost"), "database host")
	fs.StringVar(&cfg.DB.Port, "db-port", envOr("DB_PORT", "5432"), "database port")
	fs.StringVar(&cfg.DB.Name, "db-name", getenv("DB_NAME"), "database name")
	fs.StringVar(&cfg.DB.User, "db-user", getenv("DB_USER"), "database user")
	fs.StringVar(&cfg.DB.Password, "db-password", getenv("DB_PASSWORD"), "database password")
	fs.StringVar(&cfg.DB.SSLMode, "db-sslmode", getenv("DB_SSLMODE"), "postgres sslmode")

	fs.StringVar(&cfg.Metrics.Backend, "metrics-backend", envOr("METRICS_BACKEND", "none"), "metrics backend: none, prometheus or datadog")
	fs.StringVar(&cfg.Metrics.Job, "metrics-job", envOr("METRICS_JOB", "transitsql"), "Pushgateway job name")
	fs.StringVar(&cfg.Metrics.PushgatewayURL, "pushgateway-url", getenv("PUSHGATEWAY_URL"), "Prometheus Pushgateway base URL")
	fs.StringVar(&cfg.Metrics.DatadogAddr, "datadog-addr", envOr("DD_DOGSTATSD_URL", "127.0.0.1:8125"), "DogStatsD address")
	fs.StringVar(&cfg.Metrics.Namespace, "metrics-namespace", getenv("METRICS_NAMESPACE"), "metric name prefix (datadog)")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if comma != "" {
		r := []rune(comma)
		cfg.CSV.Comma = r[0]
	}

	if cfg.ProjectFile != "" {
		p, err := LoadProject(cfg.ProjectFile)
		if err != nil {
			return nil, err
		}
		cfg.applyProject(p, fs, getenv)
	}

	if len(cfg.GTFSDirs) == 0 {
		cfg.GTFSDirs = []string{filepath.Join(cfg.ProcessedDir, "gtfs")}
	}
	if cfg.OnlyFile != "" {
		names, err := file.ReadList(cfg.OnlyFile)
		if err != nil {
			return nil, fmt.Errorf("config: only-file: %w", err)
		}
		cfg.Only = append(cfg.Only, names...)
	}
	return cfg, nil
}

// Load reads os.Args and the process environment.
func Load() (*Config, error) {
	return LoadFromArgs(pflag.CommandLine, os.Getenv, os.Args[1:])
}

// applyProject fills fields the user did not set by flag or environment.
func (c *Config) applyProject(p *Project, fs *pflag.FlagSet, getenv func(string) string) {
	unset := func(flag, env string) bool {
		return !fs.Changed(flag) && getenv(env) == ""
	}
	setStr := func(dst *string, v, flag, env string) {
		if v != "" && unset(flag, env) {
			*dst = v
		}
	}

	setStr(&c.ProcessedDir, p.ProcessedDir, "processed-dir", "PROCESSED_DIR")
	setStr(&c.SchemaDir, p.SchemaDir, "schema-dir", "SCHEMA_DIR")
	setStr(&c.OutDir, p.OutDir, "out", "OUTPUT_DIR")
	setStr(&c.GTFSPrefix, p.GTFSPrefix, "gtfs-prefix", "GTFS_PREFIX")
	if len(p.GTFSDirs) > 0 && unset("gtfs-dir", "GTFS_DIRS") {
		c.GTFSDirs = p.GTFSDirs
	}
	c.SchemaMap = p.SchemaMap
	c.NAValues = p.NAValues

	if unset("delimiter", "CSV_DELIMITER") {
		c.CSV.Comma = p.CSV.Rune("comma", c.CSV.Comma)
	}
	setStr(&c.CSV.Encoding, p.CSV.String("encoding", ""), "encoding", "CSV_ENCODING")
	if unset("trim-space", "CSV_TRIM_SPACE") {
		c.CSV.TrimSpace = p.CSV.Bool("trim_space", c.CSV.TrimSpace)
	}
	if m := p.CSV.StringMap("header_map"); len(m) > 0 {
		c.CSV.HeaderMap = m
	}
}

// Wants reports whether table passes the --only filter.
func (c *Config) Wants(table string) bool {
	if len(c.Only) == 0 {
		return true
	}
	for _, t := range c.Only {
		if strings.EqualFold(strings.TrimSpace(t), table) {
			return true
		}
	}
	return false
}

// ResolvedDSN returns the connection string for the configured driver. An
// explicit DSN always wins; postgres falls back to a URL built from the
// discrete parts.
func (d DB) ResolvedDSN() string {
	if d.DSN != "" || d.Driver != "postgres" {
		return d.DSN
	}
	if d.Name == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Options fetches typed values from a free-form JSON object. Missing keys
// and unexpected types yield the supplied default.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the int value for key or def. encoding/json decodes numbers
// as float64.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && len(s) > 0 {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns the string-valued entries of an object value.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if m, ok := o[key].(map[string]any); ok {
		for k, v := range m {
			if s, ok := v.(string); ok {
				res[k] = s
			}
		}
	}
	return res
}

// UnmarshalJSON makes a null object decode to an empty, non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
