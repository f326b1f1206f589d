// Package pipeline discovers cleaned CSV exports, pairs them with declared
// schemas and drives generation of SQL artifacts or direct loads, one table
// at a time, with table-scoped failures.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"transitsql/internal/config"
	"transitsql/internal/datasource/file"
	"transitsql/internal/schema"
)

const (
	cleanMarker  = "clean"
	schemaSuffix = "_schema.sql"
)

// Job is one input file scheduled for processing.
type Job struct {
	Path   string // cleaned CSV
	Schema string // declared schema file; "" for inferred tables
	Table  string // table name for inferred tables; declared tables take the declaration's name
	GTFS   bool
	Skip   string // non-empty when the file cannot be processed, e.g. no schema
}

// Name is the table name when known up front, else one derived from the
// file name.
func (j Job) Name() string {
	if j.Table != "" {
		return j.Table
	}
	return schema.TableNameFromFile(j.Path)
}

// Discover lists sensor exports in the processed dir (each must match a
// declared schema) followed by the files of every GTFS dir (always
// inferred, prefixed table names). Only file names containing "clean" are
// considered, in name order.
func Discover(cfg *config.Config) ([]Job, error) {
	var jobs []Job

	sensors, err := file.ListCSV(cfg.ProcessedDir, cleanMarker)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if sensors == nil {
		log.Printf("warn: discover: processed dir %s not found", cfg.ProcessedDir)
	}
	for _, p := range sensors {
		sp, err := FindSchema(filepath.Base(p), cfg.SchemaDir, cfg.SchemaMap)
		if err != nil {
			return nil, err
		}
		j := Job{Path: p, Schema: sp}
		if sp == "" {
			j.Skip = "no matching schema"
		}
		jobs = append(jobs, j)
	}

	seen := map[string]bool{}
	for _, dir := range cfg.GTFSDirs {
		abs, _ := filepath.Abs(dir)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		files, err := file.ListCSV(dir, cleanMarker)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		if len(files) > 0 {
			log.Printf("discover: gtfs dir=%s files=%d", dir, len(files))
		}
		for _, p := range files {
			jobs = append(jobs, Job{
				Path:  p,
				Table: cfg.GTFSPrefix + schema.TableNameFromFile(p),
				GTFS:  true,
			})
		}
	}
	return jobs, nil
}

// FindSchema returns the declared schema for a CSV file name: the explicit
// mapping first, then the first *_schema.sql (in name order) whose base
// contains, or is contained in, the CSV base name. It returns "" when
// nothing matches.
func FindSchema(csvName, dir string, mapping map[string]string) (string, error) {
	if m, ok := mapping[csvName]; ok {
		p := filepath.Join(dir, m)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	base := strings.TrimSuffix(csvName, "_clean.csv")
	base = strings.TrimSuffix(base, ".csv")
	if base == "" {
		return "", nil
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("pipeline: list schemas %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), schemaSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		sb := strings.TrimSuffix(n, schemaSuffix)
		if sb == "" {
			continue
		}
		if strings.Contains(base, sb) || strings.Contains(sb, base) {
			return filepath.Join(dir, n), nil
		}
	}
	return "", nil
}
