package gtfs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"transitsql/internal/datasource/file"
	"transitsql/internal/metrics"
	pcsv "transitsql/internal/parser/csv"
	"transitsql/internal/records"
)

// CleanSuffix is appended to a rule name to form its output file name.
const CleanSuffix = "_clean.csv"

// Cleaner reads raw GTFS files from InDir and writes cleaned copies to OutDir.
type Cleaner struct {
	InDir   string
	OutDir  string
	Rules   []Rule // DefaultRules() when nil
	CSV     pcsv.Options
	Workers int // files cleaned concurrently; 1 when <= 0
}

// Result is the outcome for one GTFS file.
type Result struct {
	Name    string
	Input   string // resolved input path; "" when the file was not found
	Output  string // written path; "" when nothing was saved
	Read    int
	Written int
	Skipped int // malformed CSV lines
	Dropped int // rows removed by Require or de-duplication
}

// Run cleans every rule's file. Missing and empty inputs are reported and
// skipped. The first I/O error cancels the remaining files.
func (c *Cleaner) Run(ctx context.Context) ([]Result, error) {
	rules := c.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("gtfs: create %s: %w", c.OutDir, err)
	}

	results := make([]Result, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Workers, 1))
	for i, rule := range rules {
		g.Go(func() error {
			res, err := c.CleanFile(gctx, rule)
			results[i] = res
			return err
		})
	}
	return results, g.Wait()
}

// CleanFile applies rule to <InDir>/<name>.csv (or .txt, the GTFS feed
// extension) and writes <OutDir>/<name>_clean.csv.
func (c *Cleaner) CleanFile(ctx context.Context, rule Rule) (res Result, err error) {
	res.Name = rule.Name
	done := metrics.Timer(rule.Name, "clean")
	defer func() { done(err) }()

	in, ok := c.locate(rule.Name)
	if !ok {
		log.Printf("warn: cleangtfs: %s not found in %s", rule.Name, c.InDir)
		return res, nil
	}
	res.Input = in

	rc, err := file.NewLocal(in).Open(ctx)
	if err != nil {
		return res, fmt.Errorf("gtfs: %w", err)
	}
	defer rc.Close()

	tbl, skipped, err := pcsv.NewParser(c.CSV).ReadTable(rc)
	if err != nil {
		return res, fmt.Errorf("gtfs: read %s: %w", in, err)
	}
	res.Skipped = skipped
	res.Read = len(tbl.Rows)
	if res.Read == 0 {
		log.Printf("warn: cleangtfs: %s is empty, not saved", rule.Name)
		return res, nil
	}

	recs := tbl.Records()
	var required int
	out := rule.Chain(func(records.Record) { required++ }).Apply(recs)
	res.Written = len(out)
	res.Dropped = res.Read - res.Written

	res.Output = filepath.Join(c.OutDir, rule.Name+CleanSuffix)
	if err := writeCSV(res.Output, tbl.Header, out); err != nil {
		res.Output = ""
		return res, fmt.Errorf("gtfs: write %s: %w", rule.Name, err)
	}

	metrics.RecordRows(rule.Name, metrics.KindRead, int64(res.Read))
	metrics.RecordRows(rule.Name, metrics.KindSkipped, int64(res.Skipped))
	metrics.RecordRows(rule.Name, metrics.KindDropped, int64(res.Dropped))
	metrics.RecordRows(rule.Name, metrics.KindEmitted, int64(res.Written))
	log.Printf("cleangtfs: file=%s in=%d out=%d required_dropped=%d dup_dropped=%d skipped_lines=%d",
		filepath.Base(res.Output), res.Read, res.Written, required, res.Dropped-required, res.Skipped)
	return res, nil
}

func (c *Cleaner) locate(name string) (string, bool) {
	for _, ext := range []string{".csv", ".txt"} {
		p := filepath.Join(c.InDir, name+ext)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// writeCSV writes header plus recs to path through a temp file, so readers
// never observe a partial file.
func writeCSV(path string, header []string, recs []records.Record) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".clean-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, r := range recs {
		for i, h := range header {
			row[i] = format(r[h])
		}
		if err = w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Summary renders one line per result, in rule order.
func Summary(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		switch {
		case r.Output != "":
			out = append(out, fmt.Sprintf("[OK] %s: %d rows", r.Name, r.Written))
		default:
			out = append(out, fmt.Sprintf("[--] %s: not available", r.Name))
		}
	}
	return out
}

// ErrNoInput reports that none of the rule files exist in the input directory.
var ErrNoInput = errors.New("gtfs: no input files found")

// Found reports how many results had an input file.
func Found(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Input != "" {
			n++
		}
	}
	return n
}
