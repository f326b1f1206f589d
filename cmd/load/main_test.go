package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunSQLite(t *testing.T) {
	root := t.TempDir()
	gtfs := filepath.Join(root, "processed", "gtfs")
	if err := os.MkdirAll(gtfs, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "route_id,route_short_name,route_type\nR1,101,3\nR2,102,3\n"
	if err := os.WriteFile(filepath.Join(gtfs, "routes_clean.csv"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	args := []string{
		"--processed-dir=" + filepath.Join(root, "processed"),
		"--schema-dir=" + filepath.Join(root, "schemas"),
		"--db-driver=sqlite",
		"--dsn=" + filepath.Join(root, "transit.db"),
	}

	for i := 0; i < 2; i++ {
		var out, errOut bytes.Buffer
		if code := run(args, func(string) string { return "" }, &out, &errOut); code != 0 {
			t.Fatalf("run #%d = %d, stderr:\n%s", i+1, code, errOut.String())
		}
		if !strings.Contains(out.String(), "[OK] gtfs_routes: 2 rows") {
			t.Fatalf("run #%d stdout = %q", i+1, out.String())
		}
	}
}

func TestRunRejectsMissingDSN(t *testing.T) {
	env := map[string]string{"DB_DRIVER": "mssql"}
	var out, errOut bytes.Buffer
	code := run([]string{"--out=" + t.TempDir()}, func(k string) string { return env[k] }, &out, &errOut)
	if code != 1 || !strings.Contains(errOut.String(), "error: dsn") {
		t.Fatalf("run = %d, stderr %q", code, errOut.String())
	}
}
