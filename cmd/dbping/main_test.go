package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
		out  string
	}{
		{"sqlite", []string{"--db-driver=sqlite", "--dsn=" + filepath.Join(t.TempDir(), "ping.db")}, 0, "version:  SQLite 3."},
		{"no dsn", []string{"--db-driver=sqlite"}, 1, ""},
		{"unknown driver", []string{"--db-driver=oracle", "--dsn=x"}, 1, ""},
		{"bad flag", []string{"--timeout=soon"}, 2, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, func(string) string { return "" }, &stdout, &stderr)
			if code != tt.want {
				t.Fatalf("run = %d, want %d (stderr %q)", code, tt.want, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.out) {
				t.Fatalf("stdout = %q, want it to contain %q", stdout.String(), tt.out)
			}
		})
	}
}
