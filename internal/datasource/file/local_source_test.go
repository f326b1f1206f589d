package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalOpenReadsExport(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "stops_clean.csv")
	const body = "stop_id,stop_name\nS1,Praça da Independência\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewLocal(p)
	if src.Path() != p {
		t.Fatalf("Path = %q, want %q", src.Path(), p)
	}

	// Opening twice yields independent readers.
	for i := 0; i < 2; i++ {
		rc, err := src.Open(context.Background())
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil || string(got) != body {
			t.Fatalf("read #%d = %q, %v", i+1, got, err)
		}
	}
}

func TestLocalOpenErrors(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	existing := filepath.Join(t.TempDir(), "routes_clean.csv")
	if err := os.WriteFile(existing, []byte("route_id\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		ctx     context.Context
		wantIs  error
		wantMsg string
	}{
		{"missing export", filepath.Join(t.TempDir(), "trips_clean.csv"), context.Background(), os.ErrNotExist, "trips_clean.csv"},
		{"canceled before open", existing, canceled, context.Canceled, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rc, err := NewLocal(tt.path).Open(tt.ctx)
			if rc != nil {
				rc.Close()
				t.Fatal("Open returned a reader alongside an error")
			}
			if !errors.Is(err, tt.wantIs) {
				t.Fatalf("Open error = %v, want %v", err, tt.wantIs)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("Open error %q lacks %q", err, tt.wantMsg)
			}
		})
	}
}

func BenchmarkLocalOpen(b *testing.B) {
	p := filepath.Join(b.TempDir(), "stop_times_clean.csv")
	if err := os.WriteFile(p, []byte("trip_id,stop_sequence\nT1,1\n"), 0o644); err != nil {
		b.Fatal(err)
	}
	src := NewLocal(p)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rc, err := src.Open(ctx)
		if err != nil {
			b.Fatal(err)
		}
		rc.Close()
	}
}
