package dml

import (
	"slices"
	"strconv"
	"strings"
	"testing"

	"transitsql/internal/dataset"
	"transitsql/internal/schema"
)

func mustDataset(t *testing.T, name string, header []string, rows [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRows(name, header, rows, nil)
	if err != nil {
		t.Fatalf("FromRows(%s): %v", name, err)
	}
	return ds
}

func inferred(t *testing.T, table string, ds *dataset.Dataset) schema.TableSchema {
	t.Helper()
	ts, err := schema.Resolve(table, ds, schema.Inferred{}, schema.DefaultRules())
	if err != nil {
		t.Fatalf("Resolve(%s): %v", table, err)
	}
	return ts
}

func TestStopsEndToEnd(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, "stops",
		[]string{"stop_id", "stop_name", "stop_lat", "stop_lon"},
		[][]string{{"S1", "Main St", "-8.05", "-34.9"}})
	e := New("stops", ds, inferred(t, "stops", ds))

	got := slices.Collect(e.Statements())
	want := "INSERT INTO stops (\"stop_id\", \"stop_name\", \"stop_lat\", \"stop_lon\") VALUES\n" +
		"    ('S1', 'Main St', -8.05, -34.9);"
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Statements() = %q, want [%q]", got, want)
	}
}

func TestBatchingPreservesOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rows, batch, want int
	}{
		{rows: 1, batch: 1000, want: 1},
		{rows: 10, batch: 3, want: 4},
		{rows: 9, batch: 3, want: 3},
		{rows: 2500, batch: 1000, want: 3},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.rows)+"/"+strconv.Itoa(tt.batch), func(t *testing.T) {
			t.Parallel()

			rows := make([][]string, tt.rows)
			for i := range rows {
				rows[i] = []string{strconv.Itoa(i), "n" + strconv.Itoa(i)}
			}
			ds := mustDataset(t, "agency", []string{"agency_id", "agency_name"}, rows)
			e := New("agency", ds, inferred(t, "agency", ds), WithBatchSize(tt.batch))

			if e.Batches() != tt.want {
				t.Fatalf("Batches() = %d, want %d", e.Batches(), tt.want)
			}
			stmts := slices.Collect(e.Statements())
			if len(stmts) != tt.want {
				t.Fatalf("len(Statements()) = %d, want %d", len(stmts), tt.want)
			}

			var tuples []string
			for _, s := range stmts {
				_, body, _ := strings.Cut(s, "VALUES\n")
				body = strings.TrimSuffix(body, ";")
				for _, line := range strings.Split(body, ",\n") {
					tuples = append(tuples, strings.TrimSpace(line))
				}
			}
			if len(tuples) != tt.rows {
				t.Fatalf("got %d tuples, want %d", len(tuples), tt.rows)
			}
			for i, tup := range tuples {
				if tup != e.Row(i) {
					t.Fatalf("tuple %d = %q, want %q", i, tup, e.Row(i))
				}
			}
		})
	}
}

func TestRestartable(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, "routes", []string{"route_id", "route_short_name"},
		[][]string{{"R1", "10"}, {"R2", "O'Hare"}})
	e := New("routes", ds, inferred(t, "routes", ds), WithBatchSize(1))

	first := slices.Collect(e.Statements())
	second := slices.Collect(e.Statements())
	if !slices.Equal(first, second) {
		t.Fatalf("second pass differs:\n%q\n%q", first, second)
	}
	if !strings.Contains(first[1], "'O''Hare'") {
		t.Fatalf("quote not escaped: %s", first[1])
	}

	for s := range e.Statements() {
		_ = s
		break
	}
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, "x", []string{"a"}, nil)
	e := New("x", ds, inferred(t, "x", ds))
	if e.Batches() != 0 {
		t.Fatalf("Batches() = %d, want 0", e.Batches())
	}
	for s := range e.Statements() {
		t.Fatalf("unexpected statement %q", s)
	}

	var b strings.Builder
	if n, err := e.WriteTo(&b); n != 0 || err != nil {
		t.Fatalf("WriteTo() = %d, %v; want 0, nil", n, err)
	}
}

func TestDeclaredFilter(t *testing.T) {
	t.Parallel()

	decl, err := schema.ParseDeclared(`CREATE TABLE IF NOT EXISTS fluxo_velocidade (
    id SERIAL PRIMARY KEY,
    sensor VARCHAR(50),
    volume INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`)
	if err != nil {
		t.Fatalf("ParseDeclared: %v", err)
	}
	ds := mustDataset(t, "fluxo_velocidade",
		[]string{"extra", "id", "sensor", "volume", "created_at"},
		[][]string{
			{"x", "1", "A", "12", "2024-01-01 00:00:00"},
			{"y", "2", "B", "n/d", "2024-01-01 00:00:00"},
		})

	var bad []Malformed
	e := New("fluxo_velocidade", ds, decl.Schema(), WithMalformed(func(m Malformed) {
		bad = append(bad, m)
	}))

	if got := strings.Join(e.Columns(), ","); got != "id,sensor,volume" {
		t.Fatalf("Columns() = %s, want id,sensor,volume", got)
	}
	stmts := slices.Collect(e.Statements())
	want := "INSERT INTO fluxo_velocidade (\"id\", \"sensor\", \"volume\") VALUES\n" +
		"    (1, 'A', 12),\n" +
		"    (2, 'B', NULL);"
	if len(stmts) != 1 || stmts[0] != want {
		t.Fatalf("Statements() = %q, want %q", stmts, want)
	}
	if len(bad) != 1 || bad[0].Column != "volume" || bad[0].Raw != "n/d" || bad[0].Row != 1 {
		t.Fatalf("malformed = %+v, want one volume cell on row 1", bad)
	}
}

func TestInferredDropsCreatedAt(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, "t", []string{"created_at", "stop-id"}, [][]string{{"2024-01-01 10:00:00", "7"}})
	e := New("my-table", ds, inferred(t, "my-table", ds))
	got := slices.Collect(e.Statements())
	want := "INSERT INTO my_table (\"stop_id\") VALUES\n    (7);"
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Statements() = %q, want %q", got, want)
	}
}

func TestTextColumnsKeepSourceDigits(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, "agency",
		[]string{"agency_id", "agency_phone", "cep", "ticket"},
		[][]string{{"A1", "08131234567", "01310100", "12345678901234567890"}})

	decl, err := schema.ParseDeclared("CREATE TABLE agency (agency_id VARCHAR(10), agency_phone VARCHAR(20), cep VARCHAR(8), ticket TEXT)")
	if err != nil {
		t.Fatalf("ParseDeclared: %v", err)
	}

	tests := []struct {
		name string
		ts   schema.TableSchema
		want string
	}{
		{
			name: "declared",
			ts:   decl.Schema(),
			want: "('A1', '08131234567', '01310100', '12345678901234567890');",
		},
		{
			name: "inferred",
			ts:   inferred(t, "agency", ds),
			want: "('A1', '08131234567', 1310100, '12345678901234567890');",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := slices.Collect(New("agency", ds, tt.ts).Statements())
			if len(got) != 1 || !strings.HasSuffix(got[0], "\n    "+tt.want) {
				t.Fatalf("Statements() = %q, want one statement ending in %q", got, tt.want)
			}
		})
	}
}
