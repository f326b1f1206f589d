package ddl

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"transitsql/internal/schema"
)

func sqlType(h schema.Hint) string { return h.String() }

func TestFromSchema(t *testing.T) {
	t.Parallel()

	ts := schema.TableSchema{
		Table: "gtfs_stop_times",
		Columns: []schema.Column{
			{Name: "trip_id", Hint: schema.Varchar(255)},
			{Name: "arrival-time", Hint: schema.Varchar(10)},
			{Name: "stop_sequence", Hint: schema.Integer()},
		},
		Key: schema.Composite("trip_id", "stop_sequence"),
	}
	td, err := FromSchema("gtfs_stop_times", ts, sqlType)
	if err != nil {
		t.Fatalf("FromSchema: %v", err)
	}
	want := []ColumnDef{
		{Name: "trip_id", SQLType: "VARCHAR(255)", PrimaryKey: true},
		{Name: "arrival_time", SQLType: "VARCHAR(10)", Nullable: true},
		{Name: "stop_sequence", SQLType: "INTEGER", PrimaryKey: true},
		{Name: "created_at", SQLType: "TIMESTAMP", Nullable: true, Default: CreatedAtDefault},
	}
	if td.FQN != "gtfs_stop_times" || !reflect.DeepEqual(td.Columns, want) {
		t.Fatalf("FromSchema =\n%+v\nwant\n%+v", td, want)
	}
	if got := td.Keys(); !reflect.DeepEqual(got, []string{"trip_id", "stop_sequence"}) {
		t.Fatalf("Keys = %v", got)
	}

	if _, err := FromSchema("empty", schema.TableSchema{}, sqlType); err == nil {
		t.Fatal("FromSchema(empty) error = nil")
	}
}

func TestFromDeclared(t *testing.T) {
	t.Parallel()

	d, err := schema.ParseDeclared(`CREATE TABLE IF NOT EXISTS semaforos (
    id SERIAL PRIMARY KEY,
    codigo VARCHAR(20) NOT NULL,
    latitude DECIMAL(10, 8),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`)
	if err != nil {
		t.Fatalf("ParseDeclared: %v", err)
	}
	td, err := FromDeclared("", d, sqlType)
	if err != nil {
		t.Fatalf("FromDeclared: %v", err)
	}
	want := []ColumnDef{
		{Name: "id", SQLType: "INTEGER", PrimaryKey: true, Identity: true},
		{Name: "codigo", SQLType: "VARCHAR(20)", Nullable: true},
		{Name: "latitude", SQLType: "DECIMAL(10,8)", Nullable: true},
		{Name: "created_at", SQLType: "TIMESTAMP", Nullable: true, Default: CreatedAtDefault},
	}
	if td.FQN != "semaforos" || !reflect.DeepEqual(td.Columns, want) {
		t.Fatalf("FromDeclared =\n%+v\nwant\n%+v", td, want)
	}

	if _, err := FromDeclared("x", nil, sqlType); err == nil {
		t.Fatal("FromDeclared(nil) error = nil")
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	quoted := Dialect{
		Name:        "test",
		Quote:       func(s string) string { return `"` + s + `"` },
		IfNotExists: true,
		IdentityType: func(ColumnDef) string {
			return "INTEGER GENERATED ALWAYS AS IDENTITY"
		},
	}
	semaforos := TableDef{
		FQN: "transito.semaforos",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "INTEGER", PrimaryKey: true, Identity: true},
			{Name: "codigo", SQLType: "VARCHAR(20)", Nullable: true},
			{Name: "created_at", SQLType: "TIMESTAMP", Nullable: true, Default: " CURRENT_TIMESTAMP "},
		},
	}

	tests := []struct {
		name    string
		def     TableDef
		dialect Dialect
		want    string
		wantErr string
	}{
		{
			name:    "plain",
			def:     semaforos,
			dialect: Dialect{},
			want: "CREATE TABLE transito.semaforos (\n" +
				"  id INTEGER NOT NULL,\n" +
				"  codigo VARCHAR(20),\n" +
				"  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,\n" +
				"  PRIMARY KEY (id)\n);",
		},
		{
			name:    "quoted with identity",
			def:     semaforos,
			dialect: quoted,
			want: "CREATE TABLE IF NOT EXISTS \"transito\".\"semaforos\" (\n" +
				"  \"id\" INTEGER GENERATED ALWAYS AS IDENTITY NOT NULL,\n" +
				"  \"codigo\" VARCHAR(20),\n" +
				"  \"created_at\" TIMESTAMP DEFAULT CURRENT_TIMESTAMP,\n" +
				"  PRIMARY KEY (\"id\")\n);",
		},
		{
			name:    "missing table name",
			def:     TableDef{FQN: " ", Columns: semaforos.Columns},
			dialect: quoted,
			wantErr: "test ddl: table FQN must not be empty",
		},
		{
			name:    "no columns",
			def:     TableDef{FQN: "stops"},
			wantErr: "at least one column",
		},
		{
			name:    "blank column name",
			def:     TableDef{FQN: "stops", Columns: []ColumnDef{{SQLType: "TEXT"}}},
			wantErr: "column with empty name",
		},
		{
			name:    "missing type",
			def:     TableDef{FQN: "stops", Columns: []ColumnDef{{Name: "stop_id"}}},
			wantErr: "stop_id missing SQLType",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Render(tt.def, tt.dialect)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Render error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Render =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

var benchmarkSink string

func BenchmarkSynthesizeWideTable(b *testing.B) {
	ts := schema.TableSchema{Table: "wide", Key: schema.Single("col_0")}
	for i := 0; i < 64; i++ {
		ts.Columns = append(ts.Columns, schema.Column{Name: "col_" + strconv.Itoa(i), Hint: schema.Varchar(255)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchmarkSink = Synthesize("wide", ts)
	}
}
