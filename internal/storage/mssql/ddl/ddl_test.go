package ddl

import (
	"strings"
	"testing"

	gddl "transitsql/internal/ddl"
	"transitsql/internal/schema"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"name", "[name]"},
		{"", "[]"},
		{"order id", "[order id]"},
		{"weird]id", "[weird]]id]"},
	}
	for _, tt := range tests {
		if got := quoteIdent(tt.id); got != tt.want {
			t.Errorf("quoteIdent(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
	if got := quoteFQN("dbo.stops"); got != "[dbo].[stops]" {
		t.Errorf("quoteFQN() = %q, want [dbo].[stops]", got)
	}
}

func TestMapHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hint schema.Hint
		want string
	}{
		{schema.Integer(), "BIGINT"},
		{schema.Varchar(255), "NVARCHAR(255)"},
		{schema.Text(), "NVARCHAR(MAX)"},
		{schema.DecimalOf(10, 8), "DECIMAL(10, 8)"},
		{schema.Decimal(), "DECIMAL(38, 10)"},
		{schema.Boolean(), "BIT"},
		{schema.Date(), "DATE"},
		{schema.Time(), "TIME"},
		{schema.Timestamp(), "DATETIME2"},
	}
	for _, tt := range tests {
		if got := MapHint(tt.hint); got != tt.want {
			t.Errorf("MapHint(%v) = %q, want %q", tt.hint, got, tt.want)
		}
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "dbo.trips",
		Columns: []gddl.ColumnDef{
			{Name: "trip_id", SQLType: "NVARCHAR(MAX)", PrimaryKey: true},
			{Name: "route_id", SQLType: "NVARCHAR(255)", Nullable: true},
			{Name: "created_at", SQLType: "DATETIME2", Nullable: true, Default: "CURRENT_TIMESTAMP"},
		},
	}
	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	want := "IF OBJECT_ID(N'[dbo].[trips]', N'U') IS NULL\nBEGIN\n" +
		"  CREATE TABLE [dbo].[trips] (\n" +
		"    [trip_id] NVARCHAR(450) NOT NULL,\n" +
		"    [route_id] NVARCHAR(255),\n" +
		"    [created_at] DATETIME2 DEFAULT CURRENT_TIMESTAMP,\n" +
		"    PRIMARY KEY ([trip_id])\n" +
		"  );\nEND;"
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
	if def.Columns[0].SQLType != "NVARCHAR(MAX)" {
		t.Fatalf("BuildCreateTableSQL mutated its input: %+v", def.Columns[0])
	}

	_, err = BuildCreateTableSQL(gddl.TableDef{})
	if err == nil || !strings.HasPrefix(err.Error(), "mssql ddl:") {
		t.Fatalf("BuildCreateTableSQL(empty) error = %v, want mssql ddl error", err)
	}
}

func TestIdentityColumn(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN:     "v",
		Columns: []gddl.ColumnDef{{Name: "id", SQLType: "BIGINT", PrimaryKey: true, Identity: true}},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	if !strings.Contains(got, "[id] BIGINT IDENTITY(1,1) NOT NULL") {
		t.Fatalf("BuildCreateTableSQL() = %s, want identity column", got)
	}
}
