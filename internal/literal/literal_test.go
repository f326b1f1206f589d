package literal

import (
	"math"
	"testing"
	"time"

	"transitsql/internal/dataset"
	"transitsql/internal/schema"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 9, 7, 5, 3, 0, time.UTC)
	read := func(v dataset.Value, raw string) dataset.Value {
		v.Raw = raw
		return v
	}
	tests := []struct {
		name   string
		v      dataset.Value
		hint   schema.Hint
		column string
		want   string
	}{
		{"missing", dataset.Missing(), schema.Integer(), "total", "NULL"},
		{"empty string", dataset.String(""), schema.Text(), "name", "NULL"},
		{"nan", dataset.Float(math.NaN()), schema.Decimal(), "ratio", "NULL"},
		{"phone beats numeric", dataset.Int(8133334444), schema.Integer(), "agency_phone", "'8133334444'"},
		{"email", dataset.String("a@b.c"), schema.Text(), "contact_email", "'a@b.c'"},
		{"url with quote", dataset.String("http://x/o'k"), schema.Varchar(255), "agency_url", "'http://x/o''k'"},
		{"numeric id in text column", dataset.Int(123), schema.Text(), "equipamento_id", "123"},
		{"huge id stays quoted", dataset.Int(3000000000), schema.Text(), "equipamento_id", "'3000000000'"},
		{"numeric non-id in text column", dataset.Int(7), schema.Varchar(255), "local", "'7'"},
		{"string id quoted", dataset.String("S1"), schema.Varchar(255), "stop_id", "'S1'"},
		{"o'brien", dataset.String("O'Brien"), schema.Varchar(255), "stop_name", "'O''Brien'"},
		{"bool true", dataset.Bool(true), schema.Boolean(), "ativo", "TRUE"},
		{"bool false", dataset.Bool(false), schema.Boolean(), "ativo", "FALSE"},
		{"int", dataset.Int(-12), schema.Integer(), "total", "-12"},
		{"float", dataset.Float(-8.05), schema.DecimalOf(10, 8), "stop_lat", "-8.05"},
		{"date", dataset.Time(ts), schema.Date(), "date", "'2024-03-09'"},
		{"time", dataset.Time(ts), schema.Time(), "hora", "'07:05:03'"},
		{"timestamp", dataset.Time(ts), schema.Timestamp(), "data_hora", "'2024-03-09 07:05:03'"},
		{"time without hint", dataset.Time(ts), schema.Hint{}, "x", "'2024-03-09 07:05:03'"},
		{"string in integer column", dataset.String("abc"), schema.Integer(), "total", "'abc'"},
		{"phone keeps leading zero", read(dataset.Int(8131234567), "08131234567"), schema.Integer(), "agency_phone", "'08131234567'"},
		{"text keeps leading zero", read(dataset.Int(1310100), "01310100"), schema.Varchar(8), "cep", "'01310100'"},
		{"zero-padded id stays quoted", read(dataset.Int(7), "007"), schema.Text(), "route_id", "'007'"},
		{"read id without padding", read(dataset.Int(123), "123"), schema.Text(), "equipamento_id", "123"},
		{"zero id", read(dataset.Int(0), "0"), schema.Text(), "equipamento_id", "0"},
		{"text keeps decimal source", read(dataset.Float(1.5), "1.50"), schema.Varchar(10), "versao", "'1.50'"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.v, tt.hint, tt.column); got != tt.want {
				t.Fatalf("Normalize(%+v, %v, %q) = %q, want %q", tt.v, tt.hint, tt.column, got, tt.want)
			}
		})
	}
}

func TestNormalizeTimeHHMMSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"5:3", "05:03:00", true},
		{"5:3:9", "05:03:09", true},
		{"24:00:05", "24:00:05", true},
		{"25:30:00", "25:30:00", true},
		{" 08:15:00 ", "08:15:00", true},
		{"081500", "08:15:00", true},
		{"1234567", "123:45:67", true},
		{"930", "09:30:00", true},
		{"12", "00:12:00", true},
		{"7", "", false},
		{"", "", false},
		{"ab:cd", "", false},
		{"1:2:3:4", "00:12:34", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := NormalizeTimeHHMMSS(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("NormalizeTimeHHMMSS(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		v      dataset.Value
		hint   schema.Hint
		want   string
		wantOK bool
	}{
		{"int text", dataset.String(" 42 "), schema.Integer(), "42", true},
		{"whole float to int", dataset.String("3.0"), schema.Integer(), "3", true},
		{"bad int", dataset.String("abc"), schema.Integer(), "NULL", false},
		{"decimal", dataset.String("1.25"), schema.Decimal(), "1.25", true},
		{"bool", dataset.String("sim"), schema.Boolean(), "TRUE", true},
		{"date", dataset.String("20240102"), schema.Date(), "'2024-01-02'", true},
		{"timestamp", dataset.String("2024-01-02 03:04:05"), schema.Timestamp(), "'2024-01-02 03:04:05'", true},
		{"time", dataset.String("7:5"), schema.Time(), "'07:05:00'", true},
		{"bad date", dataset.String("soon"), schema.Date(), "NULL", false},
		{"text passes", dataset.String("abc"), schema.Text(), "'abc'", true},
		{"native passes", dataset.Int(1), schema.Decimal(), "1", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, ok := Coerce(tt.v, tt.hint)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%+v, %v) ok = %v, want %v", tt.v, tt.hint, ok, tt.wantOK)
			}
			if got := Normalize(v, tt.hint, "col"); got != tt.want {
				t.Fatalf("Normalize(Coerce(%+v)) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}
