package transformer

import (
	"reflect"
	"testing"

	"transitsql/internal/records"
)

type setField struct {
	key string
	val any
}

func (t setField) Apply(in []records.Record) []records.Record {
	for i := range in {
		in[i][t.key] = t.val
	}
	return in
}

type dropBlank struct{ key string }

func (t dropBlank) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, r := range in {
		if r.String(t.key) != "" {
			out = append(out, r)
		}
	}
	return out
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	out := Chain{
		setField{"route_type", 3},
		setField{"route_type", 700},
		setField{"agency_id", "A"},
	}.Apply([]records.Record{{"route_id": "R1"}})

	want := records.Record{"route_id": "R1", "route_type": 700, "agency_id": "A"}
	if !reflect.DeepEqual(out[0], want) {
		t.Fatalf("Apply() = %#v, want %#v", out[0], want)
	}
}

func TestChainFilterThenMutate(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"trip_id": "T1", "stop_id": "S1"},
		{"trip_id": "", "stop_id": "S2"},
		{"trip_id": "T3", "stop_id": nil},
	}
	out := Chain{dropBlank{"trip_id"}, dropBlank{"stop_id"}, setField{"ok", true}}.Apply(in)
	if len(out) != 1 || out[0]["trip_id"] != "T1" || out[0]["ok"] != true {
		t.Fatalf("Apply() = %#v, want only T1 tagged", out)
	}

	allocs := testing.AllocsPerRun(200, func() {
		_ = Chain{dropBlank{"trip_id"}}.Apply(in[:1])
	})
	if allocs > 0.2 {
		t.Fatalf("allocs/op=%.2f; want ~0", allocs)
	}
}

func TestChainEmpty(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"a": 1}}
	if out := (Chain(nil)).Apply(in); &out[0] != &in[0] {
		t.Fatalf("nil chain should return the input slice")
	}
	if out := (Chain{setField{"a", 2}}).Apply(nil); out != nil {
		t.Fatalf("Apply(nil) = %#v, want nil", out)
	}
}

func BenchmarkChainStopTimes(b *testing.B) {
	const n = 20000
	in := make([]records.Record, n)
	for i := range in {
		in[i] = records.Record{"trip_id": "T", "stop_id": "S"}
	}
	c := Chain{dropBlank{"trip_id"}, dropBlank{"stop_id"}}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Apply(in)
	}
}
