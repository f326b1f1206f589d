// Package metrics records run-level counters and step timings for the
// generator, loader and GTFS cleaner behind a pluggable Backend.
//
// The default backend is a no-op, so callers never need to check whether
// metrics are configured. Concrete systems live in subpackages (prompush,
// datadog) and are installed once at startup with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal       = "transitsql_step_total"
	StepDuration    = "transitsql_step_duration_seconds"
	RowsTotal       = "transitsql_rows_total"
	StatementsTotal = "transitsql_statements_total"
)

// Row kinds passed to RecordRows.
const (
	KindRead      = "read"
	KindEmitted   = "emitted"
	KindMalformed = "malformed"
	KindSkipped   = "skipped"
	KindLoaded    = "loaded"
	KindDropped   = "dropped"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system must satisfy.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered data, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// Nop returns a backend that drops everything. It is the default.
func Nop() Backend { return nopBackend{} }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of step for table and observes its duration.
func RecordStep(table, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"table": table, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds delta rows of the given kind for table. Non-positive
// deltas are ignored.
func RecordRows(table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{"table": table, "kind": kind})
}

// RecordStatements counts INSERT statements (or COPY batches) for table.
func RecordStatements(table string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(StatementsTotal, float64(delta), Labels{"table": table})
}

// Timer returns a func that records step for table when called with the
// step's final error.
//
//	done := metrics.Timer("stops", "generate")
//	defer func() { done(err) }()
func Timer(table, step string) func(error) {
	start := time.Now()
	return func(err error) {
		RecordStep(table, step, err, time.Since(start))
	}
}
