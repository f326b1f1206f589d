package pipeline

import (
	"log"
	"sync"
	"time"
)

// Status is the outcome of one table.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusDrift   Status = "drift" // check mode: artifact on disk differs
)

// TableResult is what happened to one table.
type TableResult struct {
	Table      string
	Source     string
	Status     Status
	Reason     string // skip reason
	Output     string // artifact path
	Rows       int
	Statements int
	Malformed  int
	Loaded     int64
	Diff       string
	Err        error
}

// Report tallies a run.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration

	mu     sync.Mutex
	Tables []TableResult
}

func (r *Report) add(tr TableResult) {
	r.mu.Lock()
	r.Tables = append(r.Tables, tr)
	r.mu.Unlock()
}

// Count returns the number of tables with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, t := range r.Tables {
		if t.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether no table failed or drifted.
func (r *Report) OK() bool {
	return r.Count(StatusFailed) == 0 && r.Count(StatusDrift) == 0
}

// Log writes one line per failed table and a summary line.
func (r *Report) Log(stage string) {
	for _, t := range r.Tables {
		if t.Status == StatusFailed {
			log.Printf("%s: run=%s table=%s failed: %v", stage, r.RunID, t.Table, t.Err)
		}
	}
	log.Printf("%s: run=%s done ok=%d skipped=%d failed=%d drift=%d elapsed=%s",
		stage, r.RunID, r.Count(StatusOK), r.Count(StatusSkipped), r.Count(StatusFailed), r.Count(StatusDrift),
		r.Duration.Truncate(time.Millisecond))
}
