package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transitsql/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, v *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := v.WithLabelValues(labels...).Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func summaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()
	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	return m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway", jobName: "nightly", wantErr: true},
		{name: "default job", gatewayURL: "http://pushgateway:9091", wantJobName: "transitsql"},
		{name: "explicit job", jobName: "nightly", gatewayURL: "http://pushgateway:9091", wantJobName: "nightly"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = %v, %v; want nil, error", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend(%q, %q) error = %v", tt.jobName, tt.gatewayURL, err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"table": "stops", "step": "load", "status": "success"})
	b.IncCounter(metrics.StepTotal, 2, metrics.Labels{"table": "stops", "step": "load", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 42, metrics.Labels{"table": "trips", "kind": metrics.KindLoaded})
	b.IncCounter(metrics.StatementsTotal, 3, metrics.Labels{"table": "trips"})
	b.IncCounter("unknown_metric", 9, nil)

	if got := counterValue(t, b.stepCounter, "stops", "load", "success"); got != 3 {
		t.Fatalf("step counter = %v, want 3", got)
	}
	if got := counterValue(t, b.rowCounter, "trips", metrics.KindLoaded); got != 42 {
		t.Fatalf("row counter = %v, want 42", got)
	}
	if got := counterValue(t, b.statementCounter, "trips"); got != 3 {
		t.Fatalf("statement counter = %v, want 3", got)
	}
}

func TestIncCounterNilCollectors(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter(metrics.StepTotal, 1, nil)
	b.IncCounter(metrics.RowsTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.ObserveHistogram(metrics.StepDuration, 0.5, metrics.Labels{"table": "shapes", "step": "generate", "status": "success"})
	b.ObserveHistogram(metrics.StepDuration, 1.5, metrics.Labels{"table": "stops", "step": "generate", "status": "success"})
	b.ObserveHistogram("other", 100, metrics.Labels{"step": "generate", "status": "success"})

	count, sum := summaryCountSum(t, b.stepDuration, "generate", "success")
	if count != 2 || sum != 2 {
		t.Fatalf("summary = (%d, %v), want (2, 2)", count, sum)
	}
}

func TestFlush(t *testing.T) {
	t.Parallel()

	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	b, err := NewBackend("nightly", server.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RowsTotal, 7, metrics.Labels{"table": "routes", "kind": metrics.KindEmitted})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if gotPath != "/metrics/job/nightly" {
		t.Fatalf("push path = %q, want /metrics/job/nightly", gotPath)
	}
	if !strings.Contains(gotBody, metrics.RowsTotal) {
		t.Fatalf("pushed body does not mention %s", metrics.RowsTotal)
	}
}

func BenchmarkIncCounterRows(b *testing.B) {
	be, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		b.Fatalf("NewBackend: %v", err)
	}
	lbls := metrics.Labels{"table": "stop_times", "kind": metrics.KindEmitted}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		be.IncCounter(metrics.RowsTotal, 1, lbls)
	}
}
