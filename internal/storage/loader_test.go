package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func feed(rows ...[]any) <-chan []any {
	ch := make(chan []any, len(rows))
	for _, r := range rows {
		ch <- r
	}
	close(ch)
	return ch
}

func stopTimes(n int) [][]any {
	out := make([][]any, n)
	for i := range out {
		out[i] = []any{"T1", int64(i + 1)}
	}
	return out
}

func TestLoadBatchesSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rows  int
		batch int
		want  []int
	}{
		{"exact multiple", 6, 3, []int{3, 3}},
		{"tail batch", 7, 3, []int{3, 3, 1}},
		{"single batch", 2, 1000, []int{2}},
		{"no rows", 0, 10, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var sizes []int
			var cols []string
			copyFn := func(_ context.Context, columns []string, rows [][]any) (int64, error) {
				cols = columns
				sizes = append(sizes, len(rows))
				return int64(len(rows)), nil
			}
			n, err := LoadBatches(context.Background(), "gtfs_stop_times", []string{"trip_id", "stop_sequence"},
				feed(stopTimes(tt.rows)...), tt.batch, copyFn)
			if err != nil {
				t.Fatalf("LoadBatches: %v", err)
			}
			if n != int64(tt.rows) || !reflect.DeepEqual(sizes, tt.want) {
				t.Fatalf("LoadBatches = %d rows in batches %v, want %d in %v", n, sizes, tt.rows, tt.want)
			}
			if tt.rows > 0 && !reflect.DeepEqual(cols, []string{"trip_id", "stop_sequence"}) {
				t.Fatalf("columns = %v", cols)
			}
		})
	}
}

func TestLoadBatchesStopsOnCopyError(t *testing.T) {
	t.Parallel()

	boom := errors.New("unique violation")
	calls := 0
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return int64(len(rows)), nil
	}
	n, err := LoadBatches(context.Background(), "t", []string{"c"}, feed(stopTimes(6)...), 2, copyFn)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if n != 2 || calls != 2 {
		t.Fatalf("n=%d calls=%d, want 2 and 2", n, calls)
	}
}

func TestLoadBatchesRejectsBadArgs(t *testing.T) {
	t.Parallel()

	ok := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	if _, err := LoadBatches(context.Background(), "t", nil, feed(), 0, ok); err == nil {
		t.Fatal("batchSize 0 accepted")
	}
	if _, err := LoadBatches(context.Background(), "t", nil, feed(), 1, nil); err == nil {
		t.Fatal("nil copyFn accepted")
	}
}

func TestLoadBatchesCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan []any) // never closed
	done := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, "t", []string{"c"}, in, 10, func(context.Context, []string, [][]any) (int64, error) {
			return 0, nil
		})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("LoadBatches ignored cancellation")
	}
}
