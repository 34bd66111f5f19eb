package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunBulkOperation_OrderAndCounts(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	var buf bytes.Buffer

	results := runBulkOperation(context.Background(), items, 3, true, &buf, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		if n == 4 {
			return n * 10, errors.New("four failed")
		}
		return n * 10, nil
	})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.Data != items[i]*10 {
			t.Errorf("result %d data = %d, want %d", i, r.Data, items[i]*10)
		}
	}
	if results[2].Success || results[2].Error == nil {
		t.Error("expected item 2 to fail with its data kept")
	}

	ok, failed, skipped := countResults(results)
	if ok != 4 || failed != 1 || skipped != 0 {
		t.Errorf("countResults = %d/%d/%d, want 4/1/0", ok, failed, skipped)
	}
	if !strings.Contains(buf.String(), "Processed 5/5\n") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestRunBulkOperation_BoundedConcurrency(t *testing.T) {
	items := make([]int, 20)
	var inFlight, peak int64

	runBulkOperation(context.Background(), items, 4, false, nil, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return struct{}{}, nil
	})

	if peak > 4 {
		t.Errorf("peak concurrency = %d, want <= 4", peak)
	}
}

func TestRunBulkOperation_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	results := runBulkOperation(ctx, []int{1, 2, 3}, 1, false, nil, func(_ context.Context, _ int) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 0, nil
	})
	if calls != 0 {
		t.Errorf("expected no work after cancellation, got %d calls", calls)
	}
	if len(results) != 3 {
		t.Fatalf("expected every item reported, got %d results", len(results))
	}
	for i, r := range results {
		if r.Index != i || !r.Skipped || r.Success || !errors.Is(r.Error, context.Canceled) {
			t.Errorf("result %d = %+v, want skipped with context.Canceled", i, r)
		}
	}
	if ok, failed, skipped := countResults(results); ok != 0 || failed != 0 || skipped != 3 {
		t.Errorf("countResults = %d/%d/%d, want 0/0/3", ok, failed, skipped)
	}
}
