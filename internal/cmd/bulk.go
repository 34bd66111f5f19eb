package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// MaxConcurrency caps --concurrency so a batch cannot flood the dialer.
const MaxConcurrency = 50

// BulkResult represents the outcome of a single bulk operation. Skipped
// marks items never attempted because the context was cancelled first.
type BulkResult[R any] struct {
	Index   int
	Success bool
	Skipped bool
	Error   error
	Data    R
}

// runBulkOperation executes operation for every item with bounded
// parallelism. Results are returned in item order. An operation may report
// a failure together with data (for example an ERROR: body). Every item gets
// a result; items not started before cancellation come back as skipped.
func runBulkOperation[T, R any](
	ctx context.Context,
	items []T,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, item T) (R, error),
) []BulkResult[R] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	var mu sync.Mutex
	results := make([]BulkResult[R], 0, len(items))
	total := len(items)
	var done int64

	g, ctx := errgroup.WithContext(ctx)

	skip := func(i int, err error) {
		mu.Lock()
		results = append(results, BulkResult[R]{Index: i, Skipped: true, Error: err})
		mu.Unlock()
	}

	for i, item := range items {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				skip(i, context.Cause(ctx))
				return nil
			}
			defer sem.Release(1)

			if ctx.Err() != nil {
				skip(i, context.Cause(ctx))
				return nil
			}

			data, err := operation(ctx, item)

			mu.Lock()
			results = append(results, BulkResult[R]{
				Index:   i,
				Success: err == nil,
				Error:   err,
				Data:    data,
			})
			mu.Unlock()

			if progress && total > 0 {
				current := atomic.AddInt64(&done, 1)
				mu.Lock()
				_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", current, total)
				mu.Unlock()
			}

			return nil // don't fail the group on individual errors
		})
	}

	_ = g.Wait()

	if progress && total > 0 {
		_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d\n", atomic.LoadInt64(&done), total)
	}

	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })
	return results
}

// countResults returns success, failure and skipped counts from bulk results
func countResults[R any](results []BulkResult[R]) (success, failure, skipped int) {
	for _, r := range results {
		switch {
		case r.Success:
			success++
		case r.Skipped:
			skipped++
		default:
			failure++
		}
	}
	return
}
