package api

import (
	"context"
	"time"
)

// HTTPExecutor performs the GET round trip of a compiled URI.
//
// It is a dumb transport: it returns the full body of a 200 response and
// treats everything else (dial errors, timeouts, non-200 statuses) as a
// *TransportError. It does not interpret the body.
type HTTPExecutor interface {
	Get(ctx context.Context, uri string, timeout time.Duration, userAgent string) ([]byte, error)
}

// Observer is notified after every Invoke that reached the executor.
type Observer interface {
	ObserveCall(action Action, outcome Outcome, duration time.Duration, err error)
}
