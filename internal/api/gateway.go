package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ifp/vicidial-cli/internal/debug"
)

// CallOutcome is the retained result of the most recent completed call.
type CallOutcome struct {
	CallID   string        `json:"call_id"`
	Action   Action        `json:"action"`
	Outcome  Outcome       `json:"outcome"`
	Body     string        `json:"body"`
	Duration time.Duration `json:"duration_ns"`
}

// Gateway orchestrates one request/response cycle against the non-agent API
// and retains the last outcome. The embedded RequestBuilder carries the
// configuration.
//
// A Gateway is single-owner: callers needing concurrency use one Gateway per
// goroutine.
type Gateway struct {
	*RequestBuilder

	exec     HTTPExecutor
	observer Observer
	last     *CallOutcome
	newID    func() string
}

// NewGateway creates a gateway that sends requests through exec.
func NewGateway(exec HTTPExecutor) *Gateway {
	return &Gateway{
		RequestBuilder: NewRequestBuilder(),
		exec:           exec,
		newID:          uuid.NewString,
	}
}

// SetObserver installs a hook called after each executor round trip.
func (g *Gateway) SetObserver(o Observer) {
	g.observer = o
}

// Invoke compiles the URI, performs the request and classifies the body.
// It reports true only for a SUCCESS: response. Configuration errors are
// returned before any network attempt; transport errors leave the retained
// outcome untouched.
func (g *Gateway) Invoke(ctx context.Context) (bool, error) {
	uri, err := g.CompileURI()
	if err != nil {
		return false, err
	}

	callID := g.newID()
	action := g.Action()
	if debug.IsEnabled(ctx) {
		redacted, _ := g.RedactedURI()
		slog.Debug("api call", "call_id", callID, "action", action, "uri", redacted, "timeout", g.ConnectionTimeout())
	}

	start := time.Now()
	body, err := g.exec.Get(ctx, uri, g.ConnectionTimeout(), UserAgent)
	elapsed := time.Since(start)
	if err != nil {
		if !IsTransportError(err) {
			err = &TransportError{Err: err}
		}
		if debug.IsEnabled(ctx) {
			slog.Debug("api call failed", "call_id", callID, "duration", elapsed, "error", err)
		}
		g.observe(action, OutcomeNone, elapsed, err)
		return false, err
	}

	outcome := Classify(body)
	g.last = &CallOutcome{
		CallID:   callID,
		Action:   action,
		Outcome:  outcome,
		Body:     string(body),
		Duration: elapsed,
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("api call complete", "call_id", callID, "outcome", outcome, "duration", elapsed)
	}
	if outcome == OutcomeUnknown {
		slog.Warn("unrecognized API response", "call_id", callID, "action", action)
	}
	g.observe(action, outcome, elapsed, nil)
	return outcome == OutcomeSuccess, nil
}

func (g *Gateway) observe(action Action, outcome Outcome, d time.Duration, err error) {
	if g.observer != nil {
		g.observer.ObserveCall(action, outcome, d, err)
	}
}

// LastResponseMessage returns the raw body of the most recent completed call.
func (g *Gateway) LastResponseMessage() (string, error) {
	if g.last == nil {
		return "", ErrNoCallYet
	}
	return g.last.Body, nil
}

// LastOutcome returns a copy of the most recent completed call.
func (g *Gateway) LastOutcome() (CallOutcome, error) {
	if g.last == nil {
		return CallOutcome{}, ErrNoCallYet
	}
	return *g.last, nil
}
