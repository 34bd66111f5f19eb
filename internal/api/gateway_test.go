package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	uri       string
	timeout   time.Duration
	userAgent string
}

// fakeExecutor records every call and replays canned responses.
type fakeExecutor struct {
	calls []recordedCall
	body  string
	err   error
}

func (f *fakeExecutor) Get(_ context.Context, uri string, timeout time.Duration, userAgent string) ([]byte, error) {
	f.calls = append(f.calls, recordedCall{uri: uri, timeout: timeout, userAgent: userAgent})
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

type fakeObserver struct {
	outcomes []Outcome
	errs     []error
}

func (o *fakeObserver) ObserveCall(_ Action, outcome Outcome, _ time.Duration, err error) {
	o.outcomes = append(o.outcomes, outcome)
	o.errs = append(o.errs, err)
}

func newReadyGateway(t *testing.T, exec HTTPExecutor) *Gateway {
	t.Helper()
	g := NewGateway(exec)
	g.SetHost("example.com").SetUser("robot").SetPass("secret")
	require.NoError(t, g.SetAction(ActionAddLead))
	require.NoError(t, g.AddParams(
		Param{"phone_number", "100001"},
		Param{"phone_code", "44"},
		Param{"list_id", "30000"},
		Param{"source", "test"},
	))
	g.newID = func() string { return "call-1" }
	return g
}

func TestGateway_InvokeSuccess(t *testing.T) {
	exec := &fakeExecutor{body: "SUCCESS: add_lead LEAD HAS BEEN ADDED - 100001|30000|101|"}
	g := newReadyGateway(t, exec)
	g.SetConnectionTimeout(5 * time.Second)

	ok, err := g.Invoke(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, expectedURI, exec.calls[0].uri)
	assert.Equal(t, 5*time.Second, exec.calls[0].timeout)
	assert.Equal(t, "VicidialApiGateway", exec.calls[0].userAgent)

	msg, err := g.LastResponseMessage()
	require.NoError(t, err)
	assert.Equal(t, exec.body, msg)

	last, err := g.LastOutcome()
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, last.Outcome)
	assert.Equal(t, "call-1", last.CallID)
	assert.NoError(t, last.Err())
}

func TestGateway_InvokeErrorAndUnknown(t *testing.T) {
	tests := []struct {
		body string
		want Outcome
	}{
		{"ERROR: add_lead INVALID PHONE NUMBER LENGTH - 1|44", OutcomeError},
		{"<html>404</html>", OutcomeUnknown},
		{"", OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			g := newReadyGateway(t, &fakeExecutor{body: tt.body})
			ok, err := g.Invoke(context.Background())
			require.NoError(t, err)
			assert.False(t, ok)

			last, err := g.LastOutcome()
			require.NoError(t, err)
			assert.Equal(t, tt.want, last.Outcome)
			assert.Equal(t, tt.body, last.Body)

			var rErr *ResponseError
			require.ErrorAs(t, last.Err(), &rErr)
			assert.Equal(t, tt.want, rErr.Outcome)
		})
	}
}

func TestGateway_InvokeIncompleteConfigMakesNoCall(t *testing.T) {
	exec := &fakeExecutor{body: "SUCCESS: x"}
	g := NewGateway(exec)
	g.SetHost("example.com").SetUser("robot").SetPass("secret")
	require.NoError(t, g.SetAction(ActionAddLead))
	require.NoError(t, g.AddParam("phone_number", "100001"))

	ok, err := g.Invoke(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMissingRequiredParameter)
	assert.Empty(t, exec.calls)
}

func TestGateway_TransportFailureKeepsPreviousOutcome(t *testing.T) {
	exec := &fakeExecutor{body: "SUCCESS: first"}
	g := newReadyGateway(t, exec)
	obs := &fakeObserver{}
	g.SetObserver(obs)

	_, err := g.Invoke(context.Background())
	require.NoError(t, err)

	exec.err = errors.New("connection refused")
	ok, err := g.Invoke(context.Background())
	assert.False(t, ok)
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Contains(t, err.Error(), "connection refused")

	msg, err := g.LastResponseMessage()
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS: first", msg)

	assert.Equal(t, []Outcome{OutcomeSuccess, OutcomeNone}, obs.outcomes)
	assert.Nil(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
}

func TestGateway_TransportErrorPassedThrough(t *testing.T) {
	orig := &TransportError{StatusCode: 500, Err: errors.New("unexpected HTTP status 500")}
	g := newReadyGateway(t, &fakeExecutor{err: orig})

	_, err := g.Invoke(context.Background())
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Same(t, orig, tErr)
}

func TestGateway_NoCallYet(t *testing.T) {
	g := NewGateway(&fakeExecutor{})
	_, err := g.LastResponseMessage()
	assert.ErrorIs(t, err, ErrNoCallYet)
	_, err = g.LastOutcome()
	assert.ErrorIs(t, err, ErrNoCallYet)

	// A failed configuration does not count as a completed call.
	_, _ = g.Invoke(context.Background())
	_, err = g.LastResponseMessage()
	assert.ErrorIs(t, err, ErrNoCallYet)
}

func TestGateway_ReusableAfterMutation(t *testing.T) {
	exec := &fakeExecutor{body: "ERROR: duplicate"}
	g := newReadyGateway(t, exec)

	ok, err := g.Invoke(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.AddParam("first_name", "Fred"))
	msg, err := g.LastResponseMessage()
	require.NoError(t, err, "outcome stays retrievable after mutation")
	assert.Equal(t, "ERROR: duplicate", msg)

	exec.body = "SUCCESS: added"
	ok, err = g.Invoke(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, exec.calls, 2)
	assert.Contains(t, exec.calls[1].uri, "&first_name=Fred")

	msg, _ = g.LastResponseMessage()
	assert.Equal(t, "SUCCESS: added", msg)
}
