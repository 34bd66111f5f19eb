package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifp/vicidial-cli/internal/api"
)

func TestRecorder_ObserveCall(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	r.ObserveCall(api.ActionAddLead, api.OutcomeSuccess, 120*time.Millisecond, nil)
	r.ObserveCall(api.ActionAddLead, api.OutcomeSuccess, 80*time.Millisecond, nil)
	r.ObserveCall(api.ActionAddLead, api.OutcomeError, 50*time.Millisecond, nil)
	r.ObserveCall(api.ActionAddLead, api.OutcomeNone, time.Second, &api.TransportError{StatusCode: 500, Err: errors.New("boom")})
	r.ObserveCall(api.ActionAddLead, api.OutcomeNone, 15*time.Second, &api.TransportError{Err: context.DeadlineExceeded})
	r.ObserveCall(api.ActionAddLead, api.OutcomeNone, time.Millisecond, &api.TransportError{Err: errors.New("connection refused")})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.calls.WithLabelValues("add_lead", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("add_lead", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transportErrors.WithLabelValues("add_lead", "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transportErrors.WithLabelValues("add_lead", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transportErrors.WithLabelValues("add_lead", "network")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_AsGatewayObserver(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	g := api.NewGateway(stubExecutor{body: "SUCCESS: add_lead LEAD HAS BEEN ADDED"})
	g.SetObserver(r)
	g.SetHost("dialer.example.com").SetUser("api").SetPass("secret")
	require.NoError(t, g.SetAction(api.ActionAddLead))
	require.NoError(t, g.AddParams(
		api.Param{Name: "phone_number", Value: "5551234567"},
		api.Param{Name: "phone_code", Value: "1"},
		api.Param{Name: "list_id", Value: "30000"},
		api.Param{Name: "source", Value: "test"},
	))

	ok, err := g.Invoke(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("add_lead", "success")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)
	r.ObserveCall(api.ActionAddLead, api.OutcomeUnknown, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "vicidial.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `vicidial_api_calls_total{action="add_lead",outcome="unknown"} 1`)
	assert.Contains(t, string(data), "vicidial_api_call_duration_seconds_bucket")
}

func TestRecorder_WriteTextfileBadDir(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)
	err = r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.ErrorContains(t, err, "failed to write metrics textfile")
}

type stubExecutor struct {
	body string
	err  error
}

func (s stubExecutor) Get(_ context.Context, uri string, _ time.Duration, _ string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty uri")
	}
	return []byte(s.body), s.err
}
