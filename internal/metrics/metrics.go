// Package metrics records API call outcomes as Prometheus metrics.
//
// The CLI is short-lived, so metrics are exported through the node_exporter
// textfile collector format rather than served over HTTP.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ifp/vicidial-cli/internal/api"
)

const namespace = "vicidial"

// Recorder holds the call metrics of one CLI run. It implements api.Observer
// and is safe for concurrent use by several gateways.
type Recorder struct {
	registry *prometheus.Registry

	calls           *prometheus.CounterVec   // completed calls by action and outcome
	duration        *prometheus.HistogramVec // round trip latency by action
	transportErrors *prometheus.CounterVec   // failed round trips by action and kind
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "calls_total",
			Help:      "Completed non-agent API calls by classified outcome",
		}, []string{"action", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "call_duration_seconds",
			Help:      "Round trip duration of non-agent API calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"action"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "transport_errors_total",
			Help:      "Non-agent API calls that failed before a body was classified",
		}, []string{"action", "kind"}),
	}

	for _, c := range []prometheus.Collector{r.calls, r.duration, r.transportErrors} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return r, nil
}

// ObserveCall records one executor round trip.
func (r *Recorder) ObserveCall(action api.Action, outcome api.Outcome, d time.Duration, err error) {
	r.duration.WithLabelValues(string(action)).Observe(d.Seconds())
	if err != nil {
		r.transportErrors.WithLabelValues(string(action), errorKind(err)).Inc()
		return
	}
	r.calls.WithLabelValues(string(action), outcome.String()).Inc()
}

func errorKind(err error) string {
	if api.IsTimeout(err) {
		return "timeout"
	}
	var te *api.TransportError
	if errors.As(err, &te) && te.StatusCode != 0 {
		return "status"
	}
	return "network"
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
