// Package prometheus adapts the docstore MetricsRecorder contract to a
// prometheus registry.
package prometheus

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-docstore/core"
)

// Recorder registers one counter and one histogram keyed by operation and
// status; the metric name emitted by the core selects the operation label.
type Recorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docstore_operations_total",
			Help: "Document store operations by operation and status.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docstore_operation_duration_ms",
			Help:    "Document store operation latency in milliseconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
	reg.MustRegister(r.operations, r.durations)
	return r
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || r.operations == nil {
		return
	}
	operation, status := labelsFrom(name, tags)
	r.operations.WithLabelValues(operation, status).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil || r.durations == nil {
		return
	}
	operation, status := labelsFrom(name, tags)
	r.durations.WithLabelValues(operation, status).Observe(value)
}

func labelsFrom(name string, tags map[string]string) (string, string) {
	operation := strings.TrimSpace(tags["operation"])
	if operation == "" {
		operation = strings.TrimSpace(name)
	}
	status := strings.TrimSpace(tags["status"])
	if status == "" {
		status = "unknown"
	}
	return operation, status
}

var _ core.MetricsRecorder = (*Recorder)(nil)
