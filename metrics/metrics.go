// Package metrics exposes Prometheus instruments for chat memory store
// operations. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// ResultOK labels successful operations.
	ResultOK = "ok"
	// ResultError labels failed operations.
	ResultError = "error"
)

// Metrics groups the instruments recorded by the session message store.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	MalformedRecords  prometheus.Counter
}

// New creates the instruments and registers them with reg. A nil reg leaves
// them unregistered, which is handy in tests.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Chat memory store operations by operation and result.",
		}, []string{"operation", "result"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of chat memory store operations.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		MalformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_records_total",
			Help:      "Stored list entries that failed to decode.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.OperationDuration, m.MalformedRecords)
	}
	return m
}

// Observe records one finished operation.
func (m *Metrics) Observe(op string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(dur.Seconds())
}

// MalformedRecord counts one undecodable entry.
func (m *Metrics) MalformedRecord() {
	if m == nil {
		return
	}
	m.MalformedRecords.Inc()
}
