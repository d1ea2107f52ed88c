// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records classification outcomes and service
// availability as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for classifications.
const (
	OutcomeSuccess   = "success"
	OutcomeEncoding  = "encoding"
	OutcomeTransport = "transport"
	OutcomeServer    = "server"
	OutcomeFallback  = "fallback"
)

// Operation label values for history writes.
const (
	OpAppend = "append"
	OpClear  = "clear"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics is a prometheus.Collector over the sporeid counters.
type Metrics struct {
	registry *prometheus.Registry

	classificationsTotal *prometheus.CounterVec
	classifyDuration     *prometheus.HistogramVec
	historyOpsTotal      *prometheus.CounterVec
	healthProbesTotal    *prometheus.CounterVec
	healthProbeDuration  prometheus.Histogram
	serverUp             prometheus.Gauge
}

// New creates the metrics and registers them with registry. A nil
// registry gets a fresh one.
func New(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sporeid_classifications_total",
			Help: "Total number of classifications by outcome",
		},
		[]string{"outcome"},
	)

	m.classifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sporeid_classify_duration_seconds",
			Help: "Time taken by a prediction round trip",
			// 10ms to ~20s, past the default read timeout.
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"outcome"},
	)

	m.historyOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sporeid_history_operations_total",
			Help: "Total number of history store writes",
		},
		[]string{"operation", "status"},
	)

	m.healthProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sporeid_health_probes_total",
			Help: "Total number of health probes by result",
		},
		[]string{"status"},
	)

	m.healthProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sporeid_health_probe_duration_seconds",
			Help:    "Time taken by a health probe",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	m.serverUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sporeid_server_up",
			Help: "Whether the last health probe succeeded (1) or not (0)",
		},
	)
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.classificationsTotal.Describe(ch)
	m.classifyDuration.Describe(ch)
	m.historyOpsTotal.Describe(ch)
	m.healthProbesTotal.Describe(ch)
	m.healthProbeDuration.Describe(ch)
	m.serverUp.Describe(ch)
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.classificationsTotal.Collect(ch)
	m.classifyDuration.Collect(ch)
	m.historyOpsTotal.Collect(ch)
	m.healthProbesTotal.Collect(ch)
	m.healthProbeDuration.Collect(ch)
	m.serverUp.Collect(ch)
}

// RecordClassification counts a classification and, for round trips to
// the server, its latency. Pass a zero duration to skip the histogram.
func (m *Metrics) RecordClassification(outcome string, d time.Duration) {
	m.classificationsTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.classifyDuration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// RecordHistoryOp counts a history write.
func (m *Metrics) RecordHistoryOp(operation string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.historyOpsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHealthProbe counts a probe, observes its latency and sets the
// server_up gauge.
func (m *Metrics) RecordHealthProbe(up bool, d time.Duration) {
	status := StatusOK
	gauge := 1.0
	if !up {
		status = StatusError
		gauge = 0
	}
	m.healthProbesTotal.WithLabelValues(status).Inc()
	m.healthProbeDuration.Observe(d.Seconds())
	m.serverUp.Set(gauge)
}
