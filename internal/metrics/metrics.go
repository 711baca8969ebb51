// Package metrics exposes Prometheus counters for the prediction endpoint on
// a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values.
const (
	StatusOK          = "ok"
	StatusClientError = "client_error"
	StatusError       = "error"
)

// PredictMetrics tracks prediction requests and routing outcomes.
type PredictMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	decisionsTotal  *prometheus.CounterVec
}

// NewPredictMetrics registers the prediction collectors on a fresh registry.
func NewPredictMetrics() *PredictMetrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civicroute",
			Subsystem: "predict",
			Name:      "requests_total",
			Help:      "Total image prediction requests by outcome.",
		},
		[]string{"status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "civicroute",
			Subsystem: "predict",
			Name:      "duration_seconds",
			Help:      "Image prediction latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civicroute",
			Name:      "decisions_total",
			Help:      "Routing decisions by department.",
		},
		[]string{"department"},
	)

	registry.MustRegister(requestsTotal, requestDuration, decisionsTotal)

	return &PredictMetrics{
		registry:        registry,
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		decisionsTotal:  decisionsTotal,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PredictMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one prediction request.
func (m *PredictMetrics) ObserveRequest(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.requestsTotal.WithLabelValues(status).Inc()
	m.requestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDecision counts a decision routed to department.
func (m *PredictMetrics) RecordDecision(department string) {
	m.decisionsTotal.WithLabelValues(department).Inc()
}
