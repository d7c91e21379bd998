package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce                 sync.Once
	requestsTotal                *prometheus.CounterVec
	requestLatencySeconds        *prometheus.HistogramVec
	requestErrorsTotal           *prometheus.CounterVec
	notificationsDispatchedTotal *prometheus.CounterVec
	publishFanoutTotal           prometheus.Counter
	classCascadeDeletesTotal     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aula_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aula_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aula_request_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		notificationsDispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aula_notifications_dispatched_total",
			Help: "Total number of notifications persisted, labelled by type.",
		}, []string{"type"})

		publishFanoutTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aula_publish_fanout_total",
			Help: "Total number of per-student notifications triggered by assignment publishes.",
		})

		classCascadeDeletesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aula_class_cascade_deletes_total",
			Help: "Total number of completed class cascade deletions.",
		})

		prometheus.MustRegister(
			requestsTotal,
			requestLatencySeconds,
			requestErrorsTotal,
			notificationsDispatchedTotal,
			publishFanoutTotal,
			classCascadeDeletesTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram for API requests.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// RequestErrors exposes the counter for API error responses.
func RequestErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return requestErrorsTotal
}

// NotificationsDispatchedTotal exposes the counter for dispatched notifications.
func NotificationsDispatchedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsDispatchedTotal
}

// PublishFanoutTotal exposes the counter for publish fan-out volume.
func PublishFanoutTotal() prometheus.Counter {
	RegisterMetrics()
	return publishFanoutTotal
}

// ClassCascadeDeletesTotal exposes the counter for class cascade deletions.
func ClassCascadeDeletesTotal() prometheus.Counter {
	RegisterMetrics()
	return classCascadeDeletesTotal
}
