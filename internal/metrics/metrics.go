// Package metrics provides Prometheus collectors for the task service and
// the client-side task store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vici_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vici_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	TaskMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vici_tasks_mutations_total",
			Help: "Total number of task mutations by operation and result",
		},
		[]string{"op", "result"},
	)
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vici_events_published_total",
			Help: "Total number of push events published",
		},
		[]string{"type"},
	)
	StoreCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vici_store_backend_calls_total",
			Help: "Backend calls issued by the task store by operation and result",
		},
		[]string{"op", "result"},
	)
	CommunicationUnread = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vici_communication_unread",
			Help: "Unread message count per communication service",
		},
		[]string{"service"},
	)
)

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordTaskMutation(op string, err error) {
	TaskMutations.WithLabelValues(op, result(err)).Inc()
}

func RecordEventPublished(eventType string) {
	EventsPublished.WithLabelValues(eventType).Inc()
}

func RecordStoreCall(op string, err error) {
	StoreCalls.WithLabelValues(op, result(err)).Inc()
}

func SetCommunicationUnread(service string, unread int) {
	CommunicationUnread.WithLabelValues(service).Set(float64(unread))
}
