// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Total number of error responses by error code",
		},
		[]string{"error_code", "category"},
	)

	RegistryMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_mutations_total",
			Help: "Total number of successful participant mutations",
		},
		[]string{"activity", "operation"},
	)

	RegistryParticipants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "registry_participants",
			Help: "Current number of participants per activity",
		},
		[]string{"activity"},
	)

	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_delivered_total",
			Help: "Total number of events delivered per sink",
		},
		[]string{"sink", "event_type"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "Total number of events a sink gave up on after retries",
		},
		[]string{"sink", "event_type"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Events dropped because the dispatch queue was full or closed",
		},
	)

	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_queue_depth",
			Help: "Number of events waiting for dispatch",
		},
	)
)
