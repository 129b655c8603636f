package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProcessedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outbox_processed_total", Help: "Total outbox events indexed into Elasticsearch"},
	)
	FailedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outbox_failed_total", Help: "Total outbox events that failed to index"},
	)
	DLQEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outbox_dlq_total", Help: "Total outbox events inserted into the DLQ"},
	)
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "workflow_transitions_total", Help: "Project workflow transitions by kind"},
		[]string{"transition"},
	)
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "room_messages_sent_total", Help: "Chat messages persisted by kind"},
		[]string{"kind"},
	)
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scheduled_jobs_total", Help: "Scheduled job executions by kind and outcome"},
		[]string{"kind", "outcome"},
	)
	ConcurrencyRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "workflow_version_conflicts_total", Help: "Project writes retried after a version conflict"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
)

func Register() {
	prometheus.MustRegister(ProcessedEvents, FailedEvents, DLQEvents, Transitions, MessagesSent, JobRuns, ConcurrencyRetries,
		HTTPRequests, HTTPDuration)
}
