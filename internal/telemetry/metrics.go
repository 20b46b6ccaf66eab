package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used by the message counters.
const (
	OutcomeOK         = "ok"
	OutcomeRetry      = "retry"
	OutcomeDropped    = "dropped"
	OutcomeDeadLetter = "dead_letter"
	OutcomeError      = "error"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	messagesConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "Messages handled by subscribers by outcome",
		},
		[]string{"topic", "outcome"},
	)

	messageHandleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_handle_duration_seconds",
			Help:    "Time spent handling a single delivery",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	messagesPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "Messages sent to the broker by outcome",
		},
		[]string{"topic", "outcome"},
	)

	outboxClaimedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_claimed_total",
			Help: "Outbox messages claimed by the relay",
		},
	)

	paymentProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_processed_total",
			Help: "Total number of payments processed",
		},
		[]string{"status"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notifications by final delivery status",
		},
		[]string{"kind", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesConsumedTotal,
		messageHandleDuration,
		messagesPublishedTotal,
		outboxClaimedTotal,
		paymentProcessedTotal,
		notificationsTotal,
	)
}

func ObserveHTTPRequest(method, endpoint, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

func RecordConsumed(topic, outcome string, seconds float64) {
	messagesConsumedTotal.WithLabelValues(topic, outcome).Inc()
	messageHandleDuration.WithLabelValues(topic).Observe(seconds)
}

func RecordPublished(topic, outcome string) {
	messagesPublishedTotal.WithLabelValues(topic, outcome).Inc()
}

func RecordOutboxClaimed(n int) {
	outboxClaimedTotal.Add(float64(n))
}

func RecordPaymentProcessed(status string) {
	paymentProcessedTotal.WithLabelValues(status).Inc()
}

func RecordNotification(kind, status string) {
	notificationsTotal.WithLabelValues(kind, status).Inc()
}
