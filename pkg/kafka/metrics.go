package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish metrics are labelled by topic and event type. Several event types
// share a topic family (todo.session.* carries issued and revoked), so the
// topic alone cannot tell them apart.
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_events_published_total",
			Help: "Events acknowledged by every in-sync Kafka replica",
		},
		[]string{"topic", "event_type"},
	)

	// EventPublishFailures counts events the brokers did not accept.
	// Publishing is best effort, so each one is an event consumers never see.
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_events_publish_failures_total",
			Help: "Events dropped because the Kafka write failed",
		},
		[]string{"topic", "event_type"},
	)

	// Writes wait for all acks and give up after WriteTimeout (5s by
	// default), so the buckets stop just above it.
	EventPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_event_publish_duration_seconds",
			Help:    "Time spent writing one event to Kafka",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 7.5},
		},
		[]string{"topic"},
	)

	EventPayloadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_event_payload_bytes",
			Help:    "Size of the serialized event envelope",
			Buckets: prometheus.ExponentialBuckets(128, 2, 8),
		},
		[]string{"topic"},
	)
)
