package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Deliveries tracks outbound webhook delivery attempts by engine and outcome
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_scheduler_deliveries_total",
			Help: "Total number of webhook delivery attempts",
		},
		[]string{"source", "status"},
	)

	// DeliveryDuration tracks outbound call duration
	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_scheduler_delivery_duration_seconds",
			Help:    "Webhook delivery duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// DueBatchSize tracks how many items each engine found due per tick
	DueBatchSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "webhook_scheduler_due_batch_size",
			Help: "Number of due items found in the last tick",
		},
		[]string{"engine"},
	)

	// MessagesCancelled tracks deferred message cancellations
	MessagesCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_scheduler_messages_cancelled_total",
			Help: "Total number of cancelled deferred messages",
		},
		[]string{"reason"},
	)

	// RateLimitExceeded tracks rate limit violations on the API
	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_scheduler_rate_limit_exceeded_total",
			Help: "Total number of rate limit exceeded events",
		},
	)
)
