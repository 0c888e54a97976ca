package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperationLatency records record store latency by backend and operation.
	StoreOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialfeed_store_operation_latency_seconds",
		Help:    "Record store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	// StoreErrors counts record store failures by backend and operation.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_store_errors_total",
		Help: "Total number of record store errors",
	}, []string{"backend", "operation"})

	// CorruptBlobs counts collections that failed to decode and were treated as empty.
	CorruptBlobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_corrupt_blobs_total",
		Help: "Total number of undecodable collections treated as empty",
	}, []string{"collection"})

	// Mutations counts service mutations by operation and outcome.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_mutations_total",
		Help: "Total number of mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	// NotificationsEmitted counts delivered notifications by kind.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_notifications_emitted_total",
		Help: "Total number of notifications appended to inboxes",
	}, []string{"kind"})

	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// TrackStoreOperation returns a function that records latency when called (e.g. defer).
func TrackStoreOperation(backend, operation string) func() {
	start := time.Now()
	return func() {
		StoreOperationLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	}
}

// RecordMutation increments the mutation counter for operation with the outcome derived from err.
func RecordMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Mutations.WithLabelValues(operation, outcome).Inc()
}
