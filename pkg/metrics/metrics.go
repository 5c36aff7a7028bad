package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VersionSaves counts version snapshot attempts by outcome (created|deduplicated|error).
	VersionSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tago_worker_version_saves_total",
			Help: "Total number of analysis version save operations",
		},
		[]string{"outcome"},
	)

	// Rollbacks counts rollback operations by outcome (success|error).
	Rollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tago_worker_rollbacks_total",
			Help: "Total number of analysis rollbacks",
		},
		[]string{"outcome"},
	)

	// ConfigWrites counts persisted writes of the analyses config document.
	ConfigWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tago_worker_config_writes_total",
			Help: "Total number of analyses-config document writes",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tago_worker_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
