package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Synchronization metrics
var (
	SyncRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_requests_total",
			Help: "Total number of synchronization requests by outcome.",
		},
		[]string{"status"},
	)

	AlignerAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aligner_attempts_total",
			Help: "Alignment attempts by aligner and outcome.",
		},
		[]string{"aligner", "status"},
	)

	FallbackInvocationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fallback_invocations_total",
			Help: "Requests where the primary aligner yielded no acceptable signal and the fallback ran.",
		},
	)

	StageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_stage_duration_seconds",
			Help:    "Wall-clock duration of each synchronization stage.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(
		SyncRequestsTotal,
		AlignerAttemptsTotal,
		FallbackInvocationsTotal,
		StageDurationSeconds,
	)
}
