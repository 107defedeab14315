// Package metrics exposes the Prometheus collectors for the client core.
// Collectors register on the default registry at init; hosts that serve
// /metrics pick them up automatically.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttemptsTotal counts operation attempts per outcome
	// (success, retryable, permanent).
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brevity_retry_attempts_total",
			Help: "Total number of operation attempts made by the retry executor",
		},
		[]string{"outcome"},
	)

	// RetryExhaustedTotal counts calls that used every attempt and still failed.
	RetryExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "brevity_retry_exhausted_total",
			Help: "Total number of calls that failed after exhausting all retry attempts",
		},
	)

	// BreakerState reports each breaker's current state
	// (0 = closed, 1 = open, 2 = half-open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "brevity_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"breaker"},
	)

	// BreakerRejectionsTotal counts calls rejected while a breaker was open.
	BreakerRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brevity_breaker_rejections_total",
			Help: "Total number of calls rejected by an open circuit breaker",
		},
		[]string{"breaker"},
	)

	// APIRequestLatency tracks API call latency per operation and error code.
	APIRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brevity_api_request_latency_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "code"},
	)
)
