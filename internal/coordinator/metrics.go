package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsRejectedTotal counts execution requests dropped by breaker
	// admission rules.
	RequestsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_arb_coordinator_requests_rejected_total",
		Help: "Total execution requests rejected by the circuit breaker",
	})

	// RequestsStaleTotal counts requests dropped because a fresh price
	// reload showed the opportunity had already closed.
	RequestsStaleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_arb_coordinator_requests_stale_total",
		Help: "Total execution requests dropped after a stale profitability recheck",
	})

	// DetectionToDispatchNanos tracks the latency between detection and
	// dispatch, in nanoseconds.
	DetectionToDispatchNanos = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_arb_coordinator_detection_to_dispatch_nanos",
		Help:    "Nanoseconds between opportunity detection and order dispatch",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 12),
	})
)
