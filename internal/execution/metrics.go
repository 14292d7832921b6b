package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersSubmittedTotal counts order submissions by side and outcome.
	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_execution_orders_submitted_total",
		Help: "Total number of orders submitted to the CLOB by side and outcome",
	}, []string{"side", "outcome"})

	// OrderSubmissionDurationSeconds tracks REST submission latency.
	OrderSubmissionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_execution_order_submission_duration_seconds",
		Help:    "Duration of a single order submission REST call",
		Buckets: prometheus.DefBuckets,
	})
)
