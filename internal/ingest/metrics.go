package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsUnresolvedTotal counts feed events whose token hash matched
	// neither index, indicating a feed/discovery mismatch.
	EventsUnresolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_arb_ingest_events_unresolved_total",
		Help: "Total feed events that could not be resolved to a market_id",
	})

	// RequestsDroppedTotal counts execution requests dropped because the
	// bounded channel to the coordinator was full.
	RequestsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_arb_ingest_requests_dropped_total",
		Help: "Total execution requests dropped due to a full coordinator channel",
	})
)
