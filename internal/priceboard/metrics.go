package priceboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowWritesTotal counts the row writes the ingest loop applies across
	// all rows.
	RowWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_arb_priceboard_row_writes_total",
		Help: "Total number of price table row writes",
	})

	// MarketsSeeded tracks the size of the price table after discovery.
	MarketsSeeded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_arb_priceboard_markets_seeded",
		Help: "Number of market pairs seeded into the price table",
	})
)
