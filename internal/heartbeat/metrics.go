package heartbeat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarketsQuoted tracks the number of rows with both sides present.
	MarketsQuoted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_arb_heartbeat_markets_quoted",
		Help: "Number of market pairs with both sides currently quoted",
	})

	// MarketsTotal tracks the total number of seeded market pairs.
	MarketsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_arb_heartbeat_markets_total",
		Help: "Total number of market pairs seeded into the price table",
	})

	// BestGapCents tracks the tightest yes+no sum observed across all
	// fully-quoted rows on the last heartbeat tick.
	BestGapCents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_arb_heartbeat_best_gap_cents",
		Help: "Minimum yes+no price sum across fully-quoted rows on the last tick",
	})

	// ReconnectAttemptsTotal counts fixed-delay reconnect attempts driven
	// by the heartbeat's supervision wrapper.
	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_arb_heartbeat_reconnect_attempts_total",
		Help: "Total fixed-delay reconnect attempts for the feed connection",
	})
)
