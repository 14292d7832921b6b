package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CircuitBreakerTotalPosition tracks the current aggregate position.
	CircuitBreakerTotalPosition = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_arb_circuit_breaker_total_position",
		Help: "Current aggregate open position across all markets",
	})

	// CircuitBreakerDailyPnL tracks realized P&L for the current day.
	CircuitBreakerDailyPnL = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_arb_circuit_breaker_daily_pnl_usd",
		Help: "Realized profit and loss for the current trading day",
	})

	// CircuitBreakerConsecutiveErrors tracks the current error streak.
	CircuitBreakerConsecutiveErrors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_arb_circuit_breaker_consecutive_errors",
		Help: "Current consecutive order-client error count",
	})

	// CircuitBreakerTripsTotal counts halts by reason.
	CircuitBreakerTripsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_arb_circuit_breaker_trips_total",
			Help: "Total number of circuit breaker trips by reason",
		},
		[]string{"reason"},
	)
)
