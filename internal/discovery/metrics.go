package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DiscoveryRunsTotal counts Discover calls, split by whether they hit
	// the cache or crawled the Gamma API.
	DiscoveryRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_discovery_runs_total",
		Help: "Total number of Discover invocations by outcome",
	}, []string{"outcome"})

	// DiscoveryDurationSeconds tracks how long a single Discover call took.
	DiscoveryDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_discovery_duration_seconds",
		Help:    "Duration of a single Discover call",
		Buckets: prometheus.DefBuckets,
	})

	// DiscoveryPairsTotal is the size of the pair set returned by the most
	// recent Discover call.
	DiscoveryPairsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_discovery_pairs_total",
		Help: "Number of market pairs returned by the most recent discovery run",
	})

	// DiscoveryErrorsTotal counts errors surfaced by a crawl.
	DiscoveryErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_discovery_errors_total",
		Help: "Total number of errors encountered while crawling the Gamma API",
	})
)
