package discovery

import "testing"

func TestMetrics_Registration(t *testing.T) {
	if DiscoveryRunsTotal == nil {
		t.Error("DiscoveryRunsTotal not registered")
	}
	if DiscoveryDurationSeconds == nil {
		t.Error("DiscoveryDurationSeconds not registered")
	}
	if DiscoveryPairsTotal == nil {
		t.Error("DiscoveryPairsTotal not registered")
	}
	if DiscoveryErrorsTotal == nil {
		t.Error("DiscoveryErrorsTotal not registered")
	}
}

func TestMetrics_CounterIncrement(t *testing.T) {
	DiscoveryRunsTotal.WithLabelValues("cache_hit").Inc()
	DiscoveryRunsTotal.WithLabelValues("crawled").Inc()
	DiscoveryErrorsTotal.Inc()
}

func TestMetrics_HistogramObserve(t *testing.T) {
	DiscoveryDurationSeconds.Observe(0.25)
}

func TestMetrics_GaugeSet(t *testing.T) {
	DiscoveryPairsTotal.Set(3)
}
