// Package heartbeat runs the periodic telemetry loop that reports price
// table coverage and the best candidate arbitrage gap, and wraps the feed
// connection with a fixed-delay reconnect retry distinct from the
// transport-level exponential backoff an adapter may use internally.
package heartbeat

import (
	"context"
	"time"

	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"go.uber.org/zap"
)

const defaultInterval = 60 * time.Second

// Config wires a Reporter to its collaborators.
type Config struct {
	Table          *priceboard.Table
	Logger         *zap.Logger
	Interval       time.Duration
	ThresholdCents int
	ForceDiscovery bool
}

// Reporter is the heartbeat's polling loop (blocking, one goroutine).
type Reporter struct {
	cfg Config
}

// New constructs a Reporter. Interval defaults to 60 seconds when unset.
func New(cfg Config) *Reporter {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &Reporter{cfg: cfg}
}

// Run starts the reporting loop (blocking).
func (r *Reporter) Run(ctx context.Context) {
	r.cfg.Logger.Info("heartbeat-starting",
		zap.Duration("interval", r.cfg.Interval),
		zap.Int("threshold-cents", r.cfg.ThresholdCents))

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.report()

	for {
		select {
		case <-ctx.Done():
			r.cfg.Logger.Info("heartbeat-stopping")
			return
		case <-ticker.C:
			r.report()
		}
	}
}

// report computes and logs/emits one snapshot of price table health.
func (r *Reporter) report() {
	quoted, total := r.cfg.Table.Coverage()
	MarketsQuoted.Set(float64(quoted))
	MarketsTotal.Set(float64(total))

	bestGap, found := r.bestGap()
	if found {
		BestGapCents.Set(float64(bestGap))
	}

	fields := []zap.Field{
		zap.Int("quoted", quoted),
		zap.Int("total", total),
		zap.Int("threshold-cents", r.cfg.ThresholdCents),
	}
	if found {
		fields = append(fields, zap.Int("best-gap-cents", bestGap))
	} else {
		fields = append(fields, zap.String("best-gap", "none"))
	}
	r.cfg.Logger.Info("heartbeat", fields...)
}

// bestGap returns the minimum yes+no sum across all fully-quoted rows, the
// tightest the market has come to a profitable pair this tick.
func (r *Reporter) bestGap() (int, bool) {
	total := r.cfg.Table.Len()
	best := 0
	found := false
	for id := 0; id < total; id++ {
		row := r.cfg.Table.GetByID(id)
		yes, no, _, _ := row.Load()
		if yes == priceboard.NoPrice || no == priceboard.NoPrice {
			continue
		}
		sum := yes + no
		if !found || sum < best {
			best = sum
			found = true
		}
	}
	return best, found
}

// RunReconnecting wraps connect in a fixed-delay retry loop: on a non-nil
// error it logs, waits delay, and tries again until ctx is canceled or
// connect succeeds without error.
func RunReconnecting(ctx context.Context, logger *zap.Logger, delay time.Duration, connect func(context.Context) error) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := connect(ctx)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		ReconnectAttemptsTotal.Inc()
		logger.Warn("reconnect-retry", zap.Error(err), zap.Duration("delay", delay))

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}
