// Package ingest drives the Price Table from a feed of quote events,
// invokes the detector on each affected row, and forwards profitable
// opportunities to the coordinator.
package ingest

import (
	"context"
	"time"

	"github.com/mselser95/polymarket-arb/internal/arbdetect"
	"github.com/mselser95/polymarket-arb/internal/coordinator"
	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"github.com/mselser95/polymarket-arb/pkg/types"
	"go.uber.org/zap"
)

// Config wires a Loop to its collaborators.
type Config struct {
	Feed           ports.Feed
	Table          *priceboard.Table
	Requests       chan<- coordinator.ExecutionRequest
	Logger         *zap.Logger
	ThresholdCents int
	Tokens         []string
	ReconnectDelay time.Duration
}

// Loop is the single consumer of the feed's quote-event stream. It resolves
// each event to a market_id, stores the affected side, and on a positive
// detection mask emits an ExecutionRequest with a non-blocking send.
type Loop struct {
	cfg Config
}

// New constructs a Loop. ReconnectDelay defaults to 3 seconds when unset.
func New(cfg Config) *Loop {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 3 * time.Second
	}
	if cfg.ThresholdCents <= 0 {
		cfg.ThresholdCents = arbdetect.DefaultThresholdCents
	}
	return &Loop{cfg: cfg}
}

// Run subscribes to the feed and processes events until ctx is canceled. On
// a transport failure it re-subscribes after ReconnectDelay; Price Table
// state is retained across reconnects and may be briefly stale.
func (l *Loop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		events, err := l.cfg.Feed.Subscribe(ctx, l.cfg.Tokens)
		if err != nil {
			l.cfg.Logger.Warn("feed-subscribe-error", zap.Error(err))
			if !sleepOrDone(ctx, l.cfg.ReconnectDelay) {
				return
			}
			continue
		}

		l.drain(ctx, events)

		if ctx.Err() != nil {
			return
		}
		l.cfg.Logger.Warn("feed-disconnected", zap.Duration("retry-in", l.cfg.ReconnectDelay))
		if !sleepOrDone(ctx, l.cfg.ReconnectDelay) {
			return
		}
	}
}

// drain processes events until the channel closes or ctx is canceled.
func (l *Loop) drain(ctx context.Context, events <-chan types.PriceEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			l.handleEvent(evt)
		}
	}
}

func (l *Loop) handleEvent(evt types.PriceEvent) {
	marketID, ok := l.resolve(evt)
	if !ok {
		EventsUnresolvedTotal.Inc()
		l.cfg.Logger.Debug("ingest-unresolved-token", zap.Uint64("token-hash", evt.TokenHash))
		return
	}

	now := time.Now().UnixNano()
	row := l.cfg.Table.GetByID(marketID)
	row.StoreSide(evt.Side, evt.PriceCents, evt.Size, now)
	priceboard.RowWritesTotal.Inc()

	yes, no, yesSz, noSz := row.Load()
	mask := arbdetect.CheckArbs(yes, no, l.cfg.ThresholdCents)
	if mask == 0 {
		return
	}

	pair := l.cfg.Table.PairByID(marketID)
	req := coordinator.ExecutionRequest{
		MarketID:        marketID,
		PairID:          pair.PairID,
		YesToken:        pair.YesToken,
		NoToken:         pair.NoToken,
		YesPriceCents:   yes,
		NoPriceCents:    no,
		YesSize:         yesSz,
		NoSize:          noSz,
		ArbType:         mask,
		DetectedAtNanos: now,
	}

	select {
	case l.cfg.Requests <- req:
	default:
		RequestsDroppedTotal.Inc()
		l.cfg.Logger.Info("execution-request-dropped",
			zap.String("pair-id", pair.PairID),
			zap.String("reason", "channel-full"))
	}
}

// resolve maps a feed event to a market_id via the side-appropriate hash
// index.
func (l *Loop) resolve(evt types.PriceEvent) (int, bool) {
	if evt.Side == types.SideYes {
		return l.cfg.Table.IDByYesHash(evt.TokenHash)
	}
	return l.cfg.Table.IDByNoHash(evt.TokenHash)
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
