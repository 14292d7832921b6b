// Package feed adapts the Polymarket WebSocket transport to the core's
// ports.Feed contract: it translates messages that carry an asks list (book
// snapshots), keyed by asset ID, into side-tagged types.PriceEvent values
// keyed by token hash. Messages without asks, such as price_change, produce
// no event.
package feed

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"github.com/mselser95/polymarket-arb/pkg/pricing"
	"github.com/mselser95/polymarket-arb/pkg/types"
	"go.uber.org/zap"
)

// Pool is the subset of *websocket.Pool the adapter depends on, narrowed
// for testability.
type Pool interface {
	Start() error
	Subscribe(ctx context.Context, tokenIDs []string) error
	MessageChan() <-chan *types.OrderbookMessage
	Close() error
}

// Config wires an Adapter to its collaborators.
type Config struct {
	Pool   Pool
	Logger *zap.Logger
	// Sides maps every YES and NO token this run cares about to its side,
	// built from the seeded market pairs before Subscribe is ever called.
	Sides map[string]types.Side
}

// Adapter implements ports.Feed on top of a pooled WebSocket transport.
type Adapter struct {
	cfg     Config
	mu      sync.Mutex
	started bool
	out     chan types.PriceEvent
}

// New constructs an Adapter.
func New(cfg Config) *Adapter {
	return &Adapter{cfg: cfg, out: make(chan types.PriceEvent, 1024)}
}

// Subscribe starts the pool on first call, subscribes to tokens, and
// returns the adapter's translated event channel. The channel is shared
// across calls and is closed when Close is called.
func (a *Adapter) Subscribe(ctx context.Context, tokens []string) (<-chan types.PriceEvent, error) {
	a.mu.Lock()
	first := !a.started
	if first {
		a.started = true
	}
	a.mu.Unlock()

	if first {
		if err := a.cfg.Pool.Start(); err != nil {
			return nil, fmt.Errorf("start websocket pool: %w", err)
		}
		go a.translate(ctx)
	}

	if err := a.cfg.Pool.Subscribe(ctx, tokens); err != nil {
		return nil, fmt.Errorf("subscribe tokens: %w", err)
	}

	return a.out, nil
}

// Close tears down the underlying pool and the translated channel.
func (a *Adapter) Close() error {
	err := a.cfg.Pool.Close()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		close(a.out)
		a.started = false
	}
	return err
}

// translate drains the pool's raw messages, converts them to PriceEvents,
// and forwards them until the pool's channel closes or ctx is canceled.
func (a *Adapter) translate(ctx context.Context) {
	msgs := a.cfg.Pool.MessageChan()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			a.handleMessage(msg)
		}
	}
}

func (a *Adapter) handleMessage(msg *types.OrderbookMessage) {
	side, ok := a.cfg.Sides[msg.AssetID]
	if !ok {
		return
	}

	priceCents, size, ok := bestAsk(msg)
	if !ok {
		return
	}

	select {
	case a.out <- types.PriceEvent{
		TokenHash:  priceboard.HashToken(msg.AssetID),
		Side:       side,
		PriceCents: priceCents,
		Size:       size,
	}:
	default:
		a.cfg.Logger.Warn("feed-adapter-channel-full", zap.String("asset-id", msg.AssetID))
	}
}

// bestAsk extracts the top ask from a book snapshot: the venue quotes asks
// sorted by price, so the first entry is the best (lowest).
func bestAsk(msg *types.OrderbookMessage) (priceCents, size int, ok bool) {
	if len(msg.Asks) == 0 {
		return 0, 0, false
	}
	level := msg.Asks[0]
	priceCents = pricing.ParsePrice(level.Price)
	if priceCents == 0 {
		return 0, 0, false
	}
	size, err := strconv.Atoi(level.Size)
	if err != nil {
		f, ferr := strconv.ParseFloat(level.Size, 64)
		if ferr != nil {
			return 0, 0, false
		}
		size = int(f)
	}
	return priceCents, size, true
}
