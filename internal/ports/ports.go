// Package ports declares the contracts the core depends on but does not
// implement itself: the feed, order client, discovery, and persistence
// collaborators are external to the arbitrage core and are specified here
// only as interfaces.
package ports

import (
	"context"

	"github.com/mselser95/polymarket-arb/pkg/types"
)

// Feed is an async source of top-of-book quote updates. Transport errors
// are reported as terminal events on the returned channel closing; the core
// re-drives the connection on error rather than treating it as fatal.
type Feed interface {
	// Subscribe starts streaming quote updates for the given tokens. The
	// returned channel is closed when the underlying transport terminates.
	Subscribe(ctx context.Context, tokens []string) (<-chan types.PriceEvent, error)
	Close() error
}

// FillResult is the outcome of one leg of a dispatched order.
type FillResult struct {
	FilledContracts int
	CostCents       int
	OrderID         string
}

// OrderClient places and closes orders against the venue. On any transport
// failure it returns a zero FillResult and a non-nil error.
type OrderClient interface {
	SubmitBuy(ctx context.Context, token string, priceCents, sizeCents int) (FillResult, error)
	SubmitSell(ctx context.Context, token string, priceCents, sizeCents int) (FillResult, error)
}

// Discovery produces the set of market pairs to trade. Idempotent; may be
// cached on disk by the concrete adapter. The core treats the returned
// pairs as an opaque set and makes no assumption about how they were found.
type Discovery interface {
	Discover(ctx context.Context, leagues []string) (pairs []types.MarketPair, errs []error)
}

// Persistence is a best-effort key/value blob store for the Ledger snapshot
// and the Discovery cache. No atomicity requirement beyond file-level
// replace; a failure here is a warning, never fatal.
type Persistence interface {
	SaveSnapshot(ctx context.Context, key string, blob []byte) error
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
}
