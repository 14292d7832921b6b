package discovery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/pkg/types"
)

const cacheFetchLimit = 100

// Config wires an Adapter to its collaborators.
type Config struct {
	Client       *Client
	Persistence  ports.Persistence
	CacheKey     string
	TTL          time.Duration
	ForceRefresh bool
	Logger       *zap.Logger
}

// Adapter implements ports.Discovery over the Gamma API client, backed by a
// TTL cache on the supplied Persistence port. A fresh cache hit skips the
// network entirely; a stale or forced-refresh call does an incremental
// fetch and unions newly discovered slugs into the cached set.
type Adapter struct {
	cfg Config
}

// New constructs an Adapter. TTL defaults to 7200s if unset.
func New(cfg Config) *Adapter {
	if cfg.TTL <= 0 {
		cfg.TTL = 7200 * time.Second
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = "discovery-cache"
	}
	return &Adapter{cfg: cfg}
}

// Discover returns the current market-pair set, consulting the disk cache
// first unless ForceRefresh is set. leagues is a seed list of market slugs
// to ensure are covered in addition to whatever the cache already knows
// about; an empty list means "whatever the cache (or a fresh crawl) finds."
func (a *Adapter) Discover(ctx context.Context, leagues []string) ([]types.MarketPair, []error) {
	start := time.Now()
	defer func() { DiscoveryDurationSeconds.Observe(time.Since(start).Seconds()) }()

	now := time.Now().Unix()

	doc, hit := a.loadCache(ctx)
	fresh := hit && !a.cfg.ForceRefresh && now-doc.TimestampSecs < int64(a.cfg.TTL.Seconds())
	if fresh && supersetOf(doc.KnownPolySlugs, leagues) {
		a.cfg.Logger.Debug("discovery-cache-hit", zap.Int("pairs", len(doc.Pairs)))
		DiscoveryRunsTotal.WithLabelValues("cache_hit").Inc()
		DiscoveryPairsTotal.Set(float64(len(doc.Pairs)))
		return doc.Pairs, nil
	}

	pairs, knownSlugs, errs := a.crawl(ctx)
	DiscoveryRunsTotal.WithLabelValues("crawled").Inc()
	DiscoveryErrorsTotal.Add(float64(len(errs)))

	if hit {
		knownSlugs = unionSlugs(doc.KnownPolySlugs, knownSlugs)
		pairs = mergePairs(doc.Pairs, pairs)
	}
	knownSlugs = unionSlugs(knownSlugs, leagues)

	a.saveCache(ctx, cacheDoc{
		TimestampSecs:  now,
		Pairs:          pairs,
		KnownPolySlugs: knownSlugs,
	})

	DiscoveryPairsTotal.Set(float64(len(pairs)))
	return pairs, errs
}

func (a *Adapter) loadCache(ctx context.Context) (cacheDoc, bool) {
	blob, err := a.cfg.Persistence.LoadSnapshot(ctx, a.cfg.CacheKey)
	if err != nil {
		a.cfg.Logger.Warn("discovery-cache-load-failed", zap.Error(err))
		return cacheDoc{}, false
	}
	doc, ok := decodeCache(blob)
	return doc, ok
}

func (a *Adapter) saveCache(ctx context.Context, doc cacheDoc) {
	blob, err := encodeCache(doc)
	if err != nil {
		a.cfg.Logger.Warn("discovery-cache-encode-failed", zap.Error(err))
		return
	}
	if err := a.cfg.Persistence.SaveSnapshot(ctx, a.cfg.CacheKey, blob); err != nil {
		a.cfg.Logger.Warn("discovery-cache-save-failed", zap.Error(err))
	}
}

// crawl paginates the Gamma API once, returning every active binary market
// as a pair along with the slugs it observed.
func (a *Adapter) crawl(ctx context.Context) ([]types.MarketPair, []string, []error) {
	var (
		pairs []types.MarketPair
		slugs []string
		errs  []error
	)

	offset := 0
	for {
		resp, err := a.cfg.Client.FetchActiveMarkets(ctx, cacheFetchLimit, offset, "volume24hr")
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch markets at offset %d: %w", offset, err))
			break
		}

		for i := range resp.Data {
			market := &resp.Data[i]
			pair, ok := marketToPair(market)
			if !ok {
				continue
			}
			pairs = append(pairs, pair)
			slugs = append(slugs, market.Slug)
		}

		if len(resp.Data) < cacheFetchLimit {
			break
		}
		offset += cacheFetchLimit
	}

	return pairs, slugs, errs
}

// marketToPair converts a Gamma API market into a MarketPair, rejecting
// markets that are not a binary YES/NO contract.
func marketToPair(market *types.Market) (types.MarketPair, bool) {
	yes := market.GetTokenByOutcome("YES")
	no := market.GetTokenByOutcome("NO")
	if yes == nil || no == nil {
		return types.MarketPair{}, false
	}
	return types.MarketPair{
		PairID:      market.ID,
		Description: market.Question,
		YesToken:    yes.TokenID,
		NoToken:     no.TokenID,
	}, true
}

// mergePairs unions cached and freshly crawled pairs by PairID, preferring
// the freshly crawled copy when both have the same ID.
func mergePairs(cached, fresh []types.MarketPair) []types.MarketPair {
	byID := make(map[string]types.MarketPair, len(cached)+len(fresh))
	order := make([]string, 0, len(cached)+len(fresh))
	for _, p := range cached {
		if _, ok := byID[p.PairID]; !ok {
			order = append(order, p.PairID)
		}
		byID[p.PairID] = p
	}
	for _, p := range fresh {
		if _, ok := byID[p.PairID]; !ok {
			order = append(order, p.PairID)
		}
		byID[p.PairID] = p
	}
	out := make([]types.MarketPair, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func supersetOf(known []string, required []string) bool {
	set := make(map[string]struct{}, len(known))
	for _, s := range known {
		set[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
