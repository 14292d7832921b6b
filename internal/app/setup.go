package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mselser95/polymarket-arb/internal/circuitbreaker"
	"github.com/mselser95/polymarket-arb/internal/coordinator"
	"github.com/mselser95/polymarket-arb/internal/discovery"
	"github.com/mselser95/polymarket-arb/internal/execution"
	"github.com/mselser95/polymarket-arb/internal/feed"
	"github.com/mselser95/polymarket-arb/internal/heartbeat"
	"github.com/mselser95/polymarket-arb/internal/ingest"
	"github.com/mselser95/polymarket-arb/internal/ledger"
	"github.com/mselser95/polymarket-arb/internal/ledgerstore"
	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"github.com/mselser95/polymarket-arb/pkg/config"
	"github.com/mselser95/polymarket-arb/pkg/healthprobe"
	"github.com/mselser95/polymarket-arb/pkg/httpserver"
	"github.com/mselser95/polymarket-arb/pkg/types"
	"github.com/mselser95/polymarket-arb/pkg/websocket"
	"go.uber.org/zap"
)

// requestQueueSize bounds the ingest-to-coordinator channel; a full queue
// means the coordinator is the bottleneck and new requests are dropped.
const requestQueueSize = 256

// New builds and wires the full application from configuration. It runs
// one blocking discovery pass before returning, so the price table is
// seeded and frozen by the time Run is called.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthprobe.New(),
		ctx:           ctx,
		cancel:        cancel,
	}

	ledgerPersistence, ledgerCloser, err := newLedgerStore(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup ledger store: %w", err)
	}
	a.ledgerStore = ledgerPersistence
	a.ledgerStoreClose = ledgerCloser

	discoveryCache, err := newDiscoveryCacheStore(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup discovery cache: %w", err)
	}
	a.discoveryCache = discoveryCache

	a.discoveryAdapter = discovery.New(discovery.Config{
		Client:       discovery.NewClient(cfg.PolymarketGammaURL, logger),
		Persistence:  discoveryCache,
		CacheKey:     discoveryCacheKey(cfg.DiscoveryCachePath),
		TTL:          cfg.DiscoveryCacheTTL,
		ForceRefresh: cfg.ForceDiscovery,
		Logger:       logger,
	})

	leagues := cfg.PolyMarketSlugs
	if opts.SingleMarket != "" {
		leagues = []string{opts.SingleMarket}
	}

	pairs, discErrs := a.discoveryAdapter.Discover(ctx, leagues)
	for _, e := range discErrs {
		logger.Warn("discovery-error", zap.Error(e))
	}
	logger.Info("discovery-complete", zap.Int("pairs", len(pairs)))

	a.table = priceboard.New()
	sides := make(map[string]types.Side, len(pairs)*2)
	tokens := make([]string, 0, len(pairs)*2)
	for _, pair := range pairs {
		a.table.AddPair(pair)
		sides[pair.YesToken] = types.SideYes
		sides[pair.NoToken] = types.SideNo
		tokens = append(tokens, pair.YesToken, pair.NoToken)
	}
	a.table.Freeze()
	a.tokens = tokens

	a.wsPool = websocket.NewPool(websocket.PoolConfig{
		Size:                  1,
		WSUrl:                 cfg.PolymarketWSURL,
		DialTimeout:           10 * time.Second,
		PongTimeout:           60 * time.Second,
		PingInterval:          30 * time.Second,
		ReconnectInitialDelay: time.Second,
		ReconnectMaxDelay:     30 * time.Second,
		ReconnectBackoffMult:  2.0,
		MessageBufferSize:     256,
		Logger:                logger,
	})
	a.feedAdapter = feed.New(feed.Config{
		Pool:   a.wsPool,
		Logger: logger,
		Sides:  sides,
	})

	orderClient, err := newOrderClient(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup order client: %w", err)
	}
	a.orderClient = orderClient

	breaker, err := circuitbreaker.New(circuitbreaker.Config{
		MaxPositionPerMarket: cfg.CircuitMaxPositionPerMarket,
		MaxTotalPosition:     cfg.CircuitMaxTotalPosition,
		MaxDailyLoss:         cfg.CircuitMaxDailyLoss,
		MaxConsecutiveErrors: cfg.CircuitMaxConsecutiveErrors,
		CooldownSecs:         cfg.CircuitCooldownSecs,
		Enabled:              cfg.CircuitEnabled,
		Logger:               logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup circuit breaker: %w", err)
	}
	a.breaker = breaker

	a.ledger = ledger.New(logger, ledgerPersistence)

	a.requests = make(chan coordinator.ExecutionRequest, requestQueueSize)

	a.ingest = ingest.New(ingest.Config{
		Feed:           a.feedAdapter,
		Table:          a.table,
		Requests:       a.requests,
		Logger:         logger,
		ThresholdCents: cfg.ArbThresholdCents,
		Tokens:         tokens,
	})

	a.coord = coordinator.New(coordinator.Config{
		Requests:    a.requests,
		Table:       a.table,
		Breaker:     a.breaker,
		Ledger:      a.ledger,
		OrderClient: a.orderClient,
		Logger:      logger,
		DryRun:      cfg.DryRun,
	})

	a.heartbeat = heartbeat.New(heartbeat.Config{
		Table:          a.table,
		Logger:         logger,
		ThresholdCents: cfg.ArbThresholdCents,
		ForceDiscovery: cfg.ForceDiscovery,
	})

	a.httpServer = httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: a.healthChecker,
		Table:         a.table,
		Ledger:        a.ledger,
		Breaker:       a.breaker,
	})

	return a, nil
}

func newLedgerStore(cfg *config.Config, logger *zap.Logger) (ports.Persistence, interface{ Close() error }, error) {
	switch cfg.StorageMode {
	case "postgres":
		store, err := ledgerstore.NewPostgres(ledgerstore.Config{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		store := ledgerstore.NewConsole(logger)
		return store, store, nil
	}
}

// newDiscoveryCacheStore always backs the discovery cache with a local
// file, independent of STORAGE_MODE: the cache must survive a restart
// even when the ledger itself is console-only.
func newDiscoveryCacheStore(cfg *config.Config, logger *zap.Logger) (interface {
	ports.Persistence
	Close() error
}, error) {
	dir := filepath.Dir(cfg.DiscoveryCachePath)
	return ledgerstore.NewFile(dir, logger)
}

func discoveryCacheKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newOrderClient(cfg *config.Config, logger *zap.Logger) (*execution.OrderClient, error) {
	if cfg.DryRun && cfg.PolyPrivateKey == "" {
		// Dry-run needs a client capable of signing requests only if it is
		// ever invoked; the coordinator never calls it in dry-run mode, but
		// a throwaway key keeps construction uniform and side-effect free.
		return execution.NewOrderClient(&execution.OrderClientConfig{
			PrivateKey: "0000000000000000000000000000000000000000000000000000000000000001",
			Logger:     logger,
		})
	}
	return execution.NewOrderClient(&execution.OrderClientConfig{
		PrivateKey:   cfg.PolyPrivateKey,
		ProxyAddress: cfg.PolyFunder,
		Logger:       logger,
	})
}
