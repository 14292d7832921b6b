package app

import (
	"context"
	"io"
	"sync"

	"github.com/mselser95/polymarket-arb/internal/circuitbreaker"
	"github.com/mselser95/polymarket-arb/internal/coordinator"
	"github.com/mselser95/polymarket-arb/internal/discovery"
	"github.com/mselser95/polymarket-arb/internal/execution"
	"github.com/mselser95/polymarket-arb/internal/feed"
	"github.com/mselser95/polymarket-arb/internal/heartbeat"
	"github.com/mselser95/polymarket-arb/internal/ingest"
	"github.com/mselser95/polymarket-arb/internal/ledger"
	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"github.com/mselser95/polymarket-arb/pkg/config"
	"github.com/mselser95/polymarket-arb/pkg/healthprobe"
	"github.com/mselser95/polymarket-arb/pkg/httpserver"
	"github.com/mselser95/polymarket-arb/pkg/websocket"
	"go.uber.org/zap"
)

// App is the main application orchestrator: it owns every long-running
// component and the channels that wire them together.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server

	table            *priceboard.Table
	wsPool           *websocket.Pool
	feedAdapter      *feed.Adapter
	orderClient      *execution.OrderClient
	discoveryAdapter *discovery.Adapter
	ledgerStore      ports.Persistence
	ledgerStoreClose io.Closer
	discoveryCache   io.Closer

	ledger    *ledger.Ledger
	breaker   *circuitbreaker.Breaker
	requests  chan coordinator.ExecutionRequest
	ingest    *ingest.Loop
	coord     *coordinator.Coordinator
	heartbeat *heartbeat.Reporter

	tokens []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options holds application options.
type Options struct {
	SingleMarket string // For debugging: slug of single market to track
}
