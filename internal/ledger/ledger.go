// Package ledger records fills against per-pair positions and computes
// matched/unmatched exposure, weighted average cost, and realized P&L.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/pkg/types"
	"go.uber.org/zap"
)

// ErrUnresolvedExposure is returned by Resolve when a position still has
// unmatched exposure; a closing fill must be recorded first.
var ErrUnresolvedExposure = errors.New("ledger: position has unresolved unmatched exposure")

// FillRecord is one leg of a trade, as recorded by the coordinator.
type FillRecord struct {
	PairID      string
	Description string
	Venue       string
	Side        types.Side
	Contracts   int // signed: positive = buy, negative = sell/close
	Price       float64
	Fees        float64
	OrderID     string
	Timestamp   time.Time
}

// Summary is a point-in-time snapshot across all positions.
type Summary struct {
	OpenPositions          int
	TotalContracts         int
	TotalCostBasis         float64
	TotalUnmatchedExposure int
	TotalGuaranteedProfit  float64
	DailyRealizedPnL       float64
	AllTimePnL             float64
}

// Ledger is the single-writer, many-reader position book.
type Ledger struct {
	mu         sync.RWMutex
	positions  map[string]*ArbPosition
	dailyPnL   float64
	allTimePnL float64

	logger      *zap.Logger
	persistence ports.Persistence
	saveCh      chan struct{}
}

// New creates an empty Ledger. persistence may be nil, in which case
// snapshotting is a no-op.
func New(logger *zap.Logger, persistence ports.Persistence) *Ledger {
	return &Ledger{
		positions:   make(map[string]*ArbPosition),
		logger:      logger,
		persistence: persistence,
		saveCh:      make(chan struct{}, 1),
	}
}

// RecordFill applies one fill to the matching position, creating it on
// first fill. It is the only mutator of ledger state and takes the write
// lock for the duration of this single application.
func (l *Ledger) RecordFill(fill FillRecord) {
	l.mu.Lock()

	pos, ok := l.positions[fill.PairID]
	if !ok {
		pos = &ArbPosition{PairID: fill.PairID, Status: StatusOpen}
		l.positions[fill.PairID] = pos
	}

	leg := pos.legFor(fill.Side)
	leg.applyFill(fill.Contracts, fill.Price)
	pos.TotalFees += fill.Fees

	l.mu.Unlock()

	l.requestSnapshot()
}

// Get returns the position for a pair, if one exists.
func (l *Ledger) Get(pairID string) (ArbPosition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, ok := l.positions[pairID]
	if !ok {
		return ArbPosition{}, false
	}
	return *pos, true
}

// Resolve finalizes a position once the market outcome is known. It
// refuses to resolve a position that still carries unmatched exposure: the
// caller must record an explicit closing fill first.
func (l *Ledger) Resolve(pairID string, yesWon bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[pairID]
	if !ok {
		return fmt.Errorf("ledger: unknown pair %q", pairID)
	}

	if pos.UnmatchedExposure() != 0 {
		return ErrUnresolvedExposure
	}

	matched := pos.MatchedContracts()
	realized := float64(matched)*1.00 - pos.TotalCost()

	pos.Status = StatusResolved
	pos.RealizedPnL = realized
	l.dailyPnL += realized
	l.allTimePnL += realized

	return nil
}

// ResetDaily zeroes the daily realized P&L counter, keeping the all-time
// total intact. Called once per trading day.
func (l *Ledger) ResetDaily() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dailyPnL = 0
}

// Summary aggregates all positions into one point-in-time view.
func (l *Ledger) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{
		DailyRealizedPnL: l.dailyPnL,
		AllTimePnL:       l.allTimePnL,
	}

	for _, pos := range l.positions {
		if pos.Status == StatusOpen {
			s.OpenPositions++
		}
		s.TotalContracts += pos.YesLeg.Contracts + pos.NoLeg.Contracts
		s.TotalCostBasis += pos.TotalCost()
		s.TotalUnmatchedExposure += pos.UnmatchedExposure()
		s.TotalGuaranteedProfit += pos.GuaranteedProfit()
	}

	return s
}

// requestSnapshot enqueues a best-effort persistence save without blocking
// the writer; a full queue means a save is already pending and this one is
// dropped.
func (l *Ledger) requestSnapshot() {
	select {
	case l.saveCh <- struct{}{}:
	default:
	}
}

// Run drives the background snapshot saver until ctx is canceled. It is the
// only goroutine that calls into the Persistence port on the ledger's
// behalf.
func (l *Ledger) Run(ctx context.Context) {
	if l.persistence == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.saveCh:
			l.saveSnapshot(ctx)
		}
	}
}

type snapshotPosition struct {
	PairID      string  `json:"pair_id"`
	YesContract int     `json:"yes_contracts"`
	NoContracts int     `json:"no_contracts"`
	Status      string  `json:"status"`
	RealizedPnL float64 `json:"realized_pnl"`
}

func (l *Ledger) saveSnapshot(ctx context.Context) {
	l.mu.RLock()
	snap := make([]snapshotPosition, 0, len(l.positions))
	for _, pos := range l.positions {
		snap = append(snap, snapshotPosition{
			PairID:      pos.PairID,
			YesContract: pos.YesLeg.Contracts,
			NoContracts: pos.NoLeg.Contracts,
			Status:      string(pos.Status),
			RealizedPnL: pos.RealizedPnL,
		})
	}
	l.mu.RUnlock()

	blob, err := json.Marshal(snap)
	if err != nil {
		l.logger.Warn("ledger-snapshot-marshal-failed", zap.Error(err))
		return
	}

	if err := l.persistence.SaveSnapshot(ctx, "ledger-snapshot", blob); err != nil {
		l.logger.Warn("ledger-snapshot-save-failed", zap.Error(err))
	}
}
