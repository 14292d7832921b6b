// Package coordinator dispatches paired buy orders for a detected
// arbitrage opportunity, reconciles partial fills, and records the result
// to the ledger as one ordered batch.
package coordinator

import (
	"context"
	"time"

	"github.com/mselser95/polymarket-arb/internal/circuitbreaker"
	"github.com/mselser95/polymarket-arb/internal/ledger"
	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"github.com/mselser95/polymarket-arb/pkg/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Config wires a Coordinator to its collaborators.
type Config struct {
	Requests    <-chan ExecutionRequest
	Table       *priceboard.Table
	Breaker     *circuitbreaker.Breaker
	Ledger      *ledger.Ledger
	OrderClient ports.OrderClient
	Logger      *zap.Logger
	DryRun      bool
	LegDeadline time.Duration
}

// Coordinator is the single consumer of the execution-request channel.
type Coordinator struct {
	cfg Config
}

// New constructs a Coordinator. All Config fields are required except
// LegDeadline, which defaults to 5 seconds.
func New(cfg Config) *Coordinator {
	if cfg.LegDeadline <= 0 {
		cfg.LegDeadline = 5 * time.Second
	}
	return &Coordinator{cfg: cfg}
}

// Run consumes requests until ctx is canceled or the channel closes.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-c.cfg.Requests:
			if !ok {
				return
			}
			c.handle(ctx, req)
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, req ExecutionRequest) {
	dispatchedAt := time.Now().UnixNano()
	if dispatchedAt < req.DetectedAtNanos {
		dispatchedAt = req.DetectedAtNanos
	}

	size := req.YesSize
	if req.NoSize > size {
		size = req.NoSize
	}

	if err := c.cfg.Breaker.CanExecute(req.PairID, size); err != nil {
		RequestsRejectedTotal.Inc()
		c.cfg.Logger.Info("execution-request-rejected",
			zap.String("pair-id", req.PairID),
			zap.Error(err))
		return
	}

	row := c.cfg.Table.GetByID(req.MarketID)
	yes, no, yesSz, noSz := row.Load()
	if ProfitCents(yes, no) <= 0 {
		RequestsStaleTotal.Inc()
		c.cfg.Logger.Debug("execution-request-stale", zap.String("pair-id", req.PairID))
		return
	}

	yesSize := req.YesSize
	if yesSz > 0 && yesSz < yesSize {
		yesSize = yesSz
	}
	noSize := req.NoSize
	if noSz > 0 && noSz < noSize {
		noSize = noSz
	}

	legCtx, cancel := context.WithTimeout(ctx, c.cfg.LegDeadline)
	defer cancel()

	yesCh := make(chan legOutcome, 1)
	noCh := make(chan legOutcome, 1)

	go func() { yesCh <- c.dispatchBuy(legCtx, req.YesToken, yes, yesSize) }()
	go func() { noCh <- c.dispatchBuy(legCtx, req.NoToken, no, noSize) }()

	yesOut := <-yesCh
	noOut := <-noCh

	var errs error
	if yesOut.err != nil {
		errs = multierr.Append(errs, yesOut.err)
	}
	if noOut.err != nil {
		errs = multierr.Append(errs, noOut.err)
	}
	if errs != nil {
		c.cfg.Breaker.RecordError()
		c.cfg.Logger.Warn("execution-leg-error", zap.String("pair-id", req.PairID), zap.Error(errs))
	}

	matched := min(yesOut.result.FilledContracts, noOut.result.FilledContracts)
	profitCents := matched*100 - yesOut.result.CostCents - noOut.result.CostCents

	if matched > 0 {
		c.cfg.Breaker.RecordSuccess(req.PairID, matched, matched, float64(profitCents)/100.0)
	}

	now := time.Now()
	if yesOut.result.FilledContracts > 0 {
		c.cfg.Ledger.RecordFill(ledger.FillRecord{
			PairID:    req.PairID,
			Side:      types.SideYes,
			Contracts: yesOut.result.FilledContracts,
			Price:     costPerContract(yesOut.result),
			OrderID:   yesOut.result.OrderID,
			Timestamp: now,
		})
	}
	if noOut.result.FilledContracts > 0 {
		c.cfg.Ledger.RecordFill(ledger.FillRecord{
			PairID:    req.PairID,
			Side:      types.SideNo,
			Contracts: noOut.result.FilledContracts,
			Price:     costPerContract(noOut.result),
			OrderID:   noOut.result.OrderID,
			Timestamp: now,
		})
	}

	if yesOut.result.FilledContracts != noOut.result.FilledContracts {
		c.closeExcess(ctx, req, yesOut.result.FilledContracts, noOut.result.FilledContracts)
	}

	DetectionToDispatchNanos.Observe(float64(dispatchedAt - req.DetectedAtNanos))
}

// closeExcess sells down the side that filled more than the other so the
// ledger's yes/no contract counts match after this round.
func (c *Coordinator) closeExcess(ctx context.Context, req ExecutionRequest, yesFilled, noFilled int) {
	excess := yesFilled - noFilled
	side := types.SideYes
	token := req.YesToken
	price := req.YesPriceCents
	qty := excess
	if excess < 0 {
		side = types.SideNo
		token = req.NoToken
		price = req.NoPriceCents
		qty = -excess
	}

	legCtx, cancel := context.WithTimeout(ctx, c.cfg.LegDeadline)
	defer cancel()

	result, err := c.dispatchSell(legCtx, token, price, qty)
	if err != nil {
		c.cfg.Breaker.RecordError()
		c.cfg.Logger.Warn("closing-leg-error", zap.String("pair-id", req.PairID), zap.Error(err))
		return
	}

	c.cfg.Ledger.RecordFill(ledger.FillRecord{
		PairID:    req.PairID,
		Side:      side,
		Contracts: -result.FilledContracts,
		Price:     costPerContract(result),
		OrderID:   result.OrderID,
		Timestamp: time.Now(),
	})
}

type legOutcome struct {
	result ports.FillResult
	err    error
}

func (c *Coordinator) dispatchBuy(ctx context.Context, token string, priceCents, sizeCents int) legOutcome {
	if c.cfg.DryRun {
		return legOutcome{result: ports.FillResult{
			FilledContracts: sizeCents,
			CostCents:       priceCents * sizeCents,
			OrderID:         "dry-run",
		}}
	}
	res, err := c.cfg.OrderClient.SubmitBuy(ctx, token, priceCents, sizeCents)
	return legOutcome{result: res, err: err}
}

func (c *Coordinator) dispatchSell(ctx context.Context, token string, priceCents, sizeCents int) (ports.FillResult, error) {
	if c.cfg.DryRun {
		return ports.FillResult{
			FilledContracts: sizeCents,
			CostCents:       priceCents * sizeCents,
			OrderID:         "dry-run-close",
		}, nil
	}
	return c.cfg.OrderClient.SubmitSell(ctx, token, priceCents, sizeCents)
}

func costPerContract(r ports.FillResult) float64 {
	if r.FilledContracts == 0 {
		return 0
	}
	return float64(r.CostCents) / float64(r.FilledContracts) / 100.0
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
