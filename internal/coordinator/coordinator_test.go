package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/mselser95/polymarket-arb/internal/arbdetect"
	"github.com/mselser95/polymarket-arb/internal/circuitbreaker"
	"github.com/mselser95/polymarket-arb/internal/ledger"
	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"github.com/mselser95/polymarket-arb/pkg/types"
	"go.uber.org/zap"
)

// fakeOrderClient lets each test script a fixed fill outcome per side.
type fakeOrderClient struct {
	buyResults map[string]ports.FillResult
	buyErrs    map[string]error
}

func (f *fakeOrderClient) SubmitBuy(_ context.Context, token string, priceCents, sizeCents int) (ports.FillResult, error) {
	if err, ok := f.buyErrs[token]; ok {
		return ports.FillResult{}, err
	}
	if r, ok := f.buyResults[token]; ok {
		return r, nil
	}
	return ports.FillResult{FilledContracts: sizeCents, CostCents: priceCents * sizeCents, OrderID: "ord-" + token}, nil
}

func (f *fakeOrderClient) SubmitSell(_ context.Context, token string, priceCents, sizeCents int) (ports.FillResult, error) {
	return ports.FillResult{FilledContracts: sizeCents, CostCents: priceCents * sizeCents, OrderID: "close-" + token}, nil
}

func newBreaker(t *testing.T) *circuitbreaker.Breaker {
	t.Helper()
	b, err := circuitbreaker.New(circuitbreaker.Config{
		MaxPositionPerMarket: 1000,
		MaxTotalPosition:     10000,
		MaxDailyLoss:         1000,
		MaxConsecutiveErrors: 100,
		CooldownSecs:         60,
		Enabled:              true,
		Logger:               zap.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func seededTable(t *testing.T, yes, no, yesSz, noSz int) (*priceboard.Table, int) {
	t.Helper()
	table := priceboard.New()
	id := table.AddPair(types.MarketPair{PairID: "p1", YesToken: "yes-tok", NoToken: "no-tok"})
	table.Freeze()
	table.GetByID(id).Store(yes, no, yesSz, noSz)
	return table, id
}

// Scenario 1: yes=48 no=50 threshold=100, size=10, full fill both sides.
func TestHandleFullFillRecordsMatchedProfit(t *testing.T) {
	table, id := seededTable(t, 48, 50, 10, 10)
	led := ledger.New(zap.NewNop(), nil)
	breaker := newBreaker(t)
	oc := &fakeOrderClient{buyResults: map[string]ports.FillResult{}}

	c := New(Config{
		Table:       table,
		Breaker:     breaker,
		Ledger:      led,
		OrderClient: oc,
		Logger:      zap.NewNop(),
		LegDeadline: time.Second,
	})

	req := ExecutionRequest{
		MarketID: id, PairID: "p1", YesToken: "yes-tok", NoToken: "no-tok",
		YesPriceCents: 48, NoPriceCents: 50, YesSize: 10, NoSize: 10,
		ArbType: arbdetect.PolyOnly, DetectedAtNanos: time.Now().UnixNano(),
	}

	c.handle(context.Background(), req)

	pos, ok := led.Get("p1")
	if !ok {
		t.Fatal("expected position to be recorded")
	}
	if pos.MatchedContracts() != 10 {
		t.Fatalf("expected matched=10, got %d", pos.MatchedContracts())
	}
	if pos.UnmatchedExposure() != 0 {
		t.Fatalf("expected balanced position, got unmatched=%d", pos.UnmatchedExposure())
	}
}

// Scenario 3: yes fill 10 at 45c, no fill 7 at 50c, req=10 -> close sells 3
// YES; final yes.contracts == no.contracts == 7.
func TestHandlePartialFillClosesExcess(t *testing.T) {
	table, id := seededTable(t, 45, 50, 10, 10)
	led := ledger.New(zap.NewNop(), nil)
	breaker := newBreaker(t)
	oc := &fakeOrderClient{buyResults: map[string]ports.FillResult{
		"no-tok": {FilledContracts: 7, CostCents: 7 * 50, OrderID: "ord-no"},
	}}

	c := New(Config{
		Table: table, Breaker: breaker, Ledger: led, OrderClient: oc,
		Logger: zap.NewNop(), LegDeadline: time.Second,
	})

	req := ExecutionRequest{
		MarketID: id, PairID: "p1", YesToken: "yes-tok", NoToken: "no-tok",
		YesPriceCents: 45, NoPriceCents: 50, YesSize: 10, NoSize: 10,
		ArbType: arbdetect.PolyOnly, DetectedAtNanos: time.Now().UnixNano(),
	}

	c.handle(context.Background(), req)

	pos, ok := led.Get("p1")
	if !ok {
		t.Fatal("expected position to be recorded")
	}
	if pos.YesLeg.Contracts != pos.NoLeg.Contracts {
		t.Fatalf("expected balanced position after close, yes=%d no=%d", pos.YesLeg.Contracts, pos.NoLeg.Contracts)
	}
	if pos.YesLeg.Contracts != 7 {
		t.Fatalf("expected 7 contracts on each side, got yes=%d", pos.YesLeg.Contracts)
	}
}

// Scenario 4: yes fill 0, no fill 10 -> matched=0, close sells 10 NO.
func TestHandleZeroMatchStillCloses(t *testing.T) {
	table, id := seededTable(t, 45, 50, 10, 10)
	led := ledger.New(zap.NewNop(), nil)
	breaker := newBreaker(t)
	oc := &fakeOrderClient{buyResults: map[string]ports.FillResult{
		"yes-tok": {FilledContracts: 0, CostCents: 0, OrderID: ""},
		"no-tok":  {FilledContracts: 10, CostCents: 10 * 50, OrderID: "ord-no"},
	}}

	c := New(Config{
		Table: table, Breaker: breaker, Ledger: led, OrderClient: oc,
		Logger: zap.NewNop(), LegDeadline: time.Second,
	})

	req := ExecutionRequest{
		MarketID: id, PairID: "p1", YesToken: "yes-tok", NoToken: "no-tok",
		YesPriceCents: 45, NoPriceCents: 50, YesSize: 10, NoSize: 10,
		ArbType: arbdetect.PolyOnly, DetectedAtNanos: time.Now().UnixNano(),
	}

	c.handle(context.Background(), req)

	pos, ok := led.Get("p1")
	if !ok {
		t.Fatal("expected position to exist after closing leg")
	}
	if pos.YesLeg.Contracts != pos.NoLeg.Contracts {
		t.Fatalf("expected flat position after closing leg, yes=%d no=%d", pos.YesLeg.Contracts, pos.NoLeg.Contracts)
	}
}

func TestHandleRejectedByBreakerDoesNotDispatch(t *testing.T) {
	table, id := seededTable(t, 48, 50, 10, 10)
	led := ledger.New(zap.NewNop(), nil)
	breaker, _ := circuitbreaker.New(circuitbreaker.Config{
		MaxPositionPerMarket: 1, MaxTotalPosition: 1, MaxDailyLoss: 10,
		MaxConsecutiveErrors: 3, CooldownSecs: 60, Enabled: true, Logger: zap.NewNop(),
	})
	oc := &fakeOrderClient{}

	c := New(Config{
		Table: table, Breaker: breaker, Ledger: led, OrderClient: oc,
		Logger: zap.NewNop(), LegDeadline: time.Second,
	})

	req := ExecutionRequest{
		MarketID: id, PairID: "p1", YesToken: "yes-tok", NoToken: "no-tok",
		YesPriceCents: 48, NoPriceCents: 50, YesSize: 10, NoSize: 10,
	}
	c.handle(context.Background(), req)

	if _, ok := led.Get("p1"); ok {
		t.Fatal("expected no position to be recorded when breaker rejects")
	}
}

func TestHandleStaleOpportunitySkipped(t *testing.T) {
	// Row has moved since detection: now yes+no == 100, no longer profitable.
	table, id := seededTable(t, 50, 50, 10, 10)
	led := ledger.New(zap.NewNop(), nil)
	breaker := newBreaker(t)
	oc := &fakeOrderClient{}

	c := New(Config{
		Table: table, Breaker: breaker, Ledger: led, OrderClient: oc,
		Logger: zap.NewNop(), LegDeadline: time.Second,
	})

	req := ExecutionRequest{
		MarketID: id, PairID: "p1", YesToken: "yes-tok", NoToken: "no-tok",
		YesPriceCents: 48, NoPriceCents: 50, YesSize: 10, NoSize: 10,
	}
	c.handle(context.Background(), req)

	if _, ok := led.Get("p1"); ok {
		t.Fatal("expected no position to be recorded for a stale opportunity")
	}
}
