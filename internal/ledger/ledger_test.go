package ledger

import (
	"testing"
	"time"

	"github.com/mselser95/polymarket-arb/pkg/types"
	"go.uber.org/zap"
)

func TestRecordFillWeightedAverage(t *testing.T) {
	l := New(zap.NewNop(), nil)

	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: 10, Price: 0.48, Timestamp: time.Now()})
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideNo, Contracts: 10, Price: 0.50, Timestamp: time.Now()})

	pos, ok := l.Get("p1")
	if !ok {
		t.Fatal("expected position to exist")
	}

	if pos.YesLeg.Contracts != 10 || pos.NoLeg.Contracts != 10 {
		t.Fatalf("unexpected contracts: yes=%d no=%d", pos.YesLeg.Contracts, pos.NoLeg.Contracts)
	}

	if diff := pos.YesLeg.AvgPrice() - 0.48; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("unexpected yes avg price: %v", pos.YesLeg.AvgPrice())
	}

	if pos.MatchedContracts() != 10 {
		t.Errorf("expected matched=10, got %d", pos.MatchedContracts())
	}
	if pos.UnmatchedExposure() != 0 {
		t.Errorf("expected unmatched=0, got %d", pos.UnmatchedExposure())
	}
}

func TestRecordFillPartialMatchAndClose(t *testing.T) {
	l := New(zap.NewNop(), nil)

	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: 10, Price: 0.45})
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideNo, Contracts: 7, Price: 0.50})

	pos, _ := l.Get("p1")
	if pos.MatchedContracts() != 7 {
		t.Fatalf("expected matched=7, got %d", pos.MatchedContracts())
	}
	if pos.UnmatchedExposure() != 3 {
		t.Fatalf("expected unmatched=3, got %d", pos.UnmatchedExposure())
	}

	// Close the excess 3 YES contracts with a sell.
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: -3, Price: 0.43})

	pos, _ = l.Get("p1")
	if pos.YesLeg.Contracts != pos.NoLeg.Contracts {
		t.Fatalf("expected balanced position after close, yes=%d no=%d", pos.YesLeg.Contracts, pos.NoLeg.Contracts)
	}
}

func TestResolveRejectsUnmatchedExposure(t *testing.T) {
	l := New(zap.NewNop(), nil)
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: 10, Price: 0.45})
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideNo, Contracts: 7, Price: 0.50})

	if err := l.Resolve("p1", true); err != ErrUnresolvedExposure {
		t.Fatalf("expected ErrUnresolvedExposure, got %v", err)
	}
}

func TestResolveFullyMatchedRealizesPnL(t *testing.T) {
	l := New(zap.NewNop(), nil)
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: 10, Price: 0.48})
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideNo, Contracts: 10, Price: 0.50})

	if err := l.Resolve("p1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos, _ := l.Get("p1")
	if pos.Status != StatusResolved {
		t.Errorf("expected resolved status")
	}

	// 10 matched contracts * $1 - (4.8 + 5.0) = 10 - 9.8 = 0.2
	if diff := pos.RealizedPnL - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("unexpected realized pnl: %v", pos.RealizedPnL)
	}

	summary := l.Summary()
	if diff := summary.AllTimePnL - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("unexpected all-time pnl: %v", summary.AllTimePnL)
	}
}

func TestLegCrossingZeroResetsCostBasis(t *testing.T) {
	l := New(zap.NewNop(), nil)
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: 5, Price: 0.40})
	// Sell through zero into a short position.
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: -8, Price: 0.60})

	pos, _ := l.Get("p1")
	if pos.YesLeg.Contracts != -3 {
		t.Fatalf("expected -3 contracts, got %d", pos.YesLeg.Contracts)
	}
	if diff := pos.YesLeg.AvgPrice() - 0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected avg price reset to zero, got %v", pos.YesLeg.AvgPrice())
	}
}

func TestResetDailyKeepsAllTime(t *testing.T) {
	l := New(zap.NewNop(), nil)
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideYes, Contracts: 10, Price: 0.48})
	l.RecordFill(FillRecord{PairID: "p1", Side: types.SideNo, Contracts: 10, Price: 0.50})
	_ = l.Resolve("p1", true)

	l.ResetDaily()

	summary := l.Summary()
	if summary.DailyRealizedPnL != 0 {
		t.Errorf("expected daily pnl reset to 0, got %v", summary.DailyRealizedPnL)
	}
	if diff := summary.AllTimePnL - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected all-time pnl preserved, got %v", summary.AllTimePnL)
	}
}
