package ledger

import "github.com/mselser95/polymarket-arb/pkg/types"

// Leg tracks one side of an ArbPosition: a running signed quantity and its
// weighted cost basis. AvgPrice is cost_basis/contracts and is undefined
// (reported as zero) when contracts is zero.
type Leg struct {
	Contracts int
	CostBasis float64
}

// AvgPrice returns the weighted average fill price, or 0 when the leg is
// flat.
func (l Leg) AvgPrice() float64 {
	if l.Contracts == 0 {
		return 0
	}
	return l.CostBasis / float64(l.Contracts)
}

// applyFill folds one signed quantity/price pair into the leg. When the
// running quantity crosses zero (flips from long to short or vice versa),
// the cost basis is reset to zero so stale basis from the other direction
// doesn't leak into the new one.
func (l *Leg) applyFill(contracts int, price float64) {
	old := l.Contracts
	next := old + contracts

	switch {
	case next == 0:
		l.CostBasis = 0
	case old != 0 && sign(old) != sign(next):
		l.CostBasis = 0
	default:
		l.CostBasis += float64(contracts) * price
	}

	l.Contracts = next
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// ArbPosition is the per-pair accounting record: one Leg per side, total
// fees paid, and the resolution outcome once known.
type ArbPosition struct {
	PairID      string
	YesLeg      Leg
	NoLeg       Leg
	TotalFees   float64
	Status      PositionStatus
	RealizedPnL float64
}

// PositionStatus enumerates an ArbPosition's lifecycle.
type PositionStatus string

const (
	StatusOpen     PositionStatus = "open"
	StatusResolved PositionStatus = "resolved"
)

// MatchedContracts is the quantity on both legs that pairs up to form the
// risk-free payoff.
func (p *ArbPosition) MatchedContracts() int {
	return min(p.YesLeg.Contracts, p.NoLeg.Contracts)
}

// UnmatchedExposure is the residual quantity on one leg without a hedge.
func (p *ArbPosition) UnmatchedExposure() int {
	return abs(p.YesLeg.Contracts - p.NoLeg.Contracts)
}

// TotalCost is the full cost basis of the position including fees.
func (p *ArbPosition) TotalCost() float64 {
	return p.YesLeg.CostBasis + p.NoLeg.CostBasis + p.TotalFees
}

// GuaranteedProfit is the matched portion's risk-free payoff net of the
// matched portion's proportional cost and all fees.
func (p *ArbPosition) GuaranteedProfit() float64 {
	matched := p.MatchedContracts()
	if matched == 0 {
		return -p.TotalFees
	}

	var yesCost, noCost float64
	if p.YesLeg.Contracts != 0 {
		yesCost = float64(matched) / float64(p.YesLeg.Contracts) * p.YesLeg.CostBasis
	}
	if p.NoLeg.Contracts != 0 {
		noCost = float64(matched) / float64(p.NoLeg.Contracts) * p.NoLeg.CostBasis
	}

	return float64(matched)*1.00 - (yesCost + noCost + p.TotalFees)
}

func (p *ArbPosition) legFor(side types.Side) *Leg {
	if side == types.SideYes {
		return &p.YesLeg
	}
	return &p.NoLeg
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
