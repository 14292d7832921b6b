package coordinator

import "github.com/mselser95/polymarket-arb/internal/arbdetect"

// ExecutionRequest is one decision by the detector, queued for the
// coordinator to act on.
type ExecutionRequest struct {
	MarketID        int
	PairID          string
	YesToken        string
	NoToken         string
	YesPriceCents   int
	NoPriceCents    int
	YesSize         int
	NoSize          int
	ArbType         arbdetect.ArbType
	DetectedAtNanos int64
}

// EstimatedFeeCents and ProfitCents mirror the detector's pure functions so
// the coordinator can recompute profitability from a freshly loaded row
// without constructing a new request.
func EstimatedFeeCents(t arbdetect.ArbType) int {
	return arbdetect.EstimatedFeeCents(t)
}

func ProfitCents(yesPriceCents, noPriceCents int) int {
	return arbdetect.ProfitCents(yesPriceCents, noPriceCents)
}
