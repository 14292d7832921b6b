// Package arbdetect implements the pure, allocation-free arbitrage
// classification that runs on every price update.
package arbdetect

import "github.com/mselser95/polymarket-arb/internal/priceboard"

// ArbType is a tagged bitmask of arbitrage variants found on a row. Today
// only PolyOnly exists; other bits are reserved for future variants and
// must never change the encoding of an existing one.
type ArbType uint8

const (
	// PolyOnly is set when the YES and NO ask prices on a single venue
	// sum to less than the threshold, net of that variant's fee.
	PolyOnly ArbType = 1 << 2
)

// DefaultThresholdCents is round(0.995 * 100), the default ceiling below
// which a matched pair is profitable net of fees.
const DefaultThresholdCents = 100

// EstimatedFeeCents returns the fee contribution of an arb variant. PolyOnly
// has no additional fee beyond what's already folded into the quoted price.
func EstimatedFeeCents(t ArbType) int {
	switch t {
	case PolyOnly:
		return 0
	default:
		return 0
	}
}

// CheckArbs classifies a row's current top of book against thresholdCents
// and returns the bitmask of arb variants that hold. It never allocates and
// never inspects size: size is only consulted when constructing a request.
func CheckArbs(yesPriceCents, noPriceCents, thresholdCents int) ArbType {
	if yesPriceCents == priceboard.NoPrice || noPriceCents == priceboard.NoPrice {
		return 0
	}

	var mask ArbType
	if yesPriceCents+noPriceCents+EstimatedFeeCents(PolyOnly) < thresholdCents {
		mask |= PolyOnly
	}
	return mask
}

// ProfitCents computes the per-contract profit in cents for a PolyOnly
// match at the given prices: 100 minus the combined cost minus fees.
func ProfitCents(yesPriceCents, noPriceCents int) int {
	return 100 - yesPriceCents - noPriceCents - EstimatedFeeCents(PolyOnly)
}
