// Package pricing converts between the venue's fractional-dollar price
// strings and the integer cents the core's hot path operates on.
package pricing

import "strconv"

// PriceToCents converts a fractional dollar price (e.g. 0.48) to integer
// cents, rounding to the nearest cent.
func PriceToCents(dollars float64) int {
	return int(dollars*100 + 0.5)
}

// CentsToPrice converts integer cents back to a fractional dollar price.
// Round-trips with PriceToCents for cents in [1, 99].
func CentsToPrice(cents int) float64 {
	return float64(cents) / 100.0
}

// ParsePrice parses a venue price string ("0.50", "0.5") into integer
// cents. An unparseable string yields 0 rather than an error: feed and
// order-status payloads are untrusted wire data and a malformed price is
// treated as "no quote" by the caller.
func ParsePrice(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return PriceToCents(f)
}
