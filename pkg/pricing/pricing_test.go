package pricing

import "testing"

func TestPriceToCentsCentsToPriceRoundTrip(t *testing.T) {
	for cents := 1; cents <= 99; cents++ {
		dollars := CentsToPrice(cents)
		if got := PriceToCents(dollars); got != cents {
			t.Errorf("round-trip broke at cents=%d: CentsToPrice=%v, PriceToCents back=%d", cents, dollars, got)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"0.50", 50},
		{"0.5", 50},
		{"invalid", 0},
		{"", 0},
		{"0.01", 1},
		{"0.99", 99},
	}
	for _, c := range cases {
		if got := ParsePrice(c.in); got != c.want {
			t.Errorf("ParsePrice(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
