package normalize

import "math"

// DiscountPercent computes the discount percentage when both a regular and a promo price are
// present. Returns (pct, true) when defined; (0, false) when promo >= regular or either price
// is non-positive.
func DiscountPercent(regular, promo float64) (float64, bool) {
	if regular <= 0 || promo <= 0 || promo >= regular {
		return 0, false
	}
	pct := (regular - promo) / regular * 100
	return math.Round(pct*100) / 100, true
}
