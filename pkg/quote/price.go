// Package quote implements the market-data value types supplemented
// from spec.md's dropped-feature allowance: fixed-point prices, typed
// sizes, option identifiers, and two-sided quote ticks suitable as
// secondarysource payloads. Grounded on
// original_source/src/option/{Price,Size,OptionId,Side,BboTick}.hpp
// and original_source/src/option_util/PxSize2.hpp.
package quote

import "math"

// Price is a fixed-point price with an exact integer representation:
// rep * unit dollars, unit = 0.0001 ($0.0001 tick size).
type Price struct {
	rep int64
}

const (
	priceUnit    = 0.0001
	priceInvUnit = 1.0 / priceUnit
)

// PriceFromDouble converts a floating-point dollar amount to its
// nearest fixed-point Price.
func PriceFromDouble(px float64) Price {
	return Price{rep: int64(math.Round(px * priceInvUnit))}
}

// ToDouble converts p back to a floating-point dollar amount.
func (p Price) ToDouble() float64 {
	return priceUnit * float64(p.rep)
}

// Compare returns negative/zero/positive as x is less than, equal to,
// or greater than y, comparing exact fixed-point representations
// (never floating-point values).
func (x Price) Compare(y Price) int64 {
	return x.rep - y.rep
}
