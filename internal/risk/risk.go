// Package risk implements the bond price-sensitivity math behind the
// what-if yield calculator: modified duration, DV01 and mark-to-market
// PNL estimates for notional Treasury positions.
package risk

import "math"

// Durations maps a maturity label to an approximate Macaulay duration in
// years. These are fixed illustrative constants, not fetched data.
var Durations = map[string]float64{
	"13W": 0.25,
	"3M":  0.25,
	"1Y":  1.0,
	"2Y":  1.9,
	"5Y":  4.5,
	"7Y":  6.2,
	"10Y": 8.0,
	"30Y": 18.0,
}

// Duration returns the Macaulay duration for a maturity label.
func Duration(maturity string) (float64, bool) {
	d, ok := Durations[maturity]
	return d, ok
}

// ModifiedDuration adjusts a Macaulay duration by the current yield level.
// Modified duration falls as yields rise, which bakes a first-order
// convexity effect into the sensitivity measure itself.
//
// yieldPercent must be > -100; callers validate at the boundary.
func ModifiedDuration(macaulayDuration, yieldPercent float64) float64 {
	return macaulayDuration / (1 + yieldPercent/100)
}

// DV01 is the price change in currency units for a one-basis-point yield
// move. Price is approximated by face value; no price-at-par correction
// is applied.
func DV01(faceValue, macaulayDuration, yieldPercent float64) float64 {
	return ModifiedDuration(macaulayDuration, yieldPercent) * 0.0001 * faceValue
}

// EstimatePNL estimates the mark-to-market PNL of a long position of
// faceValue when the yield moves from originalYield to newYield, both in
// percent. The DV01 at the start and end yields is averaged, which is the
// sole convexity adjustment; no second-derivative term is computed.
//
// A yield rise produces a negative PNL for a long position.
func EstimatePNL(originalYield, newYield, macaulayDuration, faceValue float64) float64 {
	yieldChangeBps := (newYield - originalYield) * 100
	dv01Start := DV01(faceValue, macaulayDuration, originalYield)
	dv01End := DV01(faceValue, macaulayDuration, newYield)
	avgDv01 := (dv01Start + dv01End) / 2
	return -avgDv01 * yieldChangeBps
}

// ValidYield reports whether a yield in percent is inside the domain the
// estimator accepts. Yields at or below -100% make the modified-duration
// denominator blow up and are treated as input errors at the boundary.
func ValidYield(yieldPercent float64) bool {
	if math.IsNaN(yieldPercent) || math.IsInf(yieldPercent, 0) {
		return false
	}
	return yieldPercent > -100
}

// ValidNotional reports whether a notional amount is usable.
func ValidNotional(notional float64) bool {
	return !math.IsNaN(notional) && !math.IsInf(notional, 0)
}
