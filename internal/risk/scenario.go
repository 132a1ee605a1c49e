package risk

// Leg is one side of an illustrative trade: a notional position at a
// maturity with an original and an adjusted yield.
type Leg struct {
	Maturity      string  `json:"maturity"`
	Notional      float64 `json:"notional"`
	OriginalYield float64 `json:"original_yield"`
	NewYield      float64 `json:"new_yield"`
}

// PNL estimates the leg's PNL. A maturity without a duration entry
// contributes exactly 0.
func (l Leg) PNL() float64 {
	d, ok := Duration(l.Maturity)
	if !ok {
		return 0
	}
	return EstimatePNL(l.OriginalYield, l.NewYield, d, l.Notional)
}

// ScenarioPNL sums the independent PNL of each leg. Short legs carry a
// negative notional.
func ScenarioPNL(legs []Leg) float64 {
	var total float64
	for _, l := range legs {
		total += l.PNL()
	}
	return total
}

// DurationNeutralNotional sizes an offsetting leg so that its DV01
// matches the anchor leg's: anchor DV01 divided by the per-unit DV01 of
// the offsetting maturity. For a $10M 10Y anchor (duration 8.0) hedged at
// 2Y (duration 1.9) this comes out near $42.1M.
func DurationNeutralNotional(anchorNotional, anchorDuration, anchorYield, hedgeDuration, hedgeYield float64) float64 {
	perUnit := DV01(1, hedgeDuration, hedgeYield)
	if perUnit == 0 {
		return 0
	}
	return DV01(anchorNotional, anchorDuration, anchorYield) / perUnit
}

// DurationNeutralLegs builds a two-leg curve trade from the curve and
// overlay: long the anchor maturity, short the hedge maturity, with the
// hedge notional sized so the per-leg DV01s match. A parallel shift of
// both yields by the same amount then nets to roughly zero, while a move
// in one maturity concentrates the PNL in that leg. Yields come from the
// curve for the original level and from the overlay for the shifted
// level. If either maturity is missing from curve, overlay or duration
// table, a nil slice is returned and the scenario PNL is 0.
func DurationNeutralLegs(c Curve, o Overlay, anchorMaturity, hedgeMaturity string, anchorNotional float64) []Leg {
	anchorY0, ok := c.Yield(anchorMaturity)
	if !ok {
		return nil
	}
	hedgeY0, ok := c.Yield(hedgeMaturity)
	if !ok {
		return nil
	}
	anchorY1, ok := o[anchorMaturity]
	if !ok {
		return nil
	}
	hedgeY1, ok := o[hedgeMaturity]
	if !ok {
		return nil
	}
	anchorDur, ok := Duration(anchorMaturity)
	if !ok {
		return nil
	}
	hedgeDur, ok := Duration(hedgeMaturity)
	if !ok {
		return nil
	}
	hedgeNotional := DurationNeutralNotional(anchorNotional, anchorDur, anchorY0, hedgeDur, hedgeY0)
	return []Leg{
		{Maturity: anchorMaturity, Notional: anchorNotional, OriginalYield: anchorY0, NewYield: anchorY1},
		{Maturity: hedgeMaturity, Notional: -hedgeNotional, OriginalYield: hedgeY0, NewYield: hedgeY1},
	}
}
