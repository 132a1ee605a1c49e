package risk

// Point is a single point on a yield curve.
type Point struct {
	Maturity string  `json:"maturity"`
	Years    float64 `json:"years"`
	Yield    float64 `json:"yield"`
}

// Curve is an ordered yield curve, shortest maturity first. It is the
// immutable reference for a session: once built it is never mutated, only
// copied into an Overlay.
type Curve []Point

// Yield returns the yield for a maturity label.
func (c Curve) Yield(maturity string) (float64, bool) {
	for _, p := range c {
		if p.Maturity == maturity {
			return p.Yield, true
		}
	}
	return 0, false
}

// Overlay holds user-adjusted yields keyed by maturity label. It starts
// as a copy of the reference curve and is the only mutable curve state.
type Overlay map[string]float64

// NewOverlay copies the reference curve's yields into a fresh overlay.
func NewOverlay(c Curve) Overlay {
	o := make(Overlay, len(c))
	for _, p := range c {
		o[p.Maturity] = p.Yield
	}
	return o
}

// Set records an adjusted yield for one maturity.
func (o Overlay) Set(maturity string, yieldPercent float64) {
	o[maturity] = yieldPercent
}

// Reset discards all adjustments and copies the reference curve again.
func (o Overlay) Reset(c Curve) {
	for k := range o {
		delete(o, k)
	}
	for _, p := range c {
		o[p.Maturity] = p.Yield
	}
}

// PositionPNL estimates the PNL of a notional long position at one
// maturity, taking the original yield from the curve and the adjusted
// yield from the overlay. A maturity missing from the curve, the overlay
// or the duration table yields a PNL of exactly 0: missing data is a
// neutral result here, not an error.
func PositionPNL(c Curve, o Overlay, maturity string, notional float64) float64 {
	originalYield, ok := c.Yield(maturity)
	if !ok {
		return 0
	}
	newYield, ok := o[maturity]
	if !ok {
		return 0
	}
	d, ok := Duration(maturity)
	if !ok {
		return 0
	}
	return EstimatePNL(originalYield, newYield, d, notional)
}
