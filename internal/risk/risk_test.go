package risk

import (
	"math"
	"testing"
)

func almostEqual(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %.6f, want %.6f (tol %.6f)", got, want, tol)
	}
}

func TestModifiedDuration(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		yield    float64
	}{
		{"10Y at 4.05", 8.0, 4.05},
		{"2Y at 3.95", 1.9, 3.95},
		{"30Y at 4.40", 18.0, 4.40},
		{"1Y at 0.10", 1.0, 0.10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			md := ModifiedDuration(c.duration, c.yield)
			if md >= c.duration {
				t.Fatalf("modified duration %.4f not below macaulay %.4f at yield %.2f", md, c.duration, c.yield)
			}
			if md <= 0 {
				t.Fatalf("modified duration %.4f not positive", md)
			}
		})
	}

	// At zero yield the adjustment vanishes.
	if md := ModifiedDuration(8.0, 0); md != 8.0 {
		t.Fatalf("ModifiedDuration(8, 0) = %.6f, want 8", md)
	}
}

func TestDV01ReferenceValues(t *testing.T) {
	// (8.0/1.0405) * 0.0001 * 10,000,000 and the same at 4.15%.
	almostEqual(t, DV01(10_000_000, 8.0, 4.05), 7688.61, 0.01)
	almostEqual(t, DV01(10_000_000, 8.0, 4.15), 7681.23, 0.01)
}

func TestEstimatePNLReferenceScenario(t *testing.T) {
	// $10M 10Y position, yield 4.05% -> 4.15%: ten basis points against a
	// roughly $7,685 average DV01.
	pnl := EstimatePNL(4.05, 4.15, 8.0, 10_000_000)
	almostEqual(t, pnl, -76_849.20, 0.01)
}

func TestEstimatePNLNoMove(t *testing.T) {
	for _, y := range []float64{0, 1.25, 4.05, 6.5} {
		if pnl := EstimatePNL(y, y, 8.0, 10_000_000); pnl != 0 {
			t.Fatalf("no yield change at %.2f produced pnl %.6f", y, pnl)
		}
	}
}

func TestEstimatePNLAntisymmetry(t *testing.T) {
	// Reversing the yield path flips the sign exactly: the averaged DV01
	// is the same in both directions.
	cases := [][2]float64{{4.05, 4.15}, {3.95, 3.45}, {0.5, 5.0}}
	for _, c := range cases {
		fwd := EstimatePNL(c[0], c[1], 8.0, 10_000_000)
		rev := EstimatePNL(c[1], c[0], 8.0, 10_000_000)
		almostEqual(t, fwd, -rev, 1e-9)
	}
}

func TestEstimatePNLSign(t *testing.T) {
	// Yields up, long position down.
	if pnl := EstimatePNL(4.05, 4.30, 8.0, 10_000_000); pnl >= 0 {
		t.Fatalf("rising yield gave non-negative pnl %.2f", pnl)
	}
	if pnl := EstimatePNL(4.05, 3.80, 8.0, 10_000_000); pnl <= 0 {
		t.Fatalf("falling yield gave non-positive pnl %.2f", pnl)
	}
}

func TestValidYield(t *testing.T) {
	for _, y := range []float64{-99.99, 0, 4.05, 20} {
		if !ValidYield(y) {
			t.Fatalf("ValidYield(%.2f) = false", y)
		}
	}
	for _, y := range []float64{-100, -250, math.NaN(), math.Inf(1)} {
		if ValidYield(y) {
			t.Fatalf("ValidYield(%v) = true", y)
		}
	}
}
