package marketdata

import (
	"math"
	"testing"
)

func TestTargetRateProbabilities(t *testing.T) {
	// Current rate 3.87% -> 387 bps. A -25 move brackets to 350-375, no
	// change to 375-400.
	probs := targetRateProbabilities(387, map[int]float64{-25: 0.6, 0: 0.4})
	if got := probs["350-375"]; got != 0.6 {
		t.Fatalf("350-375 = %.2f, want 0.6 (all: %v)", got, probs)
	}
	if got := probs["375-400"]; got != 0.4 {
		t.Fatalf("375-400 = %.2f, want 0.4 (all: %v)", got, probs)
	}
}

func TestRoundTo25(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{374.5, 375},
		{362.5, 375},
		{362.4, 350},
		{400, 400},
		{-12.4, 0},
	}
	for _, c := range cases {
		if got := roundTo25(c.in); got != c.want {
			t.Errorf("roundTo25(%.1f) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMostLikely(t *testing.T) {
	k, p := mostLikely(map[string]float64{"350-375": 0.872, "375-400": 0.128})
	if k != "350-375" || p != 0.872 {
		t.Fatalf("mostLikely = %s %.3f", k, p)
	}

	// Ties break on the lexically smaller range for determinism.
	k, _ = mostLikely(map[string]float64{"350-375": 0.5, "375-400": 0.5})
	if k != "350-375" {
		t.Fatalf("tie broke to %s", k)
	}
}

func TestNormalize(t *testing.T) {
	probs := map[int]float64{-25: 0.6, 0: 0.6, 25: 0.3}
	normalize(probs)
	var total float64
	for _, p := range probs {
		total += p
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("normalized total = %.6f", total)
	}
}

func TestScalePercent(t *testing.T) {
	out := scalePercent(map[string]float64{"350-375": 0.8724})
	if out["350-375"] != 87.24 {
		t.Fatalf("scaled = %.4f, want 87.24", out["350-375"])
	}
}

func TestCurrentTargetRange(t *testing.T) {
	if got := currentTargetRange(387.5); got != "375-400" {
		t.Fatalf("currentTargetRange(387.5) = %s", got)
	}
}
