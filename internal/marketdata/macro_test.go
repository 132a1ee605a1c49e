package marketdata

import "testing"

func TestBuildIndicator(t *testing.T) {
	obs := []Observation{
		{Date: "2024-01-01", Value: 100},
		{Date: "2024-02-01", Value: 102},
		{Date: "2024-03-01", Value: 101},
	}
	ind := buildIndicator(obs)

	if ind.Current != 101 {
		t.Fatalf("current = %.2f", ind.Current)
	}
	if ind.LatestDate != "2024-03-01" {
		t.Fatalf("latest_date = %s", ind.LatestDate)
	}
	// (101-102)/102 * 100 = -0.98 after rounding.
	if ind.Change != -0.98 {
		t.Fatalf("change = %.4f, want -0.98", ind.Change)
	}
	if len(ind.History) != 3 {
		t.Fatalf("history has %d points", len(ind.History))
	}
	if ind.History[0].PctChange != 0 {
		t.Fatalf("first pct_change = %.4f, want 0", ind.History[0].PctChange)
	}
	if ind.History[1].PctChange != 2.0 {
		t.Fatalf("second pct_change = %.4f, want 2.0", ind.History[1].PctChange)
	}
}

func TestBuildIndicatorDeduplicatesDates(t *testing.T) {
	// A revision shows up as a second observation on the same date; the
	// revised value wins.
	obs := []Observation{
		{Date: "2024-01-01", Value: 100},
		{Date: "2024-02-01", Value: 90},
		{Date: "2024-02-01", Value: 110},
	}
	ind := buildIndicator(obs)
	if len(ind.History) != 2 {
		t.Fatalf("history has %d points, want 2", len(ind.History))
	}
	if ind.Current != 110 {
		t.Fatalf("current = %.2f, want 110", ind.Current)
	}
	if ind.History[1].PctChange != 10.0 {
		t.Fatalf("pct_change = %.4f, want 10.0", ind.History[1].PctChange)
	}
}

func TestBuildIndicatorSingleObservation(t *testing.T) {
	ind := buildIndicator([]Observation{{Date: "2024-01-01", Value: 55.4}})
	if ind.Change != 0 {
		t.Fatalf("change = %.4f, want 0 with one observation", ind.Change)
	}
	if ind.Current != 55.4 {
		t.Fatalf("current = %.2f", ind.Current)
	}
}
