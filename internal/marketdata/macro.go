package marketdata

import (
	"context"
	"log"
	"time"
)

// macroSeries lists the FRED series behind each dashboard indicator.
var macroSeries = []struct {
	Name     string
	SeriesID string
}{
	{"CPI", "CPIAUCSL"},
	{"PPI", "PPIACO"},
	{"Payrolls", "PAYEMS"},
	{"PMI", "NAPM"},
	{"Unemployment Claims", "ICSA"},
}

// pmiAlternatives are tried in order when the primary PMI series fails;
// FRED has dropped and renamed ISM series over the years.
var pmiAlternatives = []string{"MANPMI", "UMCSENT"}

var macroStart = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

func (s *Service) fetchMacro(ctx context.Context) (MacroData, error) {
	if !s.fred.Configured() {
		return nil, errMissingFREDKey
	}
	// Look ahead past today: FRED publishes mid-month for the prior month
	// and the end date only bounds the query.
	end := time.Now().AddDate(0, 0, 60)

	data := MacroData{}
	for _, series := range macroSeries {
		ids := []string{series.SeriesID}
		if series.Name == "PMI" {
			ids = append(ids, pmiAlternatives...)
		}
		var obs []Observation
		var err error
		for _, id := range ids {
			obs, err = s.fred.Observations(ctx, id, macroStart, end)
			if err == nil {
				break
			}
		}
		if err != nil {
			log.Printf("macro: %s: %v", series.Name, err)
			continue
		}
		data[series.Name] = buildIndicator(obs)
	}
	return data, nil
}

// buildIndicator turns a raw observation series into the indicator
// payload: deduped chronological history with period-over-period percent
// changes plus the latest reading.
func buildIndicator(obs []Observation) Indicator {
	// Keep the last value per date; FRED revisions can duplicate dates.
	deduped := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if n := len(deduped); n > 0 && deduped[n-1].Date == o.Date {
			deduped[n-1] = o
			continue
		}
		deduped = append(deduped, o)
	}

	history := make([]IndicatorPoint, len(deduped))
	for i, o := range deduped {
		var pct float64
		if i > 0 && deduped[i-1].Value != 0 {
			pct = round2((o.Value - deduped[i-1].Value) / deduped[i-1].Value * 100)
		}
		history[i] = IndicatorPoint{Date: o.Date, Value: o.Value, PctChange: pct}
	}

	latest := deduped[len(deduped)-1]
	prev := latest
	if len(deduped) > 1 {
		prev = deduped[len(deduped)-2]
	}
	var change float64
	if prev.Value != 0 {
		change = round2((latest.Value - prev.Value) / prev.Value * 100)
	}
	return Indicator{
		History:    history,
		Current:    latest.Value,
		LatestDate: latest.Date,
		Change:     change,
	}
}
