package marketdata

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"ratesdash/internal/risk"
)

// fredYieldSeries maps maturity labels to FRED constant-maturity series,
// filling the tenors Yahoo has no index for.
var fredYieldSeries = map[string]string{
	"1M": "DGS1MO",
	"3M": "DGS3MO",
	"6M": "DGS6MO",
	"1Y": "DGS1",
	"2Y": "DGS2",
	"7Y": "DGS7",
}

// MaturityYears converts a maturity label to years for sorting
// ("13W" -> 0.25, "6M" -> 0.5, "10Y" -> 10).
func MaturityYears(maturity string) float64 {
	if len(maturity) < 2 {
		return 0
	}
	n, err := strconv.Atoi(maturity[:len(maturity)-1])
	if err != nil {
		return 0
	}
	switch maturity[len(maturity)-1] {
	case 'W':
		return float64(n) / 52.0
	case 'M':
		return float64(n) / 12.0
	case 'Y':
		return float64(n)
	}
	return 0
}

// fetchYields gathers the Treasury curve from Yahoo index tickers and,
// when a FRED key is configured, the DGS constant-maturity series.
// Individual tenor failures are logged and skipped; only a fully empty
// result is an error.
func (s *Service) fetchYields(ctx context.Context) (map[string]float64, error) {
	yields := map[string]float64{}
	for label, symbol := range yahooTickers {
		v, err := fetchLatestClose(ctx, symbol)
		if err != nil {
			log.Printf("fetch: %s (%s): %v", label, symbol, err)
			continue
		}
		yields[label] = v
	}
	if s.fred.Configured() {
		end := time.Now()
		start := end.AddDate(0, 0, -5)
		for label, seriesID := range fredYieldSeries {
			obs, err := s.fred.Observations(ctx, seriesID, start, end)
			if err != nil {
				log.Printf("fetch: %s (%s): %v", label, seriesID, err)
				continue
			}
			yields[label] = obs[len(obs)-1].Value
		}
	} else {
		log.Println("fetch: FRED_API_KEY not set, skipping FRED yield data")
	}
	if len(yields) == 0 {
		return nil, errors.New("failed to fetch yields")
	}
	return yields, nil
}

func (s *Service) fetchRates(ctx context.Context) (*RatesData, error) {
	yields, err := s.fetchYields(ctx)
	if err != nil {
		return nil, err
	}
	return buildRates(yields), nil
}

// buildRates derives the sorted curve and its analysis from raw yields.
func buildRates(yields map[string]float64) *RatesData {
	curve := make(risk.Curve, 0, len(yields))
	for label, y := range yields {
		curve = append(curve, risk.Point{Maturity: label, Years: MaturityYears(label), Yield: y})
	}
	sort.Slice(curve, func(i, j int) bool { return curve[i].Years < curve[j].Years })

	// 2s10s with short-leg fallback when the 2Y tenor is unavailable.
	shortYield := yields["2Y"]
	if _, ok := yields["2Y"]; !ok {
		if v, ok := yields["1Y"]; ok {
			shortYield = v
		} else if v, ok := yields["3M"]; ok {
			shortYield = v
		} else if v, ok := yields["13W"]; ok {
			shortYield = v
		}
	}
	spread2s10s := yields["10Y"] - shortYield
	spread5s30s := yields["30Y"] - yields["5Y"]

	curveShape := "Normal"
	tradePitch := "Bear Flattener (Rates rising)"
	if spread2s10s < 0 {
		curveShape = "Inverted"
		tradePitch = "Bull Steepener (Expecting cuts)"
	}

	y10, ok := yields["10Y"]
	if !ok {
		y10 = 4.0
	}
	dv01 := risk.DV01(10_000_000, 8.0, y10)

	return &RatesData{
		Yields:     yields,
		YieldCurve: curve,
		Analysis: CurveAnalysis{
			Spread2s10s:     round2(spread2s10s),
			Spread5s30s:     round2(spread5s30s),
			CurveShape:      curveShape,
			TradePitch:      tradePitch,
			DV0110MPosition: formatDollars(dv01),
		},
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// formatDollars renders "$7,689.57" style amounts with fixed cents.
func formatDollars(x float64) string {
	if x < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -x)
	}
	return "$" + humanize.FormatFloat("#,###.##", x)
}
