package marketdata

import "ratesdash/internal/risk"

// RatesData is the payload of /api/rates: the sorted Treasury yield
// curve plus the derived curve analysis.
type RatesData struct {
	Yields     map[string]float64 `json:"yields"`
	YieldCurve risk.Curve         `json:"yield_curve"`
	Analysis   CurveAnalysis      `json:"analysis"`
	Error      string             `json:"error,omitempty"`
}

// CurveAnalysis summarizes curve shape and an illustrative DV01.
type CurveAnalysis struct {
	Spread2s10s     float64 `json:"spread_2s10s"`
	Spread5s30s     float64 `json:"spread_5s30s"`
	CurveShape      string  `json:"curve_shape"`
	TradePitch      string  `json:"trade_pitch"`
	DV0110MPosition string  `json:"dv01_10m_position"`
}

// IndicatorPoint is one observation of a macro series with its
// period-over-period percent change.
type IndicatorPoint struct {
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	PctChange float64 `json:"pct_change"`
}

// Indicator is one macro series: full history since the start date plus
// the latest reading and its change versus the prior period.
type Indicator struct {
	History    []IndicatorPoint `json:"history"`
	Current    float64          `json:"current"`
	LatestDate string           `json:"latest_date"`
	Change     float64          `json:"change"`
}

// MacroData maps indicator display names (CPI, PPI, ...) to their series.
type MacroData map[string]Indicator

// FedWatchData is the payload of /api/fedwatch: probabilities for the
// next FOMC rate decision, keyed by target-rate range in basis points
// ("350-375") with percentages.
type FedWatchData struct {
	NextMeetingDate         string             `json:"next_meeting_date"`
	Probabilities           map[string]float64 `json:"probabilities,omitempty"`
	TargetRateProbabilities map[string]float64 `json:"target_rate_probabilities"`
	MostLikelyChange        string             `json:"most_likely_change"`
	MostLikelyProbability   float64            `json:"most_likely_probability"`
	AllProbabilities        map[string]float64 `json:"all_probabilities,omitempty"`
	CurrentFedRate          float64            `json:"current_fed_rate,omitempty"`
	CurrentTargetRate       string             `json:"current_target_rate"`
	Source                  string             `json:"source"`
	Note                    string             `json:"note,omitempty"`
}

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields)
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// yahooSparkResp mirrors Yahoo v7 spark fallback (trimmed)
type yahooSparkResp struct {
	Spark struct {
		Result []struct {
			Symbol   string `json:"symbol"`
			Response []struct {
				Timestamp []int64   `json:"timestamp"`
				Close     []float64 `json:"close"`
			} `json:"response"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"spark"`
}
