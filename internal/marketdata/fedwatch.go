package marketdata

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/tidwall/gjson"
)

const atlantaFedURL = "https://www.atlantafed.org/cenfis/market-probability-tracker/data"

// fetchFedWatch builds rate-decision probabilities through a fallback
// chain: the Atlanta Fed tracker, then a model from current market
// rates, then a neutral estimate. The last stage cannot fail.
func (s *Service) fetchFedWatch(ctx context.Context) (*FedWatchData, error) {
	if data := s.fetchAtlantaFed(ctx); data != nil {
		return data, nil
	}
	if data := s.fedWatchFromMarketRates(ctx); data != nil {
		return data, nil
	}
	return s.fedWatchFallback(ctx), nil
}

// fetchAtlantaFed queries the Atlanta Fed Market Probability Tracker.
// Any failure returns nil so the chain falls through.
func (s *Service) fetchAtlantaFed(ctx context.Context) *FedWatchData {
	req, _ := http.NewRequestWithContext(ctx, "GET", atlantaFedURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil
	}

	probs := gjson.GetBytes(body, "probabilities")
	if !probs.Exists() || !probs.IsArray() {
		return nil
	}
	currentRateBps := 400.0
	if cr := gjson.GetBytes(body, "currentRate"); cr.Exists() {
		currentRateBps = cr.Float() * 100
	}
	changeProbs := map[int]float64{}
	probs.ForEach(func(_, item gjson.Result) bool {
		changeProbs[int(item.Get("rateChange").Int())] = item.Get("probability").Float()
		return true
	})
	if len(changeProbs) == 0 {
		return nil
	}

	targetProbs := targetRateProbabilities(currentRateBps, changeProbs)
	likelyRange, likelyProb := mostLikely(targetProbs)

	meetingDate := gjson.GetBytes(body, "meetingDate").String()
	if meetingDate == "" {
		meetingDate = "N/A"
	}

	return &FedWatchData{
		NextMeetingDate:         meetingDate,
		Probabilities:           changeKeyStrings(changeProbs),
		TargetRateProbabilities: scalePercent(targetProbs),
		MostLikelyChange:        likelyRange,
		MostLikelyProbability:   round2(likelyProb * 100),
		AllProbabilities:        scalePercent(changeKeyStrings(changeProbs)),
		CurrentTargetRate:       currentTargetRange(currentRateBps),
		Source:                  "Atlanta Fed Market Probability Tracker",
	}
}

// fedWatchFromMarketRates models decision odds from the spread between
// the effective Fed Funds rate (FRED DFF) and the 13-week bill yield.
// Short yields below the funds rate mean the market is pricing cuts.
// Simplified relative to futures-implied probabilities.
func (s *Service) fedWatchFromMarketRates(ctx context.Context) *FedWatchData {
	if !s.fred.Configured() {
		return nil
	}
	currentRate, err := s.fred.LatestValue(ctx, "DFF", 30*24*time.Hour)
	if err != nil {
		return nil
	}
	shortYield, err := fetchLatestClose(ctx, "^IRX")
	if err != nil {
		return nil
	}
	spread := currentRate - shortYield

	var changeProbs map[int]float64
	switch {
	case spread > 0.15: // market pricing cuts
		cut := math.Min(0.75, 0.4+spread*1.5)
		hike := math.Max(0.05, 0.3-spread*1.0)
		changeProbs = map[int]float64{
			-25: math.Max(0.1, cut),
			0:   math.Max(0.1, 1.0-cut-hike),
			25:  math.Max(0.05, hike),
		}
	case spread < -0.15: // market pricing hikes
		hike := math.Min(0.75, 0.4+math.Abs(spread)*1.5)
		cut := math.Max(0.05, 0.3-math.Abs(spread)*1.0)
		changeProbs = map[int]float64{
			-25: math.Max(0.05, cut),
			0:   math.Max(0.1, 1.0-cut-hike),
			25:  math.Max(0.1, hike),
		}
	default:
		changeProbs = map[int]float64{-25: 0.3, 0: 0.5, 25: 0.2}
	}
	normalize(changeProbs)

	currentRateBps := currentRate * 100
	targetProbs := targetRateProbabilities(currentRateBps, changeProbs)
	likelyRange, likelyProb := mostLikely(targetProbs)

	return &FedWatchData{
		NextMeetingDate:         nextMeetingEstimate(),
		Probabilities:           changeKeyStrings(changeProbs),
		TargetRateProbabilities: scalePercent(targetProbs),
		MostLikelyChange:        likelyRange,
		MostLikelyProbability:   round2(likelyProb * 100),
		AllProbabilities:        scalePercent(changeKeyStrings(changeProbs)),
		CurrentFedRate:          round2(currentRate),
		CurrentTargetRate:       currentTargetRange(currentRateBps),
		Source:                  "Calculated from Market Rates",
	}
}

// fedWatchFallback estimates from the funds rate level alone, or settles
// on neutral odds around an assumed 4% rate.
func (s *Service) fedWatchFallback(ctx context.Context) *FedWatchData {
	currentRateBps := 400.0
	changeProbs := map[int]float64{-25: 0.35, 0: 0.4, 25: 0.25}
	source := "Estimated Probabilities"
	var currentRate float64

	if s.fred.Configured() {
		if rate, err := s.fred.LatestValue(ctx, "DFF", 5*24*time.Hour); err == nil {
			currentRate = rate
			currentRateBps = rate * 100
			switch {
			case rate > 4.5:
				changeProbs = map[int]float64{-25: 0.6, 0: 0.3, 25: 0.1}
			case rate < 3.0:
				changeProbs = map[int]float64{-25: 0.1, 0: 0.3, 25: 0.6}
			default:
				changeProbs = map[int]float64{-25: 0.3, 0: 0.4, 25: 0.3}
			}
			source = "Estimated from Current Rates"
		}
	}

	targetProbs := targetRateProbabilities(currentRateBps, changeProbs)
	likelyRange, likelyProb := mostLikely(targetProbs)

	data := &FedWatchData{
		NextMeetingDate:         nextMeetingEstimate(),
		Probabilities:           changeKeyStrings(changeProbs),
		TargetRateProbabilities: scalePercent(targetProbs),
		MostLikelyChange:        likelyRange,
		MostLikelyProbability:   round2(likelyProb * 100),
		AllProbabilities:        scalePercent(changeKeyStrings(changeProbs)),
		CurrentTargetRate:       currentTargetRange(currentRateBps),
		Source:                  source,
		Note:                    "Probabilities estimated from current rates. For precise probabilities, visit: https://www.atlantafed.org/cenfis/market-probability-tracker",
	}
	if currentRate != 0 {
		data.CurrentFedRate = round2(currentRate)
	}
	return data
}

// targetRateProbabilities converts change-in-bps probabilities into
// target-range probabilities, snapping range bounds to the Fed's 25 bp
// boundaries.
func targetRateProbabilities(currentRateBps float64, changeProbs map[int]float64) map[string]float64 {
	out := make(map[string]float64, len(changeProbs))
	for change, prob := range changeProbs {
		lower := roundTo25(currentRateBps + float64(change) - 12.5)
		upper := roundTo25(currentRateBps + float64(change) + 12.5)
		out[fmt.Sprintf("%d-%d", lower, upper)] += prob
	}
	return out
}

func roundTo25(bps float64) int {
	return int(math.Round(bps/25)) * 25
}

func currentTargetRange(currentRateBps float64) string {
	return fmt.Sprintf("%d-%d", int(currentRateBps-12.5), int(currentRateBps+12.5))
}

// mostLikely returns the range with the highest probability, breaking
// ties on the lower range bound for determinism.
func mostLikely(probs map[string]float64) (string, float64) {
	keys := make([]string, 0, len(probs))
	for k := range probs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var bestKey string
	best := math.Inf(-1)
	for _, k := range keys {
		if probs[k] > best {
			best = probs[k]
			bestKey = k
		}
	}
	return bestKey, best
}

func normalize(probs map[int]float64) {
	var total float64
	for _, p := range probs {
		total += p
	}
	if total == 0 {
		return
	}
	for k := range probs {
		probs[k] /= total
	}
}

func changeKeyStrings(probs map[int]float64) map[string]float64 {
	out := make(map[string]float64, len(probs))
	for k, v := range probs {
		out[fmt.Sprintf("%d", k)] = v
	}
	return out
}

func scalePercent(probs map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(probs))
	for k, v := range probs {
		out[k] = round2(v * 100)
	}
	return out
}

// nextMeetingEstimate is a rough next-FOMC date, formatted in US Eastern
// time where the Fed lives.
func nextMeetingEstimate() string {
	return time.Now().In(easternTime()).AddDate(0, 0, 30).Format("January 02, 2006")
}

// easternTime returns America/New_York, falling back to fixed EST if
// tzdata is missing.
func easternTime() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}
