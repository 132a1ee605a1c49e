package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const fredBaseURL = "https://api.stlouisfed.org/fred/series/observations"

// Error text matches what the dashboard frontend looks for.
var errMissingFREDKey = errors.New("Missing FRED API Key")

// Observation is a single dated value from a FRED series.
type Observation struct {
	Date  string
	Value float64
}

// FREDClient fetches observations from the St. Louis Fed FRED API.
// A client with an empty key is unconfigured and refuses all requests,
// letting FRED-backed features degrade instead of failing at boot.
type FREDClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewFREDClient(apiKey string) *FREDClient {
	return &FREDClient{
		apiKey:  apiKey,
		baseURL: fredBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *FREDClient) Configured() bool { return c.apiKey != "" }

// Observations returns the non-missing observations of a series between
// start and end, in chronological order. FRED encodes missing values as
// "."; those are skipped.
func (c *FREDClient) Observations(ctx context.Context, seriesID string, start, end time.Time) ([]Observation, error) {
	if !c.Configured() {
		return nil, errMissingFREDKey
	}
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("observation_start", start.Format("2006-01-02"))
	q.Set("observation_end", end.Format("2006-01-02"))

	req, _ := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+q.Encode(), nil)
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", seriesID, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fred response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fred %s returned %d: %s", seriesID, resp.StatusCode, bodyPreview(body))
	}

	obsList := gjson.GetBytes(body, "observations")
	if !obsList.Exists() {
		return nil, fmt.Errorf("fred %s: unexpected body: %s", seriesID, bodyPreview(body))
	}
	var out []Observation
	obsList.ForEach(func(_, item gjson.Result) bool {
		raw := item.Get("value").String()
		if raw == "" || raw == "." {
			return true
		}
		v := item.Get("value").Float()
		out = append(out, Observation{Date: item.Get("date").String(), Value: v})
		return true
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("fred %s: no observations", seriesID)
	}
	return out, nil
}

// LatestValue returns the most recent observation within the lookback
// window ending today.
func (c *FREDClient) LatestValue(ctx context.Context, seriesID string, lookback time.Duration) (float64, error) {
	end := time.Now()
	obs, err := c.Observations(ctx, seriesID, end.Add(-lookback), end)
	if err != nil {
		return 0, err
	}
	return obs[len(obs)-1].Value, nil
}
