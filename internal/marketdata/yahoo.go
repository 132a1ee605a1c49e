package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	yahooHosts    = []string{"query1.finance.yahoo.com", "query2.finance.yahoo.com"}
	yahooBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}
)

// yahooTickers maps maturity labels to the Yahoo index symbols that quote
// Treasury yields directly (^TNX prints 4.05 for a 4.05% 10Y).
var yahooTickers = map[string]string{
	"13W": "^IRX",
	"5Y":  "^FVX",
	"10Y": "^TNX",
	"30Y": "^TYX",
}

func yahooRequest(ctx context.Context, url, symbol string) *http.Request {
	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", strings.ToUpper(symbol)))
	return req
}

// fetchLatestClose returns the most recent daily close for a symbol,
// rotating across Yahoo hosts with backoff and falling back to the v7
// spark endpoint when the chart endpoint is throttled.
func fetchLatestClose(ctx context.Context, symbol string) (float64, error) {
	var yc yahooChartResp
	var lastErr error
	for attempt := 0; attempt < len(yahooBackoffs)+1; attempt++ {
		for _, host := range yahooHosts {
			url := fmt.Sprintf("https://%s/v8/finance/chart/%s?range=5d&interval=1d", host, symbol)
			resp, err := http.DefaultClient.Do(yahooRequest(ctx, url, symbol))
			if err != nil {
				lastErr = err
				continue
			}
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read yahoo response: %w", readErr)
				continue
			}
			if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
				lastErr = fmt.Errorf("yahoo %s returned 429: Edge: Too Many Requests", host)
				continue
			}
			if resp.StatusCode != http.StatusOK {
				lastErr = fmt.Errorf("yahoo %s returned %d: %s", host, resp.StatusCode, bodyPreview(body))
				continue
			}
			if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
				lastErr = fmt.Errorf("yahoo returned non-json body: %s", bodyPreview(body))
				continue
			}
			if err := json.Unmarshal(body, &yc); err != nil {
				lastErr = fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, bodyPreview(body))
				continue
			}
			lastErr = nil
			break
		}
		if lastErr == nil {
			break
		}
		if attempt < len(yahooBackoffs) {
			time.Sleep(yahooBackoffs[attempt])
		}
	}
	if lastErr == nil {
		if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
			return 0, errors.New("no data")
		}
		return latestValidClose(yc.Chart.Result[0].Indicators.Quote[0].Close)
	}

	// Spark fallback
	var sp yahooSparkResp
	for attempt := 0; attempt < len(yahooBackoffs)+1 && lastErr != nil; attempt++ {
		for _, host := range yahooHosts {
			url := fmt.Sprintf("https://%s/v7/finance/spark?symbols=%s&range=5d&interval=1d", host, strings.ToUpper(symbol))
			resp, err := http.DefaultClient.Do(yahooRequest(ctx, url, symbol))
			if err != nil {
				lastErr = err
				continue
			}
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read yahoo spark response: %w", readErr)
				continue
			}
			if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
				lastErr = fmt.Errorf("yahoo %s returned 429 on spark", host)
				continue
			}
			if resp.StatusCode != http.StatusOK {
				lastErr = fmt.Errorf("yahoo %s spark returned %d: %s", host, resp.StatusCode, bodyPreview(body))
				continue
			}
			if strings.HasPrefix(string(body), "<") {
				lastErr = errors.New("yahoo spark returned non-json body")
				continue
			}
			if err := json.Unmarshal(body, &sp); err != nil {
				lastErr = fmt.Errorf("failed to parse yahoo spark json: %v", err)
				continue
			}
			if len(sp.Spark.Result) > 0 && len(sp.Spark.Result[0].Response) > 0 {
				return latestValidClose(sp.Spark.Result[0].Response[0].Close)
			}
			lastErr = errors.New("no data")
		}
		if attempt < len(yahooBackoffs) {
			time.Sleep(yahooBackoffs[attempt])
		}
	}
	return 0, lastErr
}

// latestValidClose walks the series backwards past trailing zeros and
// negative prints (half-filled bars from Yahoo).
func latestValidClose(closes []float64) (float64, error) {
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] > 0 {
			return closes[i], nil
		}
	}
	return 0, errors.New("no valid close")
}

func bodyPreview(body []byte) string {
	preview := string(body)
	if len(preview) > 120 {
		preview = preview[:120]
	}
	return preview
}
