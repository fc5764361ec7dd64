package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
)

// DefaultChartBaseURL is the public chart API endpoint.
const DefaultChartBaseURL = "https://query1.finance.yahoo.com"

// ChartClient fetches OHLCV bars from a Yahoo-style chart JSON API.
type ChartClient struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// ClientOption configures ChartClient.
type ClientOption func(*ChartClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *ChartClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *ChartClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the delay between retries.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *ChartClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ChartClient) {
		c.client = client
	}
}

// NewChartClient creates a ChartClient for the given base URL.
func NewChartClient(baseURL string, opts ...ClientOption) *ChartClient {
	c := &ChartClient{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse is the chart API response envelope. Quote columns carry
// nulls for missing bars, hence the pointer elements.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch downloads bars for [start, end) at the given interval. Returns
// ErrDataUnavailable when the API has no rows for the range. Bars with
// null closes (halted or partial bars) are dropped.
func (c *ChartClient) Fetch(ctx context.Context, ticker string, start, end time.Time, interval string) (*domain.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&period1=%d&period2=%d&events=div%%2Csplit",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(interval), start.Unix(), end.Unix())

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", ticker, err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chart for %s: %w", ticker, err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error for %s: %s (%s)",
			ticker, parsed.Chart.Error.Description, parsed.Chart.Error.Code)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrDataUnavailable, ticker, interval)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	series := &domain.PriceSeries{Ticker: ticker, Interval: interval}
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil || *quote.Close[i] <= 0 {
			continue
		}
		bar := domain.PriceBar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		series.Bars = append(series.Bars, bar)
	}

	if len(series.Bars) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrDataUnavailable, ticker, interval)
	}
	return series, nil
}

// get performs the request with retries on transport errors and 5xx
// responses.
func (c *ChartClient) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "caracas-signal/1.0")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return body, nil
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}
