package findata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client is a financialdatasets.ai API client for daily price history
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

// NewClient creates a new financialdatasets.ai client
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log.With().Str("client", "findata").Logger(),
	}
}

// pricesResponse represents the response from the /prices endpoint
type pricesResponse struct {
	Prices []struct {
		Time   string  `json:"time"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"prices"`
}

// GetDailyPrices fetches daily OHLCV bars for a ticker within [startDate, endDate].
// Dates use the YYYY-MM-DD format.
func (c *Client) GetDailyPrices(ticker, startDate, endDate string) ([]Bar, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key required but not configured")
	}

	params := url.Values{}
	params.Add("ticker", ticker)
	params.Add("interval", "day")
	params.Add("interval_multiplier", "1")
	params.Add("start_date", startDate)
	params.Add("end_date", endDate)

	reqURL := c.baseURL + "/prices/?" + params.Encode()

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("prices API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result pricesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Prices) == 0 {
		return nil, fmt.Errorf("no price data returned for %s", ticker)
	}

	bars := make([]Bar, 0, len(result.Prices))
	for _, p := range result.Prices {
		date, err := normalizeDate(p.Time)
		if err != nil {
			c.log.Warn().Str("ticker", ticker).Str("time", p.Time).Msg("Skipping bar with unparseable time")
			continue
		}

		bars = append(bars, Bar{
			Date:   date,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		})
	}

	c.log.Info().
		Str("ticker", ticker).
		Str("start", startDate).
		Str("end", endDate).
		Int("count", len(bars)).
		Msg("Fetched daily prices")

	return bars, nil
}

// normalizeDate reduces the API's timestamp formats to a plain YYYY-MM-DD date
func normalizeDate(value string) (string, error) {
	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return "", fmt.Errorf("unrecognized time format %q", value)
}
