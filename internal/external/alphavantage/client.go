package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/httputil"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Client fetches daily time series from the Alpha Vantage API.
// All Alpha Vantage calls go through this client.
type Client struct {
	cfg        config.AlphaVantageConfig
	httpClient *httputil.Client
	logger     *logger.Logger
}

// New creates a new Alpha Vantage client
func New(cfg config.AlphaVantageConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
	}
}

// Name identifies the source in logs and diagnostics
func (c *Client) Name() string {
	return "alpha_vantage"
}

// dailyResponse mirrors the TIME_SERIES_DAILY envelope
type dailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// Fetch returns the daily series for one symbol as a keyed object
// (date → record)
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string) (*contracts.RawPayload, error) {
	outputSize := "compact"
	if contracts.TimeframeLookbackDays(timeframe) > 100 {
		outputSize = "full"
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("apikey", c.cfg.APIKey)
	params.Set("outputsize", outputSize)

	var resp dailyResponse
	if err := c.httpClient.GetJSON(ctx, c.cfg.BaseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("alpha vantage request failed: %w", err)
	}

	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage rejected %s: %s", symbol, resp.ErrorMessage)
	}
	if resp.Note != "" {
		// Rate limit note comes back with HTTP 200
		return nil, fmt.Errorf("alpha vantage throttled: %s", resp.Note)
	}
	if len(resp.TimeSeries) == 0 {
		return nil, fmt.Errorf("alpha vantage returned no series for %s", symbol)
	}

	series := make(map[string]interface{}, len(resp.TimeSeries))
	for date, record := range resp.TimeSeries {
		series[date] = normalizeRecord(date, record)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"days":   len(series),
	}).Debug("Fetched Alpha Vantage series")

	return &contracts.RawPayload{
		Symbol:    symbol,
		Series:    series,
		Providers: []string{c.Name()},
	}, nil
}

// normalizeRecord converts Alpha Vantage's prefixed string fields
// ("1. open": "182.15") into plain numeric columns
func normalizeRecord(date string, record map[string]string) map[string]interface{} {
	out := map[string]interface{}{"date": date}

	fields := map[string]string{
		"1. open":   "open",
		"2. high":   "high",
		"3. low":    "low",
		"4. close":  "close",
		"5. volume": "volume",
	}

	for key, col := range fields {
		raw, ok := record[key]
		if !ok {
			continue
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			out[col] = v
		}
	}

	return out
}
