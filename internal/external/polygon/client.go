package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/httputil"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Client fetches daily aggregate bars from Polygon.io
type Client struct {
	cfg        config.PolygonConfig
	httpClient *httputil.Client
	logger     *logger.Logger
}

// New creates a new Polygon client
func New(cfg config.PolygonConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
	}
}

// Name identifies the source in logs and diagnostics
func (c *Client) Name() string {
	return "polygon"
}

type aggsResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Results []struct {
		Timestamp int64   `json:"t"`
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"results"`
}

// Fetch returns the daily aggregates for one symbol as a list of records
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string) (*contracts.RawPayload, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -contracts.TimeframeLookbackDays(timeframe))

	endpoint := fmt.Sprintf("%s/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&limit=50000",
		c.cfg.BaseURL, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create polygon request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polygon request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("polygon returned status %d for %s", httpResp.StatusCode, symbol)
	}

	var resp aggsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("polygon response decode failed: %w", err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("polygon rejected %s: %s", symbol, resp.Error)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("polygon returned no bars for %s", symbol)
	}

	records := make([]interface{}, 0, len(resp.Results))
	for _, bar := range resp.Results {
		records = append(records, map[string]interface{}{
			"date":   time.UnixMilli(bar.Timestamp).UTC().Format("2006-01-02"),
			"open":   bar.Open,
			"high":   bar.High,
			"low":    bar.Low,
			"close":  bar.Close,
			"volume": bar.Volume,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(records),
	}).Debug("Fetched Polygon aggregates")

	return &contracts.RawPayload{
		Symbol:    symbol,
		Series:    records,
		Providers: []string{c.Name()},
	}, nil
}
