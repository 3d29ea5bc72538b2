package finnhub

import (
	"context"
	"fmt"
	"net/url"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/httputil"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Client fetches quote and company profile data from Finnhub.
// It carries no price history, so it acts as an enrichment source:
// sector and market cap are merged into payloads fetched elsewhere.
type Client struct {
	cfg        config.FinnhubConfig
	httpClient *httputil.Client
	logger     *logger.Logger
}

// New creates a new Finnhub client
func New(cfg config.FinnhubConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
	}
}

// Name identifies the source in logs and diagnostics
func (c *Client) Name() string {
	return "finnhub"
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
}

type profileResponse struct {
	Name      string  `json:"name"`
	Industry  string  `json:"finnhubIndustry"`
	MarketCap float64 `json:"marketCapitalization"` // millions of USD
	Currency  string  `json:"currency"`
	Exchange  string  `json:"exchange"`
}

// Fetch returns sector and market cap enrichment for one symbol.
// The timeframe is ignored because Finnhub's free tier has no history.
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string) (*contracts.RawPayload, error) {
	profile, err := c.profile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	quote, err := c.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if profile.Name == "" && quote.Current == 0 {
		return nil, fmt.Errorf("finnhub has no data for %s", symbol)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"sector": profile.Industry,
	}).Debug("Fetched Finnhub profile")

	return &contracts.RawPayload{
		Symbol:    symbol,
		Sector:    profile.Industry,
		MarketCap: profile.MarketCap * 1e6,
		Providers: []string{c.Name()},
	}, nil
}

func (c *Client) quote(ctx context.Context, symbol string) (*quoteResponse, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("token", c.cfg.APIKey)

	var resp quoteResponse
	if err := c.httpClient.GetJSON(ctx, c.cfg.BaseURL+"/quote?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("finnhub quote failed: %w", err)
	}

	return &resp, nil
}

func (c *Client) profile(ctx context.Context, symbol string) (*profileResponse, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("token", c.cfg.APIKey)

	var resp profileResponse
	if err := c.httpClient.GetJSON(ctx, c.cfg.BaseURL+"/stock/profile2?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("finnhub profile failed: %w", err)
	}

	return &resp, nil
}
