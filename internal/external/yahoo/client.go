package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Client fetches daily price history and quotes from Yahoo Finance
type Client struct {
	logger *logger.Logger
}

// New creates a new Yahoo Finance client
func New(log *logger.Logger) *Client {
	return &Client{logger: log}
}

// Name identifies the source in logs and diagnostics
func (c *Client) Name() string {
	return "yahoo_finance"
}

// Fetch returns the daily series for one symbol as a list of records.
// The chart iterator blocks without honoring ctx, so cancellation is
// checked before the call and after iteration.
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string) (*contracts.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -contracts.TimeframeLookbackDays(timeframe))

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	records := make([]interface{}, 0)
	for iter.Next() {
		bar := iter.Bar()

		open, _ := bar.Open.Float64()
		high, _ := bar.High.Float64()
		low, _ := bar.Low.Float64()
		closePrice, _ := bar.Close.Float64()

		records = append(records, map[string]interface{}{
			"date":   time.Unix(int64(bar.Timestamp), 0).UTC().Format("2006-01-02"),
			"open":   open,
			"high":   high,
			"low":    low,
			"close":  closePrice,
			"volume": float64(bar.Volume),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("yahoo chart failed for %s: %w", symbol, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("yahoo returned no bars for %s", symbol)
	}

	payload := &contracts.RawPayload{
		Symbol:    symbol,
		Series:    records,
		Providers: []string{c.Name()},
	}

	// Equity enrichment is best effort; MarketCap lives on the equity
	// quote, not the base quote
	if eq, err := equity.Get(symbol); err == nil && eq != nil {
		payload.MarketCap = float64(eq.MarketCap)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(records),
	}).Debug("Fetched Yahoo Finance series")

	return payload, nil
}
