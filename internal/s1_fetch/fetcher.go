package s1_fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Fetcher runs the fetch stage: per-symbol calls to the configured data
// sources, fanned out over a bounded worker pool. A symbol that fails on
// every source becomes an item error; the stage itself fails only when it
// has no sources or no symbols produced data.
type Fetcher struct {
	sources   []contracts.DataSource
	enrichers []contracts.DataSource
	logger    *logger.Logger
}

// NewFetcher creates the fetch stage. Sources are tried in order until
// one returns a price series; enrichers contribute sector and market cap
// on top of whatever source succeeded.
func NewFetcher(sources, enrichers []contracts.DataSource, log *logger.Logger) *Fetcher {
	return &Fetcher{
		sources:   sources,
		enrichers: enrichers,
		logger:    log,
	}
}

type fetchResult struct {
	symbol  string
	payload *contracts.RawPayload
	err     error
}

// Fetch populates state.Raw for every symbol in state.Order. Results are
// merged only after all workers finish, so the output is deterministic
// regardless of completion order.
func (f *Fetcher) Fetch(ctx context.Context, state *contracts.RunState, res *strategyconfig.Resolved) {
	if len(f.sources) == 0 {
		state.AddStageError(contracts.StageFetch, "no data sources configured")
		return
	}
	if len(state.Order) == 0 {
		state.AddStageError(contracts.StageFetch, "no symbols to fetch")
		return
	}

	f.logger.WithFields(map[string]interface{}{
		"run_id":    state.RunID,
		"symbols":   len(state.Order),
		"timeframe": state.Timeframe,
		"workers":   res.FetchWorkers,
	}).Info("Starting fetch stage")

	workers := res.FetchWorkers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan fetchResult, len(state.Order))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				payload, err := f.fetchSymbol(ctx, symbol, state.Timeframe, res)
				results <- fetchResult{symbol: symbol, payload: payload, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, symbol := range state.Order {
			select {
			case <-ctx.Done():
				return
			case jobs <- symbol:
			}
		}
	}()

	wg.Wait()
	close(results)

	// Merge in discovery order so item errors are stable
	bySymbol := make(map[string]fetchResult, len(state.Order))
	for r := range results {
		bySymbol[r.symbol] = r
	}

	if err := ctx.Err(); err != nil {
		state.AddStageError(contracts.StageFetch, "cancelled")
		return
	}

	for _, symbol := range state.Order {
		r, ok := bySymbol[symbol]
		if !ok {
			state.AddItemError(contracts.StageFetch, symbol, "fetch did not complete")
			continue
		}
		if r.err != nil {
			state.AddItemError(contracts.StageFetch, symbol, r.err.Error())
			continue
		}
		state.Raw[symbol] = r.payload
	}

	if len(state.Raw) == 0 {
		state.AddStageError(contracts.StageFetch, "all symbols failed to fetch")
		return
	}

	f.logger.WithFields(map[string]interface{}{
		"run_id":  state.RunID,
		"fetched": len(state.Raw),
		"failed":  len(state.Order) - len(state.Raw),
	}).Info("Fetch stage completed")
}

// fetchSymbol tries each source in order under a per-call timeout, then
// layers enrichment onto the first successful payload. A panicking
// source becomes an item error for that symbol, never a crashed worker.
func (f *Fetcher) fetchSymbol(ctx context.Context, symbol, timeframe string, res *strategyconfig.Resolved) (payload *contracts.RawPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var lastErr error

	for _, source := range f.sources {
		callCtx, cancel := context.WithTimeout(ctx, res.RequestTimeout)
		p, err := source.Fetch(callCtx, symbol, timeframe)
		cancel()

		if err != nil {
			lastErr = err
			f.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"source": source.Name(),
				"error":  err.Error(),
			}).Warn("Source fetch failed")

			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		payload = p
		break
	}

	if payload == nil {
		if lastErr != nil {
			return nil, fmt.Errorf("all sources failed: %w", lastErr)
		}
		return nil, fmt.Errorf("all sources failed for %s", symbol)
	}

	// Enrichment is best effort
	for _, enricher := range f.enrichers {
		callCtx, cancel := context.WithTimeout(ctx, res.RequestTimeout)
		extra, err := enricher.Fetch(callCtx, symbol, timeframe)
		cancel()

		if err != nil {
			f.logger.WithFields(map[string]interface{}{
				"symbol":   symbol,
				"enricher": enricher.Name(),
				"error":    err.Error(),
			}).Debug("Enrichment skipped")
			continue
		}

		if payload.Sector == "" {
			payload.Sector = extra.Sector
		}
		if payload.MarketCap == 0 {
			payload.MarketCap = extra.MarketCap
		}
		payload.Providers = append(payload.Providers, extra.Providers...)
	}

	return payload, nil
}
