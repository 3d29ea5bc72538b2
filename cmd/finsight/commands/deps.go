package commands

import (
	"fmt"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/external/alphavantage"
	"github.com/finsightlab/finsight/internal/external/finnhub"
	"github.com/finsightlab/finsight/internal/external/finviz"
	"github.com/finsightlab/finsight/internal/external/polygon"
	"github.com/finsightlab/finsight/internal/external/yahoo"
	"github.com/finsightlab/finsight/internal/llm"
	"github.com/finsightlab/finsight/internal/pipeline"
	"github.com/finsightlab/finsight/internal/report"
	"github.com/finsightlab/finsight/internal/s1_fetch"
	"github.com/finsightlab/finsight/internal/s2_process"
	"github.com/finsightlab/finsight/internal/s3_analyze"
	"github.com/finsightlab/finsight/internal/selection"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/httputil"
	"github.com/finsightlab/finsight/pkg/logger"
)

// buildPipeline wires the configured providers, the LLM narrator and the
// five stages into an orchestrator. The discoverer is returned separately
// so the scheduler can refresh its universe cache.
func buildPipeline(cfg *config.Config, log *logger.Logger) (*pipeline.Orchestrator, *pipeline.Registry, *s1_fetch.CachedDiscoverer, error) {
	strategy, err := strategyconfig.Load(cfg.StrategyFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load strategy: %w", err)
	}

	// Primary history sources, in fallback order
	var sources []contracts.DataSource
	if cfg.Yahoo.Enabled {
		sources = append(sources, yahoo.New(log))
	}
	if cfg.AlphaVantage.Enabled && cfg.AlphaVantage.APIKey != "" {
		// Free tier allows 5 requests per minute
		client := httputil.New(log).WithRateLimit(5.0/60.0, 1)
		sources = append(sources, alphavantage.New(cfg.AlphaVantage, client, log))
	}
	if cfg.Polygon.Enabled && cfg.Polygon.APIKey != "" {
		client := httputil.New(log).WithRateLimit(5.0/60.0, 5)
		sources = append(sources, polygon.New(cfg.Polygon, client, log))
	}

	// Enrichment sources fill sector and market cap
	var enrichers []contracts.DataSource
	if cfg.Finnhub.Enabled && cfg.Finnhub.APIKey != "" {
		client := httputil.New(log).WithRateLimit(30, 30)
		enrichers = append(enrichers, finnhub.New(cfg.Finnhub, client, log))
	}

	var discoverer contracts.Discoverer
	var cached *s1_fetch.CachedDiscoverer
	if cfg.Finviz.Enabled {
		client := httputil.New(log).WithRateLimit(1, 1)
		screener := finviz.NewScreener(cfg.Finviz, client, log, strategy.Fetch.DiscoveryLimit)
		cached = s1_fetch.NewCachedDiscoverer(screener, cfg.Scheduler.UniverseCacheTTL, log)
		discoverer = cached
	}

	var narrator contracts.Narrator
	if cfg.LLM.APIKey != "" {
		client := httputil.NewWithTimeout(log, cfg.LLM.Timeout)
		narrator = llm.New(cfg.LLM, client, log)
	} else {
		narrator = llm.NewNoopNarrator()
	}

	registry := pipeline.NewRegistry(100)
	orchestrator := pipeline.NewOrchestrator(
		s1_fetch.NewFetcher(sources, enrichers, log),
		s2_process.NewProcessor(log),
		s3_analyze.NewAnalyzer(narrator, log),
		selection.NewRanker(log),
		report.NewReporter(log),
		discoverer,
		strategy,
		registry,
		log,
	)

	return orchestrator, registry, cached, nil
}
