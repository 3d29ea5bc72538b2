package s3_analyze

import (
	"context"
	"fmt"
	"sync"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/metrics"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Analyzer runs the analysis stage: the metric library over each cleaned
// table, plus an optional narrative addendum from the LLM collaborator.
// Metric failures degrade silently (nil pointer); LLM failures are
// embedded in the bundle; only an empty input halts the stage.
type Analyzer struct {
	narrator contracts.Narrator
	logger   *logger.Logger
}

// NewAnalyzer creates the analysis stage
func NewAnalyzer(narrator contracts.Narrator, log *logger.Logger) *Analyzer {
	return &Analyzer{
		narrator: narrator,
		logger:   log,
	}
}

// Analyze populates state.Analysis for every processed symbol. Per-symbol
// work runs on a bounded worker pool and results are merged only after
// all workers finish.
func (a *Analyzer) Analyze(ctx context.Context, state *contracts.RunState, res *strategyconfig.Resolved, settings contracts.AISettings, mode contracts.Mode) {
	if len(state.Processed) == 0 {
		state.AddStageError(contracts.StageAnalyze, "no processed data to analyze")
		return
	}

	a.logger.WithFields(map[string]interface{}{
		"run_id":  state.RunID,
		"symbols": len(state.Processed),
		"metrics": res.Metrics,
		"mode":    string(mode),
	}).Info("Starting analyze stage")

	narrated := a.narratedSymbols(state, mode)

	workers := res.AnalyzeWorkers
	if workers <= 0 {
		workers = 1
	}

	type analysisResult struct {
		symbol string
		bundle *contracts.MetricsBundle
	}

	jobs := make(chan string)
	results := make(chan analysisResult, len(state.Processed))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				bundle := a.analyzeSymbol(ctx, state.Processed[symbol], res, settings, mode, narrated[symbol])
				results <- analysisResult{symbol: symbol, bundle: bundle}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, symbol := range state.Order {
			if _, ok := state.Processed[symbol]; !ok {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- symbol:
			}
		}
	}()

	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		state.AddStageError(contracts.StageAnalyze, "cancelled")
		return
	}

	for r := range results {
		state.Analysis[r.symbol] = r.bundle
	}

	a.logger.WithFields(map[string]interface{}{
		"run_id":   state.RunID,
		"analyzed": len(state.Analysis),
	}).Info("Analyze stage completed")
}

// narratedSymbols decides which symbols get an LLM narrative. Full mode
// narrates everything; narrative mode caps the call count to keep LLM
// spend bounded.
func (a *Analyzer) narratedSymbols(state *contracts.RunState, mode contracts.Mode) map[string]bool {
	out := make(map[string]bool)
	if a.narrator == nil {
		return out
	}

	count := 0
	for _, symbol := range state.Order {
		if _, ok := state.Processed[symbol]; !ok {
			continue
		}
		if mode == contracts.ModeNarrative && count >= contracts.NarrativeSymbolCap {
			break
		}
		out[symbol] = true
		count++
	}
	return out
}

// analyzeSymbol computes the active metric subset for one table. A panic
// while computing one symbol degrades that symbol instead of crashing
// the worker. Narrative mode skips the metric library entirely and
// narrates from the raw summary alone.
func (a *Analyzer) analyzeSymbol(ctx context.Context, table *contracts.DataTable, res *strategyconfig.Resolved, settings contracts.AISettings, mode contracts.Mode, narrate bool) (bundle *contracts.MetricsBundle) {
	bundle = &contracts.MetricsBundle{
		Symbol:      table.Symbol,
		GoalWeights: res.GoalWeights,
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.WithFields(map[string]interface{}{
				"symbol": table.Symbol,
				"panic":  fmt.Sprintf("%v", r),
			}).Error("Metric computation panicked")
		}
	}()

	if mode != contracts.ModeNarrative {
		series := table.Series()

		if res.MetricEnabled(contracts.MetricMomentum) {
			bundle.Momentum = metrics.Momentum(series)
		}
		if res.MetricEnabled(contracts.MetricVolume) {
			bundle.Volume = metrics.Volume(series)
		}
		if res.MetricEnabled(contracts.MetricVolatility) {
			bundle.Volatility = metrics.Volatility(series)
		}
		if res.MetricEnabled(contracts.MetricMovingAverages) {
			bundle.MovingAverages = metrics.MovingAverages(series)
		}
		if res.MetricEnabled(contracts.MetricRelativeStrength) {
			bundle.RelativeStrength = metrics.RelativeStrength(series)
		}
	}

	if narrate {
		llmCtx, cancel := context.WithTimeout(ctx, res.LLMTimeout)
		analysis, err := a.narrator.Narrate(llmCtx, buildSummary(table, bundle), settings)
		cancel()

		if err != nil {
			// Narrators embed their own failures; a transport-level error
			// still must not halt the stage
			analysis = &contracts.LLMAnalysis{Status: "error", Error: err.Error()}
		}
		bundle.LLM = analysis
	}

	return bundle
}

// buildSummary assembles the compact summary handed to the LLM
func buildSummary(table *contracts.DataTable, bundle *contracts.MetricsBundle) contracts.StockSummary {
	summary := contracts.StockSummary{
		Symbol:    table.Symbol,
		Sector:    table.Sector,
		MarketCap: table.MarketCap,
		AIScore:   bundle.AIScoreProxy(),
	}

	closes := table.Column("close")
	if n := len(closes); n > 0 {
		summary.Price = closes[n-1]
		// Percent change spans the whole series, not the last session
		if n > 1 && closes[0] != 0 {
			summary.ChangePct = (closes[n-1] - closes[0]) / closes[0] * 100
		}
	}

	if bundle.Volume != nil {
		summary.AvgVolume = bundle.Volume.Average
	} else if volumes := table.Column("volume"); len(volumes) > 0 {
		sum := 0.0
		for _, v := range volumes {
			sum += v
		}
		summary.AvgVolume = sum / float64(len(volumes))
	}

	return summary
}
