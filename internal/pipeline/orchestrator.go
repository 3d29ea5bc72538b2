package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/report"
	"github.com/finsightlab/finsight/internal/s1_fetch"
	"github.com/finsightlab/finsight/internal/s2_process"
	"github.com/finsightlab/finsight/internal/s3_analyze"
	"github.com/finsightlab/finsight/internal/selection"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Orchestrator owns a single run's state and sequences the five stages:
// fetch, process, analyze, rank, report. After each stage it either
// advances or halts; a halted run reports its error list and no partial
// results.
type Orchestrator struct {
	fetcher    *s1_fetch.Fetcher
	processor  *s2_process.Processor
	analyzer   *s3_analyze.Analyzer
	ranker     *selection.Ranker
	reporter   *report.Reporter
	discoverer contracts.Discoverer

	strategy strategyconfig.Config
	registry *Registry
	logger   *logger.Logger
}

// NewOrchestrator creates the pipeline orchestrator
func NewOrchestrator(
	fetcher *s1_fetch.Fetcher,
	processor *s2_process.Processor,
	analyzer *s3_analyze.Analyzer,
	ranker *selection.Ranker,
	reporter *report.Reporter,
	discoverer contracts.Discoverer,
	strategy strategyconfig.Config,
	registry *Registry,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		fetcher:    fetcher,
		processor:  processor,
		analyzer:   analyzer,
		ranker:     ranker,
		reporter:   reporter,
		discoverer: discoverer,
		strategy:   strategy,
		registry:   registry,
		logger:     log,
	}
}

// Request describes one pipeline invocation. Either Symbols is given
// directly or preferences drive symbol discovery.
type Request struct {
	RunID       string
	Symbols     []string
	Preferences contracts.Preferences
	AISettings  contracts.AISettings
	Timeframe   string
	Mode        contracts.Mode
}

// RunMetadata echoes the run's inputs for traceability
type RunMetadata struct {
	AISettings  contracts.AISettings  `json:"aiConfig"`
	Preferences contracts.Preferences `json:"preferences"`
	Timeframe   string                `json:"timeframe"`
}

// RunResult is the terminal response envelope. Either Status is
// "success" with all result fields populated, or "error" with a
// non-empty Errors list and no partial results.
type RunResult struct {
	RunID    string                              `json:"runId"`
	Status   string                              `json:"status"` // success | error
	Top      []contracts.RankedStock             `json:"topStocks,omitempty"`
	Report   *contracts.Report                   `json:"report,omitempty"`
	Analysis map[string]*contracts.MetricsBundle `json:"analysis,omitempty"`
	Strategy *contracts.RankingMetrics           `json:"strategy,omitempty"`
	Errors   []string                            `json:"errors,omitempty"`
	Metadata *RunMetadata                        `json:"metadata,omitempty"`
	Duration time.Duration                       `json:"-"`
}

// Run executes the complete pipeline for one request
func (o *Orchestrator) Run(ctx context.Context, req Request) *RunResult {
	startTime := time.Now()

	if req.RunID == "" {
		req.RunID = NewRunID()
	}
	if req.Timeframe == "" {
		req.Timeframe = contracts.DefaultTimeframe
	}
	if req.Mode == "" {
		req.Mode = contracts.ModeFull
	}

	res := strategyconfig.Resolve(o.strategy, req.Preferences)
	state := contracts.NewRunState(req.RunID, req.Timeframe)

	if o.registry != nil {
		o.registry.Register(state)
		defer func() { o.registry.Finish(state) }()
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":    req.RunID,
		"symbols":   len(req.Symbols),
		"timeframe": req.Timeframe,
		"mode":      string(req.Mode),
	}).Info("Starting pipeline run")

	state.Order = o.resolveSymbols(ctx, state, req, &res)

	for !state.Halted() && state.Stage != contracts.StageDone {
		if ctx.Err() != nil {
			state.AddStageError(state.Stage, "cancelled")
			break
		}

		stage := state.Stage
		stageStart := time.Now()

		o.runStage(ctx, stage, state, &res, req)

		state.Timings = append(state.Timings, contracts.StageTiming{
			Stage:    stage,
			Duration: time.Since(stageStart),
		})

		if state.Halted() {
			break
		}

		state.Stage = stage.Next()

		if o.registry != nil {
			o.registry.Update(state)
			o.registry.Publish(req.RunID, state.Stage)
		}
	}

	state.FinishedAt = time.Now()

	result := o.buildResult(state, req)
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":   req.RunID,
		"status":   result.Status,
		"duration": result.Duration.Seconds(),
	}).Info("Pipeline run finished")

	return result
}

// resolveSymbols returns the run's symbol order: the caller's list when
// given, otherwise preference-driven discovery
func (o *Orchestrator) resolveSymbols(ctx context.Context, state *contracts.RunState, req Request, res *strategyconfig.Resolved) []string {
	if len(req.Symbols) > 0 {
		return dedupe(req.Symbols)
	}

	if o.discoverer == nil {
		state.AddStageError(contracts.StageFetch, "no symbols given and no discovery source configured")
		return nil
	}

	symbols, err := o.discoverer.Discover(ctx, req.Preferences)
	if err != nil {
		state.AddStageError(contracts.StageFetch, fmt.Sprintf("symbol discovery failed: %s", err))
		return nil
	}

	if res.DiscoveryLimit > 0 && len(symbols) > res.DiscoveryLimit {
		symbols = symbols[:res.DiscoveryLimit]
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":     state.RunID,
		"discovered": len(symbols),
	}).Info("Discovered symbols from preferences")

	return symbols
}

// runStage dispatches one stage with panic recovery: a panic inside a
// stage becomes a halting stage error instead of propagating out
func (o *Orchestrator) runStage(ctx context.Context, stage contracts.Stage, state *contracts.RunState, res *strategyconfig.Resolved, req Request) {
	defer func() {
		if r := recover(); r != nil {
			state.AddStageError(stage, fmt.Sprintf("panic: %v", r))
		}
	}()

	switch stage {
	case contracts.StageFetch:
		if !res.Stages.Fetch {
			o.logger.WithField("run_id", state.RunID).Info("Fetch stage disabled, skipping")
			return
		}
		o.fetcher.Fetch(ctx, state, res)

	case contracts.StageProcess:
		if !res.Stages.Process {
			o.logger.WithField("run_id", state.RunID).Info("Process stage disabled, skipping")
			return
		}
		o.processor.Process(state, res)

	case contracts.StageAnalyze:
		if !res.Stages.Analyze {
			o.logger.WithField("run_id", state.RunID).Info("Analyze stage disabled, skipping")
			return
		}
		o.analyzer.Analyze(ctx, state, res, req.AISettings, req.Mode)

	case contracts.StageRank:
		if !res.Stages.Rank {
			o.logger.WithField("run_id", state.RunID).Info("Rank stage disabled, skipping")
			return
		}
		o.ranker.Rank(state, res)

	case contracts.StageReport:
		if !res.Stages.Report {
			o.logger.WithField("run_id", state.RunID).Info("Report stage disabled, skipping")
			return
		}
		o.reporter.Build(state, res)

	default:
		state.AddStageError(stage, fmt.Sprintf("unknown stage %q", stage))
	}
}

// buildResult assembles the terminal envelope from the final state.
// Partially populated downstream fields are dropped on the error path.
func (o *Orchestrator) buildResult(state *contracts.RunState, req Request) *RunResult {
	metadata := &RunMetadata{
		AISettings:  req.AISettings,
		Preferences: req.Preferences,
		Timeframe:   req.Timeframe,
	}

	if state.Halted() {
		return &RunResult{
			RunID:    state.RunID,
			Status:   "error",
			Errors:   state.ErrorMessages(),
			Metadata: metadata,
		}
	}

	return &RunResult{
		RunID:    state.RunID,
		Status:   "success",
		Top:      state.Ranked,
		Report:   state.Report,
		Analysis: state.Analysis,
		Strategy: state.RankingMetrics,
		Metadata: metadata,
	}
}

// dedupe removes duplicate symbols while keeping first-seen order
func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
