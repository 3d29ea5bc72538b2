package strategyconfig

import (
	"time"

	"github.com/finsightlab/finsight/internal/contracts"
)

// Resolved is the immutable per-run configuration: defaults merged with
// preference-driven overrides once at run entry. Stages read only from
// this value, never from shared configuration.
type Resolved struct {
	Stages StageFlags

	// Fetch
	RequestTimeout time.Duration
	RetryAttempts  int
	FetchWorkers   int
	DiscoveryLimit int

	// Process
	RemoveNulls    bool
	HandleOutliers bool
	Normalize      bool
	Sectors        []string

	// Analyze
	Metrics        []string
	AnalyzeWorkers int
	LLMTimeout     time.Duration
	GoalWeights    map[string]float64

	// Rank
	Factors []string
	Weights map[string]float64
	Limit   int

	// Report
	Verbosity string
}

// Resolve computes the per-run configuration from the loaded strategy and
// the caller's preferences. Risk-tier overrides replace the configured
// defaults wholesale; exactly one metric subset and one factor/weight
// table is active per run.
func Resolve(cfg Config, prefs contracts.Preferences) Resolved {
	r := Resolved{
		Stages:         cfg.Stages,
		RequestTimeout: cfg.Fetch.RequestTimeout,
		RetryAttempts:  cfg.Fetch.RetryAttempts,
		FetchWorkers:   cfg.Fetch.Concurrency,
		DiscoveryLimit: cfg.Fetch.DiscoveryLimit,
		RemoveNulls:    cfg.Process.RemoveNulls,
		HandleOutliers: cfg.Process.HandleOutliers,
		Normalize:      cfg.Process.Normalize,
		Sectors:        prefs.PreferredSectors,
		Metrics:        append([]string(nil), cfg.Analyze.Metrics...),
		AnalyzeWorkers: cfg.Analyze.Concurrency,
		LLMTimeout:     cfg.Analyze.LLMTimeout,
		GoalWeights:    resolveGoalWeights(cfg.GoalWeights, prefs.InvestmentGoals),
		Factors:        append([]string(nil), cfg.Ranking.Factors...),
		Weights:        copyWeights(cfg.Ranking.Weights),
		Limit:          cfg.Ranking.MaxRecommendations,
		Verbosity:      cfg.Report.Verbosity,
	}

	switch prefs.RiskTolerance {
	case contracts.RiskConservative:
		// Conservative forces strict cleaning
		r.RemoveNulls = true
		r.HandleOutliers = true
	case contracts.RiskAggressive:
		r.HandleOutliers = false
	}

	if subset, ok := tierMetrics[prefs.RiskTolerance]; ok {
		r.Metrics = append([]string(nil), subset...)
	}

	if table, ok := tierRanking[prefs.RiskTolerance]; ok {
		r.Factors = append([]string(nil), table.Factors...)
		r.Weights = copyWeights(table.Weights)
	}

	if prefs.MaxRecommendations > 0 {
		r.Limit = prefs.MaxRecommendations
	}

	return r
}

// MetricEnabled reports whether a metric is in the active subset
func (r *Resolved) MetricEnabled(name string) bool {
	for _, m := range r.Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// FactorEnabled reports whether a ranking factor is active
func (r *Resolved) FactorEnabled(name string) bool {
	for _, f := range r.Factors {
		if f == name {
			return true
		}
	}
	return false
}

// resolveGoalWeights multiplies the weight tables of every selected goal
// into a single per-metric multiplier map
func resolveGoalWeights(tables map[string]map[string]float64, goals []string) map[string]float64 {
	if len(goals) == 0 {
		return nil
	}

	out := make(map[string]float64)
	for _, goal := range goals {
		table, ok := tables[goal]
		if !ok {
			continue
		}
		for metric, w := range table {
			if cur, ok := out[metric]; ok {
				out[metric] = cur * w
			} else {
				out[metric] = w
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func copyWeights(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
