package strategyconfig

import (
	"time"

	"github.com/finsightlab/finsight/internal/contracts"
)

// Config is the full pipeline strategy configuration. It is loaded once at
// startup and treated as immutable afterwards; per-run preference
// overrides are resolved into a separate Resolved value (see resolve.go)
// so concurrent runs cannot interfere with each other.
type Config struct {
	Stages  StageFlags    `yaml:"stages" json:"stages"`
	Fetch   FetchConfig   `yaml:"fetch" json:"fetch"`
	Process ProcessConfig `yaml:"process" json:"process"`
	Analyze AnalyzeConfig `yaml:"analyze" json:"analyze"`
	Ranking RankingConfig `yaml:"ranking" json:"ranking"`
	Report  ReportConfig  `yaml:"report" json:"report"`

	// GoalWeights maps an investment goal to per-metric multipliers
	GoalWeights map[string]map[string]float64 `yaml:"goal_weights" json:"goal_weights"`
}

// StageFlags enables or disables individual pipeline stages
type StageFlags struct {
	Fetch   bool `yaml:"fetch" json:"fetch"`
	Process bool `yaml:"process" json:"process"`
	Analyze bool `yaml:"analyze" json:"analyze"`
	Rank    bool `yaml:"rank" json:"rank"`
	Report  bool `yaml:"report" json:"report"`
}

// FetchConfig controls the fetch stage
type FetchConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	RetryAttempts  int           `yaml:"retry_attempts" json:"retry_attempts"`
	Concurrency    int           `yaml:"concurrency" json:"concurrency"`
	DiscoveryLimit int           `yaml:"discovery_limit" json:"discovery_limit"`
}

// ProcessConfig controls the cleaning stage
type ProcessConfig struct {
	RemoveNulls    bool `yaml:"remove_nulls" json:"remove_nulls"`
	HandleOutliers bool `yaml:"handle_outliers" json:"handle_outliers"`
	Normalize      bool `yaml:"normalize" json:"normalize"`
}

// AnalyzeConfig controls the analysis stage
type AnalyzeConfig struct {
	Metrics     []string      `yaml:"metrics" json:"metrics"`
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
	LLMTimeout  time.Duration `yaml:"llm_timeout" json:"llm_timeout"`
}

// RankingConfig controls the ranking stage
type RankingConfig struct {
	Factors            []string           `yaml:"factors" json:"factors"`
	Weights            map[string]float64 `yaml:"weights" json:"weights"`
	MaxRecommendations int                `yaml:"max_recommendations" json:"max_recommendations"`
}

// ReportConfig controls the reporting stage
type ReportConfig struct {
	Verbosity string `yaml:"verbosity" json:"verbosity"` // summary | detailed
}

// Default returns the built-in strategy configuration
func Default() Config {
	return Config{
		Stages: StageFlags{
			Fetch:   true,
			Process: true,
			Analyze: true,
			Rank:    true,
			Report:  true,
		},
		Fetch: FetchConfig{
			RequestTimeout: 30 * time.Second,
			RetryAttempts:  3,
			Concurrency:    4,
			DiscoveryLimit: 20,
		},
		Process: ProcessConfig{
			RemoveNulls:    true,
			HandleOutliers: true,
			// Z-score normalization rewrites price levels, so the
			// indicator library only sees it when explicitly requested
			Normalize: false,
		},
		Analyze: AnalyzeConfig{
			Metrics:     contracts.AllMetrics(),
			Concurrency: 4,
			LLMTimeout:  45 * time.Second,
		},
		Ranking: RankingConfig{
			Factors: []string{
				contracts.FactorPerformance,
				contracts.FactorRiskMetrics,
				contracts.FactorMarketSentiment,
				contracts.FactorTechnicalIndicators,
			},
			Weights: map[string]float64{
				contracts.FactorPerformance:         0.4,
				contracts.FactorRiskMetrics:         0.3,
				contracts.FactorMarketSentiment:     0.2,
				contracts.FactorTechnicalIndicators: 0.1,
			},
			MaxRecommendations: 5,
		},
		Report: ReportConfig{
			Verbosity: "detailed",
		},
		GoalWeights: map[string]map[string]float64{
			"growth": {
				contracts.MetricMomentum:         1.2,
				contracts.MetricRelativeStrength: 1.1,
			},
			"income": {
				contracts.MetricVolatility:     1.2,
				contracts.MetricMovingAverages: 1.1,
			},
			"preservation": {
				contracts.MetricVolatility:     1.3,
				contracts.MetricMovingAverages: 1.2,
			},
		},
	}
}

// tierMetrics maps each risk tier to its fixed metric subset. The tier
// table replaces the configured default wholesale, it is not a blend.
var tierMetrics = map[contracts.RiskTolerance][]string{
	contracts.RiskConservative: {
		contracts.MetricVolatility,
		contracts.MetricMovingAverages,
		contracts.MetricRelativeStrength,
	},
	contracts.RiskModerate: {
		contracts.MetricMomentum,
		contracts.MetricVolume,
		contracts.MetricMovingAverages,
		contracts.MetricRelativeStrength,
	},
	contracts.RiskAggressive: {
		contracts.MetricMomentum,
		contracts.MetricVolume,
		contracts.MetricRelativeStrength,
	},
}

// tierRanking maps each risk tier to its fixed factor/weight table
var tierRanking = map[contracts.RiskTolerance]RankingConfig{
	contracts.RiskConservative: {
		Factors: []string{
			contracts.FactorRiskMetrics,
			contracts.FactorTechnicalIndicators,
		},
		Weights: map[string]float64{
			contracts.FactorRiskMetrics:         0.7,
			contracts.FactorTechnicalIndicators: 0.3,
		},
	},
	contracts.RiskModerate: {
		Factors: []string{
			contracts.FactorPerformance,
			contracts.FactorRiskMetrics,
			contracts.FactorTechnicalIndicators,
		},
		Weights: map[string]float64{
			contracts.FactorPerformance:         0.4,
			contracts.FactorRiskMetrics:         0.3,
			contracts.FactorTechnicalIndicators: 0.3,
		},
	},
	contracts.RiskAggressive: {
		Factors: []string{
			contracts.FactorPerformance,
			contracts.FactorMarketSentiment,
			contracts.FactorTechnicalIndicators,
		},
		Weights: map[string]float64{
			contracts.FactorPerformance:         0.5,
			contracts.FactorMarketSentiment:     0.3,
			contracts.FactorTechnicalIndicators: 0.2,
		},
	},
}
