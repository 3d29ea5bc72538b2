package strategyconfig

import (
	"fmt"
	"math"

	"github.com/finsightlab/finsight/internal/contracts"
)

// Validate checks the loaded strategy configuration
func (c *Config) Validate() error {
	known := make(map[string]bool)
	for _, m := range contracts.AllMetrics() {
		known[m] = true
	}
	for _, m := range c.Analyze.Metrics {
		if !known[m] {
			return fmt.Errorf("unknown metric %q", m)
		}
	}

	if err := validateWeights(c.Ranking.Factors, c.Ranking.Weights); err != nil {
		return err
	}

	if c.Ranking.MaxRecommendations <= 0 {
		return fmt.Errorf("max_recommendations must be positive, got %d", c.Ranking.MaxRecommendations)
	}

	if c.Fetch.Concurrency <= 0 || c.Analyze.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}

	if c.Report.Verbosity != "summary" && c.Report.Verbosity != "detailed" {
		return fmt.Errorf("verbosity must be summary or detailed, got %q", c.Report.Verbosity)
	}

	return nil
}

// validateWeights checks that every factor has a weight and that weights
// sum to 1.0 within floating point tolerance
func validateWeights(factors []string, weights map[string]float64) error {
	knownFactors := map[string]bool{
		contracts.FactorPerformance:         true,
		contracts.FactorRiskMetrics:         true,
		contracts.FactorMarketSentiment:     true,
		contracts.FactorTechnicalIndicators: true,
	}

	var sum float64
	for _, f := range factors {
		if !knownFactors[f] {
			return fmt.Errorf("unknown ranking factor %q", f)
		}
		w, ok := weights[f]
		if !ok {
			return fmt.Errorf("ranking factor %q has no weight", f)
		}
		if w < 0 {
			return fmt.Errorf("ranking factor %q has negative weight", f)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("ranking weights sum to %.3f, want 1.0", sum)
	}

	return nil
}
