package selection

import (
	"sort"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Ranker runs the ranking stage: a weighted composite score per symbol
// over the active factor set, sorted descending with discovery-order
// tie-breaks. Missing metrics contribute 0 to their factor, never an
// error.
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates the ranking stage
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{logger: log}
}

// Rank populates state.Ranked and state.RankingMetrics from the analysis
// bundles
func (r *Ranker) Rank(state *contracts.RunState, res *strategyconfig.Resolved) {
	if len(state.Analysis) == 0 {
		state.AddStageError(contracts.StageRank, "no analysis results to rank")
		return
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id":  state.RunID,
		"symbols": len(state.Analysis),
		"factors": res.Factors,
		"limit":   res.Limit,
	}).Info("Starting rank stage")

	ranked := make([]contracts.RankedStock, 0, len(state.Analysis))
	for symbol, bundle := range state.Analysis {
		ranked = append(ranked, contracts.RankedStock{
			Symbol: symbol,
			Score:  compositeScore(bundle, res),
		})
	}

	// Descending by score, equal scores keep discovery order
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return state.DiscoveryIndex(ranked[i].Symbol) < state.DiscoveryIndex(ranked[j].Symbol)
	})

	limit := res.Limit
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	ranked = ranked[:limit]

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	state.Ranked = ranked
	state.RankingMetrics = rankingMetrics(len(state.Analysis), ranked, res)

	r.logger.WithFields(map[string]interface{}{
		"run_id":   state.RunID,
		"selected": len(ranked),
	}).Info("Rank stage completed")
}

// compositeScore is the weighted sum of normalized factor scores over
// the active factor set
func compositeScore(bundle *contracts.MetricsBundle, res *strategyconfig.Resolved) float64 {
	score := 0.0

	if res.FactorEnabled(contracts.FactorPerformance) {
		score += performanceScore(bundle) * res.Weights[contracts.FactorPerformance]
	}
	if res.FactorEnabled(contracts.FactorRiskMetrics) {
		score += riskScore(bundle) * res.Weights[contracts.FactorRiskMetrics]
	}
	if res.FactorEnabled(contracts.FactorMarketSentiment) {
		score += sentimentScore(bundle) * res.Weights[contracts.FactorMarketSentiment]
	}
	if res.FactorEnabled(contracts.FactorTechnicalIndicators) {
		score += technicalScore(bundle) * res.Weights[contracts.FactorTechnicalIndicators]
	}

	return score
}

// performanceScore combines momentum direction and the moving average
// trend
func performanceScore(b *contracts.MetricsBundle) float64 {
	score := 0.0

	if b.Momentum != nil && b.Momentum.Trend == "positive" {
		score += 1.0 * b.GoalWeight(contracts.MetricMomentum)
	}

	if b.MovingAverages != nil {
		switch b.MovingAverages.Trend {
		case "strong_uptrend":
			score += 1.0 * b.GoalWeight(contracts.MetricMovingAverages)
		case "potential_reversal_up":
			score += 0.5 * b.GoalWeight(contracts.MetricMovingAverages)
		}
	}

	return clamp01(score / 2.0)
}

// riskScore rewards low annualized volatility
func riskScore(b *contracts.MetricsBundle) float64 {
	if b.Volatility == nil {
		return 0.0
	}

	vol := b.Volatility.Annualized
	score := 1.0 - minFloat(vol/100, 1.0)
	return clamp01(score * b.GoalWeight(contracts.MetricVolatility))
}

// sentimentScore combines volume direction and the RSI sweet spot
func sentimentScore(b *contracts.MetricsBundle) float64 {
	score := 0.0

	if b.Volume != nil && b.Volume.Trend == "increasing" {
		score += 0.5 * b.GoalWeight(contracts.MetricVolume)
	}

	if b.RelativeStrength != nil {
		rsi := b.RelativeStrength.RSI
		if rsi >= 40 && rsi <= 60 {
			score += 0.5 * b.GoalWeight(contracts.MetricRelativeStrength)
		}
	}

	return clamp01(score)
}

// technicalScore weights each computed indicator equally and credits the
// bullish ones
func technicalScore(b *contracts.MetricsBundle) float64 {
	total := countMetrics(b)
	if total == 0 {
		return 0.0
	}

	weight := 1.0 / float64(total)
	score := 0.0

	if b.MovingAverages != nil {
		trend := b.MovingAverages.Trend
		if trend == "strong_uptrend" || trend == "potential_reversal_up" {
			score += weight * b.GoalWeight(contracts.MetricMovingAverages)
		}
	}

	if b.RelativeStrength != nil && b.RelativeStrength.Trend != "overbought" {
		score += weight * b.GoalWeight(contracts.MetricRelativeStrength)
	}

	return clamp01(score)
}

// countMetrics reports how many metrics were computed for this bundle
func countMetrics(b *contracts.MetricsBundle) int {
	n := 0
	if b.Momentum != nil {
		n++
	}
	if b.Volume != nil {
		n++
	}
	if b.Volatility != nil {
		n++
	}
	if b.MovingAverages != nil {
		n++
	}
	if b.RelativeStrength != nil {
		n++
	}
	return n
}

// rankingMetrics summarizes the ranking pass for the reporting stage
func rankingMetrics(analyzed int, top []contracts.RankedStock, res *strategyconfig.Resolved) *contracts.RankingMetrics {
	m := &contracts.RankingMetrics{
		TotalAnalyzed: analyzed,
		FactorsUsed:   append([]string(nil), res.Factors...),
	}

	if len(top) > 0 {
		m.ScoreRange.Min = top[len(top)-1].Score
		m.ScoreRange.Max = top[0].Score
	}

	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
