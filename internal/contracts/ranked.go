package contracts

// Ranking factor names
const (
	FactorPerformance         = "performance"
	FactorRiskMetrics         = "riskMetrics"
	FactorMarketSentiment     = "marketSentiment"
	FactorTechnicalIndicators = "technicalIndicators"
)

// RankedStock is one entry of the ranked output passed from the ranking
// stage to reporting
type RankedStock struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"` // composite score in [0,1]
	Rank   int     `json:"rank"`  // 1-based ranking
}

// IsTopRanked checks if the stock is in top N ranks
func (r *RankedStock) IsTopRanked(n int) bool {
	return r.Rank > 0 && r.Rank <= n
}

// ScoreRange is the min/max composite score over the selected top set
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Spread returns max - min
func (s ScoreRange) Spread() float64 {
	return s.Max - s.Min
}

// RankingMetrics describes the ranking run for the reporting stage
type RankingMetrics struct {
	TotalAnalyzed int        `json:"totalStocksAnalyzed"`
	ScoreRange    ScoreRange `json:"scoreRange"`
	FactorsUsed   []string   `json:"rankingFactorsUsed"`
}
