package contracts

// Metric names used across configuration, analysis and ranking
const (
	MetricMomentum         = "momentum"
	MetricVolume           = "volume"
	MetricVolatility       = "volatility"
	MetricMovingAverages   = "movingAverages"
	MetricRelativeStrength = "relativeStrength"
)

// AllMetrics returns the full metric set in canonical order
func AllMetrics() []string {
	return []string{
		MetricMomentum,
		MetricVolume,
		MetricVolatility,
		MetricMovingAverages,
		MetricRelativeStrength,
	}
}

// MomentumMetric is the 14-day price momentum indicator
type MomentumMetric struct {
	Mean14D float64 `json:"mean14d"`
	Trend   string  `json:"trend"` // positive | negative
}

// VolumeMetric summarizes trading volume behavior
type VolumeMetric struct {
	Average float64 `json:"average"`
	Trend   string  `json:"trend"` // increasing | decreasing
}

// VolatilityMetric holds annualized volatility of daily returns
type VolatilityMetric struct {
	Annualized    float64 `json:"annualized"`
	AvgDailyRange float64 `json:"avgDailyRange"`
}

// MovingAveragesMetric holds the moving average ladder and its trend label
type MovingAveragesMetric struct {
	MA20  float64 `json:"ma20"`
	MA50  float64 `json:"ma50"`
	MA200 float64 `json:"ma200"`
	Trend string  `json:"trend"` // strong_uptrend | potential_reversal_up | strong_downtrend | potential_reversal_down | neutral
}

// RelativeStrengthMetric holds the 14-day RSI
type RelativeStrengthMetric struct {
	RSI   float64 `json:"rsi"`
	Trend string  `json:"trend"` // overbought | oversold | neutral
}

// NeutralRSI is the AI-score proxy used when relative strength is missing
const NeutralRSI = 50.0

// LLMAnalysis is the narrative addendum from the LLM collaborator.
// A failed call is embedded as Status "error" rather than aborting the
// stage.
type LLMAnalysis struct {
	Status     string  `json:"status"` // success | error
	Narrative  string  `json:"narrative,omitempty"`
	AIScore    int     `json:"aiScore,omitempty"`
	KeyInsight string  `json:"keyInsight,omitempty"`
	ModelUsed  string  `json:"modelUsed,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// MetricsBundle holds all analysis output for a single symbol.
// Nil metric pointers mean the metric was not selected for this run or
// degraded silently (insufficient history).
type MetricsBundle struct {
	Symbol string `json:"symbol"`

	Momentum         *MomentumMetric         `json:"momentum,omitempty"`
	Volume           *VolumeMetric           `json:"volume,omitempty"`
	Volatility       *VolatilityMetric       `json:"volatility,omitempty"`
	MovingAverages   *MovingAveragesMetric   `json:"movingAverages,omitempty"`
	RelativeStrength *RelativeStrengthMetric `json:"relativeStrength,omitempty"`

	LLM *LLMAnalysis `json:"llm_analysis,omitempty"`

	// GoalWeights are per-metric multipliers from investment-goal
	// reweighting; empty means neutral (1.0 everywhere)
	GoalWeights map[string]float64 `json:"goalWeights,omitempty"`
}

// GoalWeight returns the reweighting multiplier for a metric, 1.0 if unset
func (b *MetricsBundle) GoalWeight(metric string) float64 {
	if b.GoalWeights == nil {
		return 1.0
	}
	if w, ok := b.GoalWeights[metric]; ok {
		return w
	}
	return 1.0
}

// AIScoreProxy derives the compact-summary AI score: the RSI when relative
// strength was computed, a neutral default otherwise.
func (b *MetricsBundle) AIScoreProxy() float64 {
	if b.RelativeStrength != nil {
		return b.RelativeStrength.RSI
	}
	return NeutralRSI
}

// StockSummary is the compact per-symbol summary handed to the LLM
// collaborator
type StockSummary struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"changePct"`
	AvgVolume float64 `json:"avgVolume"`
	MarketCap float64 `json:"marketCap"`
	Sector    string  `json:"sector"`
	AIScore   float64 `json:"aiScore"`
}
