package contracts

// Report is the structured document produced by the reporting stage
type Report struct {
	Summary       ReportSummary `json:"summary"`
	Detailed      []StockReport `json:"detailedReports"`
	MarketContext MarketContext `json:"marketContext"`
}

// ReportSummary is the executive summary block
type ReportSummary struct {
	Overview      string `json:"overview"`
	TopPerformers string `json:"topPerformers"`
	Methodology   string `json:"methodology"`
}

// StockReport is the per-stock detail block
type StockReport struct {
	Symbol         string         `json:"symbol"`
	Rank           int            `json:"rank"`
	OverallScore   float64        `json:"overallScore"`
	Analysis       StockAnalysis  `json:"analysis"`
	Recommendation Recommendation `json:"recommendation"`
}

// StockAnalysis holds the categorical labels derived from the composite
// score
type StockAnalysis struct {
	Technical string `json:"technicalAnalysis"`
	Risk      string `json:"riskAssessment"`
	Sentiment string `json:"marketSentiment"`
}

// Recommendation is the buy/hold/watch call with rationale
type Recommendation struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
}

// MarketContext is the broader-context block
type MarketContext struct {
	Conditions        string `json:"marketConditions"`
	FactorsConsidered string `json:"factorsConsidered"`
	ConfidenceLevel   string `json:"confidenceLevel"`
}
