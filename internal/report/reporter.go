package report

import (
	"fmt"
	"strings"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Reporter runs the reporting stage: the ranked list and ranking metrics
// become a structured document with an executive summary, per-stock
// detail and market-context commentary.
type Reporter struct {
	logger *logger.Logger
}

// NewReporter creates the reporting stage
func NewReporter(log *logger.Logger) *Reporter {
	return &Reporter{logger: log}
}

// Build populates state.Report from the ranked output
func (r *Reporter) Build(state *contracts.RunState, res *strategyconfig.Resolved) {
	if len(state.Ranked) == 0 || state.RankingMetrics == nil {
		state.AddStageError(contracts.StageReport, "no ranked stocks to report on")
		return
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id":    state.RunID,
		"stocks":    len(state.Ranked),
		"verbosity": res.Verbosity,
	}).Info("Starting report stage")

	doc := &contracts.Report{
		Summary:       summarize(state.Ranked, state.RankingMetrics),
		MarketContext: marketContext(state.RankingMetrics),
	}

	if res.Verbosity != "summary" {
		doc.Detailed = detailedReports(state.Ranked)
	}

	state.Report = doc

	r.logger.WithField("run_id", state.RunID).Info("Report stage completed")
}

// summarize builds the executive summary block
func summarize(ranked []contracts.RankedStock, m *contracts.RankingMetrics) contracts.ReportSummary {
	return contracts.ReportSummary{
		Overview: fmt.Sprintf("Analysis of %d stocks completed", m.TotalAnalyzed),
		TopPerformers: fmt.Sprintf("Top %d stocks identified with scores ranging from %.2f to %.2f",
			len(ranked), m.ScoreRange.Min, m.ScoreRange.Max),
		Methodology: fmt.Sprintf("Analysis based on %s", strings.Join(m.FactorsUsed, ", ")),
	}
}

// detailedReports builds the per-stock detail blocks in rank order
func detailedReports(ranked []contracts.RankedStock) []contracts.StockReport {
	reports := make([]contracts.StockReport, 0, len(ranked))
	for _, stock := range ranked {
		reports = append(reports, contracts.StockReport{
			Symbol:       stock.Symbol,
			Rank:         stock.Rank,
			OverallScore: stock.Score,
			Analysis: contracts.StockAnalysis{
				Technical: technicalLabel(stock.Score),
				Risk:      riskLabel(stock.Score),
				Sentiment: sentimentLabel(stock.Score),
			},
			Recommendation: recommend(stock.Score),
		})
	}
	return reports
}

func technicalLabel(score float64) string {
	switch {
	case score > 0.8:
		return "Strong technical indicators suggesting upward momentum"
	case score > 0.6:
		return "Positive technical signals with potential for growth"
	case score > 0.4:
		return "Neutral technical indicators with mixed signals"
	default:
		return "Weak technical signals suggesting caution"
	}
}

func riskLabel(score float64) string {
	switch {
	case score > 0.7:
		return "Low risk profile with stable metrics"
	case score > 0.5:
		return "Moderate risk with acceptable volatility"
	default:
		return "Higher risk profile requiring close monitoring"
	}
}

func sentimentLabel(score float64) string {
	switch {
	case score > 0.8:
		return "Strong positive market sentiment"
	case score > 0.6:
		return "Generally positive market outlook"
	case score > 0.4:
		return "Neutral market sentiment"
	default:
		return "Cautious market sentiment"
	}
}

func recommend(score float64) contracts.Recommendation {
	switch {
	case score > 0.8:
		return contracts.Recommendation{
			Action:    "Strong Buy",
			Rationale: "Exceptional performance metrics and positive indicators across all analyzed factors",
		}
	case score > 0.6:
		return contracts.Recommendation{
			Action:    "Buy",
			Rationale: "Strong performance with some room for growth",
		}
	case score > 0.4:
		return contracts.Recommendation{
			Action:    "Hold",
			Rationale: "Stable performance but monitoring recommended",
		}
	default:
		return contracts.Recommendation{
			Action:    "Watch",
			Rationale: "Current metrics suggest waiting for improved conditions",
		}
	}
}

// marketContext builds the broader-context block
func marketContext(m *contracts.RankingMetrics) contracts.MarketContext {
	return contracts.MarketContext{
		Conditions:        "Analysis performed under current market conditions",
		FactorsConsidered: fmt.Sprintf("Analysis incorporated %d key factors", len(m.FactorsUsed)),
		ConfidenceLevel:   confidenceLevel(m.ScoreRange),
	}
}

func confidenceLevel(sr contracts.ScoreRange) string {
	spread := sr.Spread()
	switch {
	case spread > 0.5:
		return "High confidence in differentiation between stocks"
	case spread > 0.3:
		return "Moderate confidence in analysis results"
	default:
		return "Analysis shows minimal differentiation between stocks"
	}
}
