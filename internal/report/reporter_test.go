package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

func rankedState() *contracts.RunState {
	state := contracts.NewRunState("run-1", "1mo")
	state.Ranked = []contracts.RankedStock{
		{Symbol: "AAPL", Score: 0.85, Rank: 1},
		{Symbol: "MSFT", Score: 0.65, Rank: 2},
		{Symbol: "GOOGL", Score: 0.45, Rank: 3},
		{Symbol: "SNAP", Score: 0.20, Rank: 4},
	}
	state.RankingMetrics = &contracts.RankingMetrics{
		TotalAnalyzed: 10,
		ScoreRange:    contracts.ScoreRange{Min: 0.20, Max: 0.85},
		FactorsUsed:   []string{"performance", "riskMetrics"},
	}
	return state
}

func resolved() *strategyconfig.Resolved {
	res := strategyconfig.Resolve(strategyconfig.Default(), contracts.Preferences{})
	return &res
}

func TestBuildReport(t *testing.T) {
	reporter := NewReporter(logger.NewNop())
	state := rankedState()

	reporter.Build(state, resolved())

	require.False(t, state.Halted())
	require.NotNil(t, state.Report)

	assert.Equal(t, "Analysis of 10 stocks completed", state.Report.Summary.Overview)
	assert.Equal(t, "Top 4 stocks identified with scores ranging from 0.20 to 0.85", state.Report.Summary.TopPerformers)
	assert.Equal(t, "Analysis based on performance, riskMetrics", state.Report.Summary.Methodology)

	assert.Equal(t, "Analysis incorporated 2 key factors", state.Report.MarketContext.FactorsConsidered)
	// Spread 0.65 > 0.5
	assert.Equal(t, "High confidence in differentiation between stocks", state.Report.MarketContext.ConfidenceLevel)
}

func TestBuildDetailedReports(t *testing.T) {
	reporter := NewReporter(logger.NewNop())
	state := rankedState()

	reporter.Build(state, resolved())

	require.Len(t, state.Report.Detailed, 4)

	byAction := make(map[string]string)
	for _, r := range state.Report.Detailed {
		byAction[r.Symbol] = r.Recommendation.Action
	}
	assert.Equal(t, "Strong Buy", byAction["AAPL"])
	assert.Equal(t, "Buy", byAction["MSFT"])
	assert.Equal(t, "Hold", byAction["GOOGL"])
	assert.Equal(t, "Watch", byAction["SNAP"])

	top := state.Report.Detailed[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, 0.85, top.OverallScore)
	assert.Equal(t, "Strong technical indicators suggesting upward momentum", top.Analysis.Technical)
	assert.Equal(t, "Low risk profile with stable metrics", top.Analysis.Risk)
	assert.Equal(t, "Strong positive market sentiment", top.Analysis.Sentiment)
}

func TestBuildSummaryVerbosity(t *testing.T) {
	reporter := NewReporter(logger.NewNop())
	state := rankedState()

	res := resolved()
	res.Verbosity = "summary"
	reporter.Build(state, res)

	require.NotNil(t, state.Report)
	assert.Empty(t, state.Report.Detailed)
	assert.NotEmpty(t, state.Report.Summary.Overview)
}

func TestBuildNoRankedStocksHalts(t *testing.T) {
	reporter := NewReporter(logger.NewNop())

	state := contracts.NewRunState("run-1", "1mo")
	reporter.Build(state, resolved())

	require.True(t, state.Halted())
	assert.Equal(t, contracts.StageReport, state.Errors[0].Stage)
}

func TestConfidenceLevels(t *testing.T) {
	tests := []struct {
		name   string
		spread contracts.ScoreRange
		want   string
	}{
		{"high", contracts.ScoreRange{Min: 0.1, Max: 0.9}, "High confidence in differentiation between stocks"},
		{"moderate", contracts.ScoreRange{Min: 0.4, Max: 0.8}, "Moderate confidence in analysis results"},
		{"minimal", contracts.ScoreRange{Min: 0.5, Max: 0.6}, "Analysis shows minimal differentiation between stocks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confidenceLevel(tt.spread))
		})
	}
}
