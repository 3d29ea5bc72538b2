package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/pipeline"
	"github.com/finsightlab/finsight/pkg/logger"
)

type stubRunner struct {
	last   pipeline.Request
	result *pipeline.RunResult
}

func (s *stubRunner) Run(ctx context.Context, req pipeline.Request) *pipeline.RunResult {
	s.last = req
	if s.result != nil {
		return s.result
	}
	return &pipeline.RunResult{RunID: "run_test", Status: "success"}
}

func postAnalyze(t *testing.T, h *AnalyzeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)
	return rec
}

func TestAnalyze_MapsRequestOntoPipeline(t *testing.T) {
	runner := &stubRunner{}
	h := NewAnalyzeHandler(runner, logger.NewNop())

	rec := postAnalyze(t, h, `{
		"symbols": ["AAPL", "MSFT"],
		"ai_settings": {"model": "gpt-4o-mini", "temperature": 0.3},
		"investment_preferences": {
			"timeframe": "1year",
			"performanceCriteria": ["growth"],
			"sectors": ["technology"],
			"marketCap": ["large"],
			"riskTolerance": 2,
			"dividendPreference": true,
			"maxRecommendations": 3
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"AAPL", "MSFT"}, runner.last.Symbols)
	assert.Equal(t, "gpt-4o-mini", runner.last.AISettings.Model)
	assert.InDelta(t, 0.3, runner.last.AISettings.Temperature, 0.001)
	assert.Equal(t, contracts.Timeframe1Y, runner.last.Timeframe)
	assert.Equal(t, contracts.RiskConservative, runner.last.Preferences.RiskTolerance)
	assert.Equal(t, []string{"growth"}, runner.last.Preferences.InvestmentGoals)
	assert.Equal(t, []string{"technology"}, runner.last.Preferences.PreferredSectors)
	assert.True(t, runner.last.Preferences.DividendPreference)
	assert.Equal(t, 3, runner.last.Preferences.MaxRecommendations)
}

func TestAnalyze_DefaultTemperature(t *testing.T) {
	runner := &stubRunner{}
	h := NewAnalyzeHandler(runner, logger.NewNop())

	rec := postAnalyze(t, h, `{"symbols": ["AAPL"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.7, runner.last.AISettings.Temperature, 0.001)
	assert.Empty(t, runner.last.AISettings.Model)
}

func TestAnalyze_RiskToleranceTiers(t *testing.T) {
	cases := []struct {
		tolerance int
		want      contracts.RiskTolerance
	}{
		{1, contracts.RiskConservative},
		{2, contracts.RiskConservative},
		{3, contracts.RiskModerate},
		{4, contracts.RiskAggressive},
		{5, contracts.RiskAggressive},
	}

	for _, tc := range cases {
		runner := &stubRunner{}
		h := NewAnalyzeHandler(runner, logger.NewNop())

		body, _ := json.Marshal(map[string]interface{}{
			"symbols":                []string{"AAPL"},
			"investment_preferences": map[string]interface{}{"riskTolerance": tc.tolerance},
		})
		rec := postAnalyze(t, h, string(body))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.want, runner.last.Preferences.RiskTolerance, "tolerance %d", tc.tolerance)
	}
}

func TestAnalyze_RejectsOutOfRangeRiskTolerance(t *testing.T) {
	h := NewAnalyzeHandler(&stubRunner{}, logger.NewNop())

	rec := postAnalyze(t, h, `{"symbols": ["AAPL"], "investment_preferences": {"riskTolerance": 6}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_RejectsEmptyRequest(t *testing.T) {
	h := NewAnalyzeHandler(&stubRunner{}, logger.NewNop())

	rec := postAnalyze(t, h, `{"symbols": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_PreferencesOnlyTriggersDiscovery(t *testing.T) {
	runner := &stubRunner{}
	h := NewAnalyzeHandler(runner, logger.NewNop())

	rec := postAnalyze(t, h, `{"investment_preferences": {"sectors": ["energy"]}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, runner.last.Symbols)
	assert.Equal(t, []string{"energy"}, runner.last.Preferences.PreferredSectors)
}

func TestAnalyze_RejectsUnknownMode(t *testing.T) {
	h := NewAnalyzeHandler(&stubRunner{}, logger.NewNop())

	rec := postAnalyze(t, h, `{"symbols": ["AAPL"], "mode": "turbo"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_RejectsMalformedBody(t *testing.T) {
	h := NewAnalyzeHandler(&stubRunner{}, logger.NewNop())

	rec := postAnalyze(t, h, `{"symbols": [`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_ErrorEnvelopePassesThrough(t *testing.T) {
	runner := &stubRunner{result: &pipeline.RunResult{
		RunID:  "run_err",
		Status: "error",
		Errors: []string{"FETCH error: all symbols failed to fetch"},
	}}
	h := NewAnalyzeHandler(runner, logger.NewNop())

	rec := postAnalyze(t, h, `{"symbols": ["AAPL"]}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, body, "topStocks")
	assert.NotContains(t, body, "report")
}

func TestMapTimeframe(t *testing.T) {
	assert.Equal(t, "1d", mapTimeframe("1day"))
	assert.Equal(t, "1wk", mapTimeframe("1week"))
	assert.Equal(t, "5y", mapTimeframe("5year"))
	assert.Equal(t, "3mo", mapTimeframe("3mo"))
	assert.Equal(t, "", mapTimeframe(""))
	assert.Equal(t, "1d", mapTimeframe("fortnight"))
}
