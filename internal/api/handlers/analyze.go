package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/pipeline"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Runner executes one pipeline invocation. *pipeline.Orchestrator is
// the production implementation.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) *pipeline.RunResult
}

// AnalyzeHandler handles stock analysis requests
type AnalyzeHandler struct {
	runner Runner
	logger *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(runner Runner, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		runner: runner,
		logger: log,
	}
}

// AISettingsRequest is the caller's LLM configuration
type AISettingsRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
}

// PreferencesRequest is the caller's investment preferences. Field
// names follow the frontend contract.
type PreferencesRequest struct {
	Timeframe           string   `json:"timeframe"`
	PerformanceCriteria []string `json:"performanceCriteria"`
	Sectors             []string `json:"sectors"`
	MarketCap           []string `json:"marketCap"`
	RiskTolerance       int      `json:"riskTolerance"`
	DividendPreference  bool     `json:"dividendPreference"`
	MaxRecommendations  int      `json:"maxRecommendations"`
}

// AnalyzeRequest is the POST /api/analyze request body. Symbols may be
// empty when preferences drive symbol discovery instead.
type AnalyzeRequest struct {
	Symbols               []string            `json:"symbols"`
	AISettings            *AISettingsRequest  `json:"ai_settings"`
	InvestmentPreferences *PreferencesRequest `json:"investment_preferences"`
	Mode                  string              `json:"mode"`
}

// Analyze runs the full pipeline for the requested symbols
// POST /api/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Symbols) == 0 && req.InvestmentPreferences == nil {
		respondError(w, http.StatusBadRequest, "At least one stock symbol or investment preferences are required")
		return
	}

	mode := contracts.Mode(req.Mode)
	if req.Mode != "" && mode != contracts.ModeFull && mode != contracts.ModeNarrative {
		respondError(w, http.StatusBadRequest, "Invalid mode (valid: full, narrative)")
		return
	}

	prefs := req.InvestmentPreferences
	if prefs == nil {
		prefs = &PreferencesRequest{}
	}
	if prefs.RiskTolerance != 0 && (prefs.RiskTolerance < 1 || prefs.RiskTolerance > 5) {
		respondError(w, http.StatusBadRequest, "riskTolerance must be between 1 and 5")
		return
	}

	ai := req.AISettings
	if ai == nil {
		ai = &AISettingsRequest{}
	}
	temperature := 0.7
	if ai.Temperature != nil {
		temperature = *ai.Temperature
	}

	runReq := pipeline.Request{
		Symbols: req.Symbols,
		Preferences: contracts.Preferences{
			RiskTolerance:      riskTier(prefs.RiskTolerance),
			PreferredSectors:   prefs.Sectors,
			InvestmentGoals:    prefs.PerformanceCriteria,
			MarketCap:          prefs.MarketCap,
			DividendPreference: prefs.DividendPreference,
			MaxRecommendations: prefs.MaxRecommendations,
		},
		AISettings: contracts.AISettings{
			Model:       ai.Model,
			Temperature: temperature,
		},
		Timeframe: mapTimeframe(prefs.Timeframe),
		Mode:      mode,
	}

	result := h.runner.Run(r.Context(), runReq)

	h.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"status": result.Status,
		"top":    len(result.Top),
	}).Info("Analysis request completed")

	// Success and error share the envelope; status lives inside it
	respondJSON(w, http.StatusOK, result)
}

// riskTier maps the frontend's 1-5 risk tolerance slider onto tiers
func riskTier(tolerance int) contracts.RiskTolerance {
	switch {
	case tolerance == 0:
		return ""
	case tolerance <= 2:
		return contracts.RiskConservative
	case tolerance == 3:
		return contracts.RiskModerate
	default:
		return contracts.RiskAggressive
	}
}

// mapTimeframe converts frontend timeframe tokens to pipeline tokens.
// Pipeline tokens pass through; anything unknown falls back to 1d.
func mapTimeframe(timeframe string) string {
	switch timeframe {
	case "1day":
		return contracts.Timeframe1D
	case "1week":
		return contracts.Timeframe1W
	case "1month":
		return contracts.Timeframe1M
	case "3month":
		return contracts.Timeframe3M
	case "6month":
		return contracts.Timeframe6M
	case "1year":
		return contracts.Timeframe1Y
	case "5year":
		return contracts.Timeframe5Y
	case "":
		return ""
	}
	if contracts.ValidTimeframe(timeframe) {
		return timeframe
	}
	return contracts.Timeframe1D
}
