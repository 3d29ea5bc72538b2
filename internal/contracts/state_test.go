package contracts

import (
	"testing"
)

func TestRunState_HaltOnStageError(t *testing.T) {
	state := NewRunState("run_test", "1d")

	if state.Halted() {
		t.Error("fresh state should not be halted")
	}
	if state.Stage != StageFetch {
		t.Errorf("fresh state stage = %s, want %s", state.Stage, StageFetch)
	}

	state.AddStageError(StageProcess, "bad input shape")

	if !state.Halted() {
		t.Error("state with stage error should be halted")
	}
	if state.Stage != StageHalted {
		t.Errorf("stage = %s, want %s", state.Stage, StageHalted)
	}

	msgs := state.ErrorMessages()
	if len(msgs) != 1 {
		t.Fatalf("got %d error messages, want 1", len(msgs))
	}
	if msgs[0] != "PROCESS error: bad input shape" {
		t.Errorf("unexpected message: %q", msgs[0])
	}
}

func TestRunState_ItemErrorsDoNotHalt(t *testing.T) {
	state := NewRunState("run_test", "1d")

	state.AddItemError(StageFetch, "MSFT", "provider error")
	state.AddItemError(StageAnalyze, "AAPL", "llm timeout")

	if state.Halted() {
		t.Error("item errors must never halt the run")
	}

	fetchErrs := state.ItemErrorsFor(StageFetch)
	if len(fetchErrs) != 1 {
		t.Fatalf("got %d fetch item errors, want 1", len(fetchErrs))
	}
	if key := fetchErrs[0].Key(); key != "error_FETCH_MSFT" {
		t.Errorf("Key() = %q, want error_FETCH_MSFT", key)
	}
}

func TestRunState_DiscoveryIndex(t *testing.T) {
	state := NewRunState("run_test", "1d")
	state.Order = []string{"AAPL", "GOOGL", "MSFT"}

	if idx := state.DiscoveryIndex("GOOGL"); idx != 1 {
		t.Errorf("DiscoveryIndex(GOOGL) = %d, want 1", idx)
	}
	if idx := state.DiscoveryIndex("TSLA"); idx != 3 {
		t.Errorf("unknown symbol should sort last, got %d", idx)
	}
}

func TestStage_Next(t *testing.T) {
	tests := []struct {
		stage Stage
		next  Stage
	}{
		{StageFetch, StageProcess},
		{StageProcess, StageAnalyze},
		{StageAnalyze, StageRank},
		{StageRank, StageReport},
		{StageReport, StageDone},
		{StageDone, StageDone},
		{StageHalted, StageHalted},
	}

	for _, tt := range tests {
		if got := tt.stage.Next(); got != tt.next {
			t.Errorf("%s.Next() = %s, want %s", tt.stage, got, tt.next)
		}
	}
}

func TestStage_Terminal(t *testing.T) {
	for _, s := range PipelineStages() {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !StageDone.Terminal() || !StageHalted.Terminal() {
		t.Error("DONE and HALTED are terminal")
	}
}

func TestMetricsBundle_AIScoreProxy(t *testing.T) {
	withRSI := &MetricsBundle{
		Symbol:           "AAPL",
		RelativeStrength: &RelativeStrengthMetric{RSI: 62.5, Trend: "neutral"},
	}
	if got := withRSI.AIScoreProxy(); got != 62.5 {
		t.Errorf("AIScoreProxy() = %v, want 62.5", got)
	}

	without := &MetricsBundle{Symbol: "GOOGL"}
	if got := without.AIScoreProxy(); got != NeutralRSI {
		t.Errorf("AIScoreProxy() without RSI = %v, want %v", got, NeutralRSI)
	}
}

func TestDataTable_NumericColumns(t *testing.T) {
	table := &DataTable{
		Symbol:  "AAPL",
		Columns: []string{"close", "volume", "sector"},
		Rows: []Row{
			{"close": 100.0, "volume": 5000.0, "sector": "technology"},
			{"close": 101.5, "volume": 5200.0, "sector": "technology"},
		},
	}

	cols := table.NumericColumns()
	if len(cols) != 2 {
		t.Fatalf("got %d numeric columns, want 2: %v", len(cols), cols)
	}
	if cols[0] != "close" || cols[1] != "volume" {
		t.Errorf("unexpected columns: %v", cols)
	}

	closes := table.Column("close")
	if len(closes) != 2 || closes[1] != 101.5 {
		t.Errorf("unexpected close column: %v", closes)
	}
}
