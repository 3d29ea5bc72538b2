package contracts

// Pipeline stage definitions.
// All logs, run snapshots and API responses use these constants.
//
// Pipeline flow:
//   FETCH → PROCESS → ANALYZE → RANK → REPORT → DONE
//   with an implicit transition to HALTED whenever errors accumulate.

// Stage represents a pipeline stage
type Stage string

const (
	// StageFetch collects raw per-symbol market data from providers.
	// Location: internal/s1_fetch/
	StageFetch Stage = "FETCH"

	// StageProcess cleans and normalizes raw payloads into tables.
	// Location: internal/s2_process/
	StageProcess Stage = "PROCESS"

	// StageAnalyze computes indicator metrics and the LLM narrative.
	// Location: internal/s3_analyze/
	StageAnalyze Stage = "ANALYZE"

	// StageRank computes weighted composite scores and selects top N.
	// Location: internal/selection/
	StageRank Stage = "RANK"

	// StageReport renders the ranked list into the report document.
	// Location: internal/report/
	StageReport Stage = "REPORT"

	// StageDone is the terminal success state
	StageDone Stage = "DONE"

	// StageHalted is the terminal error state
	StageHalted Stage = "HALTED"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Terminal reports whether the stage is a terminal state
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageHalted
}

// Next returns the stage that follows s in the pipeline order.
// Terminal stages return themselves.
func (s Stage) Next() Stage {
	switch s {
	case StageFetch:
		return StageProcess
	case StageProcess:
		return StageAnalyze
	case StageAnalyze:
		return StageRank
	case StageRank:
		return StageReport
	case StageReport:
		return StageDone
	default:
		return s
	}
}

// PipelineStages returns the executable stages in order
func PipelineStages() []Stage {
	return []Stage{StageFetch, StageProcess, StageAnalyze, StageRank, StageReport}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	switch Stage(s) {
	case StageFetch, StageProcess, StageAnalyze, StageRank, StageReport, StageDone, StageHalted:
		return true
	}
	return false
}
