package contracts

import "time"

// RunState is the single mutable record threaded through all stages for
// one pipeline invocation. Exactly one logical task owns it for the run's
// duration, so no locking is needed. It is created fresh per run, kept
// only in the in-memory run registry for diagnostics, and never persisted.
type RunState struct {
	RunID     string `json:"runId"`
	Timeframe string `json:"timeframe"`

	// Stage advances monotonically and never revisits a prior stage
	Stage Stage `json:"stage"`

	// Order preserves symbol discovery order for stable tie-breaks
	Order []string `json:"order"`

	Raw            map[string]*RawPayload    `json:"-"`
	Processed      map[string]*DataTable     `json:"-"`
	Analysis       map[string]*MetricsBundle `json:"-"`
	Ranked         []RankedStock             `json:"ranked,omitempty"`
	RankingMetrics *RankingMetrics           `json:"rankingMetrics,omitempty"`
	Report         *Report                   `json:"report,omitempty"`

	// Errors is the halting list; once non-empty, no further stage runs
	Errors []StageError `json:"errors,omitempty"`

	// Items is the non-halting per-symbol side-channel
	Items []ItemError `json:"items,omitempty"`

	Timings    []StageTiming `json:"timings,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt,omitempty"`
}

// StageTiming records how long one stage took, for diagnostics
type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// NewRunState creates a fresh state positioned at the fetch stage
func NewRunState(runID, timeframe string) *RunState {
	return &RunState{
		RunID:     runID,
		Timeframe: timeframe,
		Stage:     StageFetch,
		Raw:       make(map[string]*RawPayload),
		Processed: make(map[string]*DataTable),
		Analysis:  make(map[string]*MetricsBundle),
		StartedAt: time.Now(),
	}
}

// Halted reports whether the halting error list is non-empty
func (s *RunState) Halted() bool {
	return len(s.Errors) > 0
}

// AddStageError appends a halting stage error and marks the run halted
func (s *RunState) AddStageError(stage Stage, message string) {
	s.Errors = append(s.Errors, NewStageError(stage, message))
	s.Stage = StageHalted
}

// AddItemError records a symbol-scoped failure in the side-channel
func (s *RunState) AddItemError(stage Stage, symbol, message string) {
	s.Items = append(s.Items, NewItemError(stage, symbol, message))
}

// ItemErrorsFor returns the side-channel entries for one stage
func (s *RunState) ItemErrorsFor(stage Stage) []ItemError {
	var out []ItemError
	for _, it := range s.Items {
		if it.Stage == stage {
			out = append(out, it)
		}
	}
	return out
}

// ErrorMessages flattens the halting errors for the response envelope
func (s *RunState) ErrorMessages() []string {
	msgs := make([]string, 0, len(s.Errors))
	for _, e := range s.Errors {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

// Snapshot returns a diagnostic copy that is safe to hand to other
// goroutines. Only the owning task may call it; the copy shares no
// slice storage with the live state. The bulk stage maps are dropped,
// diagnostics never expose them.
func (s *RunState) Snapshot() *RunState {
	c := *s
	c.Order = append([]string(nil), s.Order...)
	c.Errors = append([]StageError(nil), s.Errors...)
	c.Items = append([]ItemError(nil), s.Items...)
	c.Timings = append([]StageTiming(nil), s.Timings...)
	c.Ranked = append([]RankedStock(nil), s.Ranked...)
	c.Raw = nil
	c.Processed = nil
	c.Analysis = nil
	return &c
}

// DiscoveryIndex returns the position of a symbol in discovery order.
// Unknown symbols sort last.
func (s *RunState) DiscoveryIndex(symbol string) int {
	for i, sym := range s.Order {
		if sym == symbol {
			return i
		}
	}
	return len(s.Order)
}
