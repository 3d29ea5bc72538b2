package contracts

// RiskTolerance selects fixed metric and ranking overrides per run.
// Exactly one tier is active for a run; an empty value means the
// configured defaults apply.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// Valid reports whether the tier is one of the known values
func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskConservative, RiskModerate, RiskAggressive:
		return true
	}
	return false
}

// Preferences holds user investment preferences for one run
type Preferences struct {
	RiskTolerance      RiskTolerance `json:"riskTolerance,omitempty"`
	PreferredSectors   []string      `json:"preferredSectors,omitempty"`
	InvestmentGoals    []string      `json:"investmentGoals,omitempty"`
	MarketCap          []string      `json:"marketCap,omitempty"`
	DividendPreference bool          `json:"dividendPreference,omitempty"`
	MaxRecommendations int           `json:"maxRecommendations,omitempty"`
}

// AISettings holds the LLM model configuration chosen by the caller
type AISettings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Mode selects the analysis variant for a run
type Mode string

const (
	// ModeFull computes the full technical metric set before narration
	ModeFull Mode = "full"

	// ModeNarrative skips metrics and narrates directly from the raw
	// summaries, capped at five symbols. Reduced, experimental variant.
	ModeNarrative Mode = "narrative"
)

// NarrativeSymbolCap bounds symbols analyzed in ModeNarrative
const NarrativeSymbolCap = 5
