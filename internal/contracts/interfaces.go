package contracts

import "context"

// DataSource is the boundary of the Data Source Adapter. Implementations
// own provider-specific auth, retries and rate-limit backoff; the core
// only requires a payload or a typed error per symbol within the caller's
// context deadline.
type DataSource interface {
	// Name identifies the source in logs and diagnostics
	Name() string

	// Fetch returns the raw payload for one symbol and timeframe
	Fetch(ctx context.Context, symbol, timeframe string) (*RawPayload, error)
}

// Narrator is the LLM collaborator boundary. Injected into the analysis
// stage so test doubles and alternative providers never touch
// orchestration logic.
type Narrator interface {
	Narrate(ctx context.Context, summary StockSummary, settings AISettings) (*LLMAnalysis, error)
}

// Discoverer finds candidate symbols from user preferences when the
// caller supplies none
type Discoverer interface {
	Discover(ctx context.Context, prefs Preferences) ([]string, error)
}
