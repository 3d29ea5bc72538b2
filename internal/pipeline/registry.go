package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finsightlab/finsight/internal/contracts"
)

// NewRunID generates a unique run identifier
func NewRunID() string {
	return "run_" + uuid.NewString()
}

// ProgressEvent is one stage transition published to subscribers
type ProgressEvent struct {
	RunID string          `json:"runId"`
	Stage contracts.Stage `json:"stage"`
	At    time.Time       `json:"at"`
}

// Registry is the in-memory run store: run state snapshots for
// diagnostics plus per-run progress event fan-out. Item errors and
// degraded metrics are invisible in the response envelope but stay
// queryable here. Only snapshots are stored, never the live state, so
// readers cannot race the running pipeline.
type Registry struct {
	mu          sync.RWMutex
	runs        map[string]*contracts.RunState
	subscribers map[string][]chan ProgressEvent
	keep        int
	order       []string
}

// NewRegistry creates a run registry retaining up to keep finished runs
func NewRegistry(keep int) *Registry {
	if keep <= 0 {
		keep = 100
	}
	return &Registry{
		runs:        make(map[string]*contracts.RunState),
		subscribers: make(map[string][]chan ProgressEvent),
		keep:        keep,
	}
}

// Register stores the first snapshot of a run and evicts the oldest
// beyond the retention window. Callers must own state.
func (r *Registry) Register(state *contracts.RunState) {
	snapshot := state.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[snapshot.RunID] = snapshot
	r.order = append(r.order, snapshot.RunID)

	for len(r.order) > r.keep {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.runs, oldest)
	}
}

// Update replaces a run's stored snapshot. Evicted runs stay evicted.
// Callers must own state.
func (r *Registry) Update(state *contracts.RunState) {
	snapshot := state.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[snapshot.RunID]; ok {
		r.runs[snapshot.RunID] = snapshot
	}
}

// Get returns the stored snapshot of a known run. Snapshots are never
// mutated after storage, so the result is safe to read concurrently.
func (r *Registry) Get(runID string) (*contracts.RunState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.runs[runID]
	return state, ok
}

// Subscribe returns a channel receiving stage transitions for one run.
// The channel is buffered; slow consumers miss events rather than block
// the pipeline.
func (r *Registry) Subscribe(runID string) chan ProgressEvent {
	ch := make(chan ProgressEvent, 16)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[runID] = append(r.subscribers[runID], ch)
	return ch
}

// Unsubscribe detaches a subscriber channel
func (r *Registry) Unsubscribe(runID string, ch chan ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subscribers[runID]
	for i, sub := range subs {
		if sub == ch {
			r.subscribers[runID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

// Publish fans a stage transition out to the run's subscribers
func (r *Registry) Publish(runID string, stage contracts.Stage) {
	event := ProgressEvent{RunID: runID, Stage: stage, At: time.Now()}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.subscribers[runID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Finish stores a run's final snapshot, publishes the terminal stage
// and closes all subscriber channels. Callers must own state.
func (r *Registry) Finish(state *contracts.RunState) {
	snapshot := state.Snapshot()
	runID := snapshot.RunID

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, tracked := r.runs[runID]; tracked {
		r.runs[runID] = snapshot
	}

	final, ok := r.runs[runID]
	if ok {
		event := ProgressEvent{RunID: runID, Stage: final.Stage, At: time.Now()}
		for _, ch := range r.subscribers[runID] {
			select {
			case ch <- event:
			default:
			}
			close(ch)
		}
	} else {
		for _, ch := range r.subscribers[runID] {
			close(ch)
		}
	}

	delete(r.subscribers, runID)
}
