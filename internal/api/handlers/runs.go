package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/pipeline"
	"github.com/finsightlab/finsight/pkg/logger"
)

// RunsHandler exposes run diagnostics from the in-memory registry
type RunsHandler struct {
	registry *pipeline.Registry
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(registry *pipeline.Registry, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		registry: registry,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RunDiagnostics is the GET /api/runs/{id} response. It surfaces the
// per-symbol error side-channel and stage timings that the analyze
// response envelope deliberately leaves out.
type RunDiagnostics struct {
	RunID      string                  `json:"runId"`
	Stage      contracts.Stage         `json:"stage"`
	Timeframe  string                  `json:"timeframe"`
	Symbols    []string                `json:"symbols,omitempty"`
	Errors     []contracts.StageError  `json:"errors,omitempty"`
	ItemErrors []contracts.ItemError   `json:"itemErrors,omitempty"`
	Timings    []contracts.StageTiming `json:"timings,omitempty"`
}

// GetRun returns diagnostics for one run
// GET /api/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	state, ok := h.registry.Get(runID)
	if !ok {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	respondJSON(w, http.StatusOK, RunDiagnostics{
		RunID:      state.RunID,
		Stage:      state.Stage,
		Timeframe:  state.Timeframe,
		Symbols:    state.Order,
		Errors:     state.Errors,
		ItemErrors: state.Items,
		Timings:    state.Timings,
	})
}

// StreamEvents streams stage transitions for one run over a websocket.
// The stream ends when the run reaches its terminal stage.
// GET /api/runs/{id}/events
func (h *RunsHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	events := h.registry.Subscribe(runID)
	defer h.registry.Unsubscribe(runID, events)

	// Read pump detects client disconnect; incoming frames are ignored
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
