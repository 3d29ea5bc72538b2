package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/pipeline"
	"github.com/finsightlab/finsight/pkg/logger"
)

func newRunsRouter(registry *pipeline.Registry) http.Handler {
	h := NewRunsHandler(registry, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/runs/{id}", h.GetRun).Methods("GET")
	r.HandleFunc("/api/runs/{id}/events", h.StreamEvents).Methods("GET")
	return r
}

func TestGetRun_ReturnsDiagnostics(t *testing.T) {
	registry := pipeline.NewRegistry(10)

	state := contracts.NewRunState("run_abc", contracts.Timeframe1D)
	state.Order = []string{"AAPL", "MSFT"}
	state.AddItemError(contracts.StageFetch, "MSFT", "provider unavailable")
	state.Stage = contracts.StageDone
	registry.Register(state)

	router := newRunsRouter(registry)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run_abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var diag RunDiagnostics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &diag))
	assert.Equal(t, "run_abc", diag.RunID)
	assert.Equal(t, contracts.StageDone, diag.Stage)
	assert.Equal(t, []string{"AAPL", "MSFT"}, diag.Symbols)
	require.Len(t, diag.ItemErrors, 1)
	assert.Equal(t, "error_FETCH_MSFT", diag.ItemErrors[0].Key())
	assert.Empty(t, diag.Errors)
}

func TestGetRun_UnknownRun(t *testing.T) {
	router := newRunsRouter(pipeline.NewRegistry(10))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run_missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamEvents_DeliversStagesUntilFinish(t *testing.T) {
	registry := pipeline.NewRegistry(10)

	state := contracts.NewRunState("run_ws", contracts.Timeframe1D)
	registry.Register(state)

	server := httptest.NewServer(newRunsRouter(registry))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/runs/run_ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler time to subscribe before publishing
	time.Sleep(50 * time.Millisecond)

	registry.Publish("run_ws", contracts.StageProcess)
	state.Stage = contracts.StageDone
	registry.Finish(state)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first pipeline.ProgressEvent
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "run_ws", first.RunID)
	assert.Equal(t, contracts.StageProcess, first.Stage)

	var terminal pipeline.ProgressEvent
	require.NoError(t, conn.ReadJSON(&terminal))
	assert.Equal(t, contracts.StageDone, terminal.Stage)

	// Finish closed the subscription, so the stream ends cleanly
	err = conn.ReadJSON(&pipeline.ProgressEvent{})
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
