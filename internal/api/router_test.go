package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight/internal/api/handlers"
	"github.com/finsightlab/finsight/internal/pipeline"
	"github.com/finsightlab/finsight/pkg/logger"
)

type panicRunner struct{}

func (panicRunner) Run(ctx context.Context, req pipeline.Request) *pipeline.RunResult {
	panic("runner exploded")
}

func newTestRouter(runner handlers.Runner) http.Handler {
	log := logger.NewNop()
	analyze := handlers.NewAnalyzeHandler(runner, log)
	runs := handlers.NewRunsHandler(pipeline.NewRegistry(10), log)
	return NewRouter(analyze, runs, log)
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(panicRunner{})

	for _, path := range []string{"/health", "/api/health"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
	}
}

func TestRouter_Timeframes(t *testing.T) {
	router := newTestRouter(panicRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/timeframes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1year")
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(panicRunner{})

	// Preflights match no registered route, so they must be answered
	// before mux routing happens
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouter_CORSHeadersOnSimpleRequests(t *testing.T) {
	router := newTestRouter(panicRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sectors", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RecoversFromHandlerPanic(t *testing.T) {
	router := newTestRouter(panicRunner{})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"symbols": ["AAPL"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
