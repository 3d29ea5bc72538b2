package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/httputil"
	"github.com/finsightlab/finsight/pkg/logger"
)

func TestFetchKeyedSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Time Series (Daily)": {
				"2026-08-28": {
					"1. open": "182.15",
					"2. high": "184.20",
					"3. low": "181.50",
					"4. close": "183.75",
					"5. volume": "51234000"
				},
				"2026-08-27": {
					"1. open": "180.00",
					"2. high": "182.90",
					"3. low": "179.80",
					"4. close": "182.10",
					"5. volume": "48100200"
				}
			}
		}`))
	}))
	defer server.Close()

	client := New(
		config.AlphaVantageConfig{APIKey: "test-key", BaseURL: server.URL},
		httputil.New(logger.NewNop()).DisableRetry(),
		logger.NewNop(),
	)

	payload, err := client.Fetch(context.Background(), "AAPL", "1mo")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", payload.Symbol)
	assert.Equal(t, []string{"alpha_vantage"}, payload.Providers)

	series, ok := payload.Series.(map[string]interface{})
	require.True(t, ok)
	require.Len(t, series, 2)

	record, ok := series["2026-08-28"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 182.15, record["open"])
	assert.Equal(t, 183.75, record["close"])
	assert.Equal(t, 51234000.0, record["volume"])
	assert.Equal(t, "2026-08-28", record["date"])
}

func TestFetchRateLimitNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer server.Close()

	client := New(
		config.AlphaVantageConfig{APIKey: "test-key", BaseURL: server.URL},
		httputil.New(logger.NewNop()).DisableRetry(),
		logger.NewNop(),
	)

	_, err := client.Fetch(context.Background(), "AAPL", "1mo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestFetchEmptySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	}))
	defer server.Close()

	client := New(
		config.AlphaVantageConfig{APIKey: "test-key", BaseURL: server.URL},
		httputil.New(logger.NewNop()).DisableRetry(),
		logger.NewNop(),
	)

	_, err := client.Fetch(context.Background(), "NOPE", "1mo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}
