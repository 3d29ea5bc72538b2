package s2_process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

func resolved(prefs contracts.Preferences) *strategyconfig.Resolved {
	res := strategyconfig.Resolve(strategyconfig.Default(), prefs)
	return &res
}

func record(date string, close float64) map[string]interface{} {
	return map[string]interface{}{
		"date":   date,
		"open":   close - 1,
		"high":   close + 1,
		"low":    close - 2,
		"close":  close,
		"volume": 1000000.0,
	}
}

func TestProcessKeyedObject(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"AAPL"}
	state.Raw["AAPL"] = &contracts.RawPayload{
		Symbol: "AAPL",
		Series: map[string]interface{}{
			"2026-08-27": record("2026-08-27", 181.0),
			"2026-08-25": record("2026-08-25", 180.0),
			"2026-08-26": record("2026-08-26", 180.5),
		},
	}

	processor.Process(state, resolved(contracts.Preferences{}))

	require.False(t, state.Halted())
	table := state.Processed["AAPL"]
	require.NotNil(t, table)
	require.Equal(t, 3, table.Len())

	// Keyed objects come out sorted by date
	closes := table.Column("close")
	assert.Equal(t, []float64{180.0, 180.5, 181.0}, closes)
}

func TestProcessRecordList(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"MSFT"}
	state.Raw["MSFT"] = &contracts.RawPayload{
		Symbol: "MSFT",
		Series: []interface{}{
			record("2026-08-25", 410.0),
			record("2026-08-26", 412.5),
		},
	}

	processor.Process(state, resolved(contracts.Preferences{}))

	table := state.Processed["MSFT"]
	require.NotNil(t, table)
	assert.Equal(t, []float64{410.0, 412.5}, table.Column("close"))
	assert.Contains(t, table.Columns, "volume")
}

func TestProcessRejectsBadShape(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"AAPL", "BAD"}
	state.Raw["AAPL"] = &contracts.RawPayload{
		Symbol: "AAPL",
		Series: []interface{}{record("2026-08-25", 180.0)},
	}
	state.Raw["BAD"] = &contracts.RawPayload{
		Symbol: "BAD",
		Series: "not a series",
	}

	processor.Process(state, resolved(contracts.Preferences{}))

	// Bad shape is an item error, not a stage error
	require.False(t, state.Halted())
	assert.Contains(t, state.Processed, "AAPL")
	assert.NotContains(t, state.Processed, "BAD")

	items := state.ItemErrorsFor(contracts.StageProcess)
	require.Len(t, items, 1)
	assert.Equal(t, "BAD", items[0].Symbol)
}

func TestProcessDropsNullRows(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	withNull := record("2026-08-26", 181.0)
	withNull["close"] = nil

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"AAPL"}
	state.Raw["AAPL"] = &contracts.RawPayload{
		Symbol: "AAPL",
		Series: []interface{}{
			record("2026-08-25", 180.0),
			withNull,
			record("2026-08-27", 182.0),
		},
	}

	processor.Process(state, resolved(contracts.Preferences{RiskTolerance: contracts.RiskConservative}))

	table := state.Processed["AAPL"]
	require.NotNil(t, table)
	assert.Equal(t, 2, table.Len())
}

func TestProcessRemovesOutlierRows(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	series := make([]interface{}, 0, 21)
	for i := 0; i < 20; i++ {
		series = append(series, record("2026-08-01", 100.0+float64(i)*0.1))
	}
	series = append(series, record("2026-08-21", 5000.0))

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"AAPL"}
	state.Raw["AAPL"] = &contracts.RawPayload{Symbol: "AAPL", Series: series}

	processor.Process(state, resolved(contracts.Preferences{RiskTolerance: contracts.RiskConservative}))

	table := state.Processed["AAPL"]
	require.NotNil(t, table)
	assert.Equal(t, 20, table.Len())
	for _, v := range table.Column("close") {
		assert.Less(t, v, 200.0)
	}
}

func TestProcessAggressiveKeepsOutliers(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	series := make([]interface{}, 0, 21)
	for i := 0; i < 20; i++ {
		series = append(series, record("2026-08-01", 100.0))
	}
	series = append(series, record("2026-08-21", 5000.0))

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"AAPL"}
	state.Raw["AAPL"] = &contracts.RawPayload{Symbol: "AAPL", Series: series}

	processor.Process(state, resolved(contracts.Preferences{RiskTolerance: contracts.RiskAggressive}))

	table := state.Processed["AAPL"]
	require.NotNil(t, table)
	assert.Equal(t, 21, table.Len())
}

func TestProcessZScoreNormalization(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	res := resolved(contracts.Preferences{})
	res.Normalize = true
	res.HandleOutliers = false
	res.RemoveNulls = false

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"AAPL"}
	state.Raw["AAPL"] = &contracts.RawPayload{
		Symbol: "AAPL",
		Series: []interface{}{
			map[string]interface{}{"close": 10.0, "flat": 5.0},
			map[string]interface{}{"close": 20.0, "flat": 5.0},
			map[string]interface{}{"close": 30.0, "flat": 5.0},
		},
	}

	processor.Process(state, res)

	table := state.Processed["AAPL"]
	require.NotNil(t, table)

	closes := table.Column("close")
	require.Len(t, closes, 3)
	assert.InDelta(t, -1.0, closes[0], 1e-9)
	assert.InDelta(t, 0.0, closes[1], 1e-9)
	assert.InDelta(t, 1.0, closes[2], 1e-9)

	// Zero variance columns stay untouched
	assert.Equal(t, []float64{5.0, 5.0, 5.0}, table.Column("flat"))
}

func TestProcessSectorFilter(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	state := contracts.NewRunState("run-1", "1mo")
	state.Order = []string{"AAPL", "XOM", "UNK"}
	state.Raw["AAPL"] = &contracts.RawPayload{
		Symbol: "AAPL", Sector: "Technology",
		Series: []interface{}{record("2026-08-25", 180.0)},
	}
	state.Raw["XOM"] = &contracts.RawPayload{
		Symbol: "XOM", Sector: "Energy",
		Series: []interface{}{record("2026-08-25", 110.0)},
	}
	state.Raw["UNK"] = &contracts.RawPayload{
		Symbol: "UNK",
		Series: []interface{}{record("2026-08-25", 50.0)},
	}

	processor.Process(state, resolved(contracts.Preferences{PreferredSectors: []string{"technology"}}))

	assert.Contains(t, state.Processed, "AAPL")
	assert.NotContains(t, state.Processed, "XOM")
	// Missing sector data is not grounds for exclusion
	assert.Contains(t, state.Processed, "UNK")
}

func TestProcessEmptyRawHalts(t *testing.T) {
	processor := NewProcessor(logger.NewNop())

	state := contracts.NewRunState("run-1", "1mo")
	processor.Process(state, resolved(contracts.Preferences{}))

	require.True(t, state.Halted())
	assert.Equal(t, contracts.StageProcess, state.Errors[0].Stage)
}
