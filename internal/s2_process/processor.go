package s2_process

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/strategyconfig"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Processor runs the cleaning stage: raw provider payloads become uniform
// row-oriented tables. A payload whose series is neither a keyed object
// nor a list of records is an item error; the symbol drops out and the
// stage continues.
type Processor struct {
	logger *logger.Logger
}

// NewProcessor creates the cleaning stage
func NewProcessor(log *logger.Logger) *Processor {
	return &Processor{logger: log}
}

// Process populates state.Processed from state.Raw according to the
// resolved cleaning rules
func (p *Processor) Process(state *contracts.RunState, res *strategyconfig.Resolved) {
	if len(state.Raw) == 0 {
		state.AddStageError(contracts.StageProcess, "no raw data to process")
		return
	}

	p.logger.WithFields(map[string]interface{}{
		"run_id":          state.RunID,
		"symbols":         len(state.Raw),
		"remove_nulls":    res.RemoveNulls,
		"handle_outliers": res.HandleOutliers,
		"normalize":       res.Normalize,
	}).Info("Starting process stage")

	for _, symbol := range state.Order {
		payload, ok := state.Raw[symbol]
		if !ok {
			continue
		}

		table, err := normalizeSeries(payload)
		if err != nil {
			state.AddItemError(contracts.StageProcess, symbol, err.Error())
			continue
		}

		if len(res.Sectors) > 0 && !sectorMatches(table.Sector, res.Sectors) {
			p.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"sector": table.Sector,
			}).Debug("Symbol filtered by sector preference")
			continue
		}

		if res.RemoveNulls {
			dropNullRows(table)
		}
		if res.HandleOutliers {
			removeOutliers(table)
		}
		if res.Normalize {
			normalizeColumns(table)
		}

		if table.Len() == 0 {
			state.AddItemError(contracts.StageProcess, symbol, "no rows survived cleaning")
			continue
		}

		state.Processed[symbol] = table
	}

	p.logger.WithFields(map[string]interface{}{
		"run_id":    state.RunID,
		"processed": len(state.Processed),
		"dropped":   len(state.Raw) - len(state.Processed),
	}).Info("Process stage completed")
}

// normalizeSeries converts the loosely typed series into a table.
// Keyed objects (date → record) are sorted by key; record lists keep
// their order.
func normalizeSeries(payload *contracts.RawPayload) (*contracts.DataTable, error) {
	table := &contracts.DataTable{
		Symbol:    payload.Symbol,
		Sector:    payload.Sector,
		MarketCap: payload.MarketCap,
	}

	switch series := payload.Series.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(series))
		for k := range series {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			record, ok := series[k].(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("keyed series entry %q is not a record", k)
			}
			row := contracts.Row(record)
			if _, ok := row["date"]; !ok {
				row["date"] = k
			}
			table.Rows = append(table.Rows, row)
		}

	case []interface{}:
		for i, entry := range series {
			record, ok := entry.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("series entry %d is not a record", i)
			}
			table.Rows = append(table.Rows, contracts.Row(record))
		}

	default:
		return nil, fmt.Errorf("series shape is neither a keyed object nor a list of records")
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("series is empty")
	}

	table.Columns = collectColumns(table.Rows)
	return table, nil
}

// collectColumns gathers the union of row keys, sorted
func collectColumns(rows []contracts.Row) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}

	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// dropNullRows removes rows with a nil value or a missing column
func dropNullRows(table *contracts.DataTable) {
	kept := table.Rows[:0]
	for _, row := range table.Rows {
		if rowComplete(row, table.Columns) {
			kept = append(kept, row)
		}
	}
	table.Rows = kept
}

func rowComplete(row contracts.Row, columns []string) bool {
	for _, col := range columns {
		v, ok := row[col]
		if !ok || v == nil {
			return false
		}
	}
	return true
}

// removeOutliers drops any row holding a numeric value outside the
// interquartile fences [Q1 - 1.5*IQR, Q3 + 1.5*IQR] of its column
func removeOutliers(table *contracts.DataTable) {
	type fence struct{ lo, hi float64 }
	fences := make(map[string]fence)

	for _, col := range table.NumericColumns() {
		values := table.Column(col)
		if len(values) < 4 {
			continue
		}

		q1, q3 := quartiles(values)
		iqr := q3 - q1
		fences[col] = fence{lo: q1 - 1.5*iqr, hi: q3 + 1.5*iqr}
	}

	if len(fences) == 0 {
		return
	}

	kept := table.Rows[:0]
	for _, row := range table.Rows {
		outlier := false
		for col, f := range fences {
			v, ok := numericValue(row[col])
			if !ok {
				continue
			}
			if v < f.lo || v > f.hi {
				outlier = true
				break
			}
		}
		if !outlier {
			kept = append(kept, row)
		}
	}
	table.Rows = kept
}

// quartiles computes Q1 and Q3 by linear interpolation over the sorted
// values
func quartiles(values []float64) (float64, float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)

	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// normalizeColumns applies z-score normalization per numeric column.
// Zero-variance columns are left untouched.
func normalizeColumns(table *contracts.DataTable) {
	for _, col := range table.NumericColumns() {
		values := table.Column(col)
		if len(values) < 2 {
			continue
		}

		m := mean(values)
		sd := stdDev(values, m)
		if sd == 0 {
			continue
		}

		for _, row := range table.Rows {
			if v, ok := numericValue(row[col]); ok {
				row[col] = (v - m) / sd
			}
		}
	}
}

func sectorMatches(sector string, preferred []string) bool {
	if sector == "" {
		// Keep symbols without sector data rather than guessing
		return true
	}
	for _, p := range preferred {
		if strings.EqualFold(strings.TrimSpace(p), sector) {
			return true
		}
	}
	return false
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
