package contracts

import "sort"

// RawPayload is the opaque per-symbol payload returned by the Data Source
// Adapter. Series stays loosely typed at this boundary: providers disagree
// on shape, and the cleaning stage is the single place that normalizes it
// (or rejects it as an item error).
type RawPayload struct {
	Symbol string `json:"symbol"`

	// Series is either a keyed object (date → record) or a list of records
	Series interface{} `json:"series"`

	Sector    string   `json:"sector,omitempty"`
	MarketCap float64  `json:"marketCap,omitempty"`
	Providers []string `json:"providers,omitempty"`
}

// Row is one record of a cleaned table
type Row map[string]interface{}

// DataTable is the uniform row-oriented table produced by the cleaning
// stage. Rows are ordered oldest to newest.
type DataTable struct {
	Symbol    string   `json:"symbol"`
	Columns   []string `json:"columns"`
	Rows      []Row    `json:"rows"`
	Sector    string   `json:"sector,omitempty"`
	MarketCap float64  `json:"marketCap,omitempty"`
}

// NumericColumns returns the names of columns that hold at least one
// numeric value, sorted for deterministic iteration.
func (t *DataTable) NumericColumns() []string {
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		for col, v := range row {
			if _, ok := toFloat(v); ok {
				seen[col] = true
			}
		}
	}

	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Column extracts a numeric column in row order. Rows where the column is
// missing or non-numeric are skipped.
func (t *DataTable) Column(name string) []float64 {
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if f, ok := toFloat(row[name]); ok {
			values = append(values, f)
		}
	}
	return values
}

// Len returns the number of rows
func (t *DataTable) Len() int {
	return len(t.Rows)
}

// Series extracts the OHLCV series used by the metric library.
// Missing columns yield empty slices; the metric functions treat short
// input as degraded, not as an error.
func (t *DataTable) Series() Series {
	return Series{
		Open:   t.Column("open"),
		High:   t.Column("high"),
		Low:    t.Column("low"),
		Close:  t.Column("close"),
		Volume: t.Column("volume"),
	}
}

// Series is a price/volume series ordered oldest to newest
type Series struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

// toFloat converts JSON-decoded scalar values to float64
func toFloat(v interface{}) (float64, bool) {
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
