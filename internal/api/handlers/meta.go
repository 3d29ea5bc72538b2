package handlers

import "net/http"

// Option is one selectable id/name pair for the frontend
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetTimeframes returns the timeframe options the analyze endpoint accepts
// GET /api/timeframes
func GetTimeframes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]Option{
		"timeframes": {
			{ID: "1day", Name: "1 Day"},
			{ID: "1week", Name: "1 Week"},
			{ID: "1month", Name: "1 Month"},
			{ID: "3month", Name: "3 Months"},
			{ID: "6month", Name: "6 Months"},
			{ID: "1year", Name: "1 Year"},
			{ID: "5year", Name: "5 Years"},
		},
	})
}

// GetSectors returns the market sectors usable as preference filters
// GET /api/sectors
func GetSectors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]Option{
		"sectors": {
			{ID: "technology", Name: "Technology"},
			{ID: "healthcare", Name: "Healthcare"},
			{ID: "financial", Name: "Financial"},
			{ID: "consumer", Name: "Consumer"},
			{ID: "industrial", Name: "Industrial"},
			{ID: "energy", Name: "Energy"},
			{ID: "utilities", Name: "Utilities"},
			{ID: "materials", Name: "Materials"},
			{ID: "realestate", Name: "Real Estate"},
			{ID: "communication", Name: "Communication"},
		},
	})
}
