package contracts

// Timeframe tokens accepted by the pipeline
const (
	Timeframe1D = "1d"
	Timeframe1W = "1wk"
	Timeframe1M = "1mo"
	Timeframe3M = "3mo"
	Timeframe6M = "6mo"
	Timeframe1Y = "1y"
	Timeframe5Y = "5y"

	DefaultTimeframe = Timeframe1D
)

// TimeframeLookbackDays maps a timeframe token to the number of calendar
// days of daily history providers should fetch. Every window is large
// enough for the 200-day moving average when the market has been open.
func TimeframeLookbackDays(timeframe string) int {
	switch timeframe {
	case Timeframe1D, Timeframe1W:
		return 365
	case Timeframe1M, Timeframe3M:
		return 400
	case Timeframe6M, Timeframe1Y:
		return 500
	case Timeframe5Y:
		return 1850
	default:
		return 365
	}
}

// ValidTimeframe reports whether the token is recognized
func ValidTimeframe(timeframe string) bool {
	switch timeframe {
	case Timeframe1D, Timeframe1W, Timeframe1M, Timeframe3M, Timeframe6M, Timeframe1Y, Timeframe5Y:
		return true
	}
	return false
}
