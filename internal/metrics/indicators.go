// Package metrics is the pure indicator library used by the analysis
// stage. Every function is stateless and deterministic; short or missing
// input yields a nil result (a silently degraded metric), never an error.
package metrics

import (
	"math"

	"github.com/finsightlab/finsight/internal/contracts"
)

const (
	momentumPeriod = 14
	rsiPeriod      = 14
	volumeWindow   = 5
	tradingDays    = 252
)

// Momentum computes the mean 14-day price difference and its trend label
func Momentum(s contracts.Series) *contracts.MomentumMetric {
	closes := s.Close
	if len(closes) < momentumPeriod+1 {
		return nil
	}

	var sum float64
	n := 0
	for i := momentumPeriod; i < len(closes); i++ {
		sum += closes[i] - closes[i-momentumPeriod]
		n++
	}
	mean := sum / float64(n)

	trend := "negative"
	if mean > 0 {
		trend = "positive"
	}

	return &contracts.MomentumMetric{Mean14D: mean, Trend: trend}
}

// Volume computes the average trading volume and the direction of the
// 5-window rolling mean
func Volume(s contracts.Series) *contracts.VolumeMetric {
	vols := s.Volume
	if len(vols) < volumeWindow {
		return nil
	}

	avg := mean(vols)

	first := mean(vols[:volumeWindow])
	last := mean(vols[len(vols)-volumeWindow:])

	trend := "decreasing"
	if last > first {
		trend = "increasing"
	}

	return &contracts.VolumeMetric{Average: avg, Trend: trend}
}

// Volatility computes annualized volatility of daily returns plus the
// average daily high-low range
func Volatility(s contracts.Series) *contracts.VolatilityMetric {
	closes := s.Close
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) < 1 {
		return nil
	}

	annualized := stdDev(returns) * math.Sqrt(tradingDays)

	var avgRange float64
	if len(s.High) == len(s.Low) && len(s.High) > 0 {
		var sum float64
		for i := range s.High {
			sum += s.High[i] - s.Low[i]
		}
		avgRange = sum / float64(len(s.High))
	}

	return &contracts.VolatilityMetric{Annualized: annualized, AvgDailyRange: avgRange}
}

// MovingAverages computes the MA20/50/200 ladder and classifies the trend.
// Requires enough history for the 200-day average.
func MovingAverages(s contracts.Series) *contracts.MovingAveragesMetric {
	closes := s.Close
	if len(closes) < 200 {
		return nil
	}

	ma20 := sma(closes, 20)
	ma50 := sma(closes, 50)
	ma200 := sma(closes, 200)

	return &contracts.MovingAveragesMetric{
		MA20:  ma20,
		MA50:  ma50,
		MA200: ma200,
		Trend: classifyTrend(ma20, ma50, ma200),
	}
}

// classifyTrend labels the moving average ladder
func classifyTrend(ma20, ma50, ma200 float64) string {
	switch {
	case ma20 > ma50 && ma50 > ma200:
		return "strong_uptrend"
	case ma20 > ma50 && ma50 < ma200:
		return "potential_reversal_up"
	case ma20 < ma50 && ma50 < ma200:
		return "strong_downtrend"
	case ma20 < ma50 && ma50 > ma200:
		return "potential_reversal_down"
	default:
		return "neutral"
	}
}

// RelativeStrength computes the 14-day RSI and its label
func RelativeStrength(s contracts.Series) *contracts.RelativeStrengthMetric {
	closes := s.Close
	if len(closes) < rsiPeriod+1 {
		return nil
	}

	var gains, losses float64
	for i := len(closes) - rsiPeriod; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}

	var rsi float64
	if losses == 0 {
		rsi = 100.0
	} else {
		rs := (gains / rsiPeriod) / (losses / rsiPeriod)
		rsi = 100.0 - (100.0 / (1.0 + rs))
	}

	trend := "neutral"
	switch {
	case rsi > 70:
		trend = "overbought"
	case rsi < 30:
		trend = "oversold"
	}

	return &contracts.RelativeStrengthMetric{RSI: rsi, Trend: trend}
}

// sma returns the simple moving average of the last n values
func sma(values []float64, n int) float64 {
	if len(values) < n || n <= 0 {
		return 0
	}
	var sum float64
	for i := len(values) - n; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(n)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var s float64
	for _, v := range values {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(values)-1))
}
