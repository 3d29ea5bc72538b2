package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight/internal/contracts"
)

// risingSeries builds a monotonically rising OHLCV series of n days
func risingSeries(n int) contracts.Series {
	s := contracts.Series{}
	for i := 0; i < n; i++ {
		price := 100.0 + float64(i)
		s.Open = append(s.Open, price-0.5)
		s.High = append(s.High, price+1.0)
		s.Low = append(s.Low, price-1.0)
		s.Close = append(s.Close, price)
		s.Volume = append(s.Volume, 1000.0+float64(i)*10)
	}
	return s
}

func TestMomentum(t *testing.T) {
	m := Momentum(risingSeries(30))
	require.NotNil(t, m)
	assert.Equal(t, "positive", m.Trend)
	assert.InDelta(t, 14.0, m.Mean14D, 0.001)

	// Falling series flips the trend
	falling := risingSeries(30)
	for i, j := 0, len(falling.Close)-1; i < j; i, j = i+1, j-1 {
		falling.Close[i], falling.Close[j] = falling.Close[j], falling.Close[i]
	}
	m = Momentum(falling)
	require.NotNil(t, m)
	assert.Equal(t, "negative", m.Trend)
}

func TestMomentum_DegradedOnShortSeries(t *testing.T) {
	assert.Nil(t, Momentum(risingSeries(10)))
	assert.Nil(t, Momentum(contracts.Series{}))
}

func TestVolume(t *testing.T) {
	v := Volume(risingSeries(30))
	require.NotNil(t, v)
	assert.Equal(t, "increasing", v.Trend)
	assert.Greater(t, v.Average, 0.0)

	assert.Nil(t, Volume(risingSeries(3)))
}

func TestVolatility(t *testing.T) {
	v := Volatility(risingSeries(30))
	require.NotNil(t, v)
	assert.Greater(t, v.Annualized, 0.0)
	assert.InDelta(t, 2.0, v.AvgDailyRange, 0.001)

	assert.Nil(t, Volatility(contracts.Series{Close: []float64{100}}))
}

func TestVolatility_ConstantPricesHaveZeroVol(t *testing.T) {
	s := contracts.Series{Close: []float64{50, 50, 50, 50, 50}}
	v := Volatility(s)
	require.NotNil(t, v)
	assert.InDelta(t, 0.0, v.Annualized, 0.0001)
}

func TestMovingAverages(t *testing.T) {
	m := MovingAverages(risingSeries(250))
	require.NotNil(t, m)
	// Rising series: short averages sit above long ones
	assert.Greater(t, m.MA20, m.MA50)
	assert.Greater(t, m.MA50, m.MA200)
	assert.Equal(t, "strong_uptrend", m.Trend)
}

func TestMovingAverages_DegradedUnder200Days(t *testing.T) {
	assert.Nil(t, MovingAverages(risingSeries(150)))
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name              string
		ma20, ma50, ma200 float64
		want              string
	}{
		{"uptrend", 110, 105, 100, "strong_uptrend"},
		{"downtrend", 90, 95, 100, "strong_downtrend"},
		{"reversal up", 103, 98, 100, "potential_reversal_up"},
		{"reversal down", 97, 102, 100, "potential_reversal_down"},
		{"flat", 100, 100, 100, "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTrend(tt.ma20, tt.ma50, tt.ma200))
		})
	}
}

func TestRelativeStrength(t *testing.T) {
	// Strictly rising closes: no losses, RSI pegs at 100
	r := RelativeStrength(risingSeries(30))
	require.NotNil(t, r)
	assert.InDelta(t, 100.0, r.RSI, 0.001)
	assert.Equal(t, "overbought", r.Trend)

	assert.Nil(t, RelativeStrength(risingSeries(10)))
}

func TestRelativeStrength_Neutral(t *testing.T) {
	// Alternating equal gains and losses hover around RSI 50
	s := contracts.Series{}
	price := 100.0
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			price += 1.0
		} else {
			price -= 1.0
		}
		s.Close = append(s.Close, price)
	}

	r := RelativeStrength(s)
	require.NotNil(t, r)
	assert.Equal(t, "neutral", r.Trend)
	assert.InDelta(t, 50.0, r.RSI, 10.0)
}

func TestDeterminism(t *testing.T) {
	s := risingSeries(250)

	a := MovingAverages(s)
	b := MovingAverages(s)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)

	ra := RelativeStrength(s)
	rb := RelativeStrength(s)
	assert.Equal(t, *ra, *rb)
}
