package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bars(size int, withRange bool) *core.Dataframe {
	times := make([]time.Time, size)
	closes := make([]float64, size)
	highs := make([]float64, size)
	lows := make([]float64, size)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * time.Hour)
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
		highs[i] = closes[i] + 1
		lows[i] = closes[i] - 1
	}

	df := core.NewDataframe("BTCUSDT", times)
	df.SetColumn(core.ColumnClose, closes)
	if withRange {
		df.SetColumn(core.ColumnHigh, highs)
		df.SetColumn(core.ColumnLow, lows)
	}
	return df
}

func countNaN(values []float64) int {
	count := 0
	for _, value := range values {
		if math.IsNaN(value) {
			count++
		}
	}
	return count
}

func TestAugment(t *testing.T) {
	df := bars(80, true)
	settings := DefaultSettings()
	settings.ExtraATRPeriods = []int{20, 20, 14, 0}

	require.NoError(t, Augment(df, settings))

	for _, column := range []string{
		ColumnRSI, ColumnMACDLine, ColumnSMA, ColumnEMA, ColumnBBMiddle,
		ColumnStochK, ColumnWilliamsR, ColumnATR, "atr_14", "atr_20",
	} {
		values, ok := df.Column(column)
		require.True(t, ok, column)
		require.Len(t, values, 80, column)
	}

	sma, _ := df.Column(ColumnSMA)
	assert.Equal(t, 19, countNaN(sma))
	expected := 0.0
	for _, value := range df.Close[:20] {
		expected += value
	}
	assert.InDelta(t, expected/20, sma[19], 1e-9)

	rsi, _ := df.Column(ColumnRSI)
	assert.Equal(t, 14, countNaN(rsi))
	for _, value := range rsi[14:] {
		assert.GreaterOrEqual(t, value, 0.0)
		assert.LessOrEqual(t, value, 100.0)
	}

	macd, _ := df.Column(ColumnMACDLine)
	assert.Equal(t, 33, countNaN(macd))

	atr, _ := df.Column("atr_20")
	assert.Equal(t, 20, countNaN(atr))
	for _, value := range atr[20:] {
		assert.Greater(t, value, 0.0)
	}

	williams, _ := df.Column(ColumnWilliamsR)
	for _, value := range williams[13:] {
		assert.GreaterOrEqual(t, value, -100.0)
		assert.LessOrEqual(t, value, 0.0)
	}
}

func TestAugment_CloseOnly(t *testing.T) {
	df := bars(40, false)
	require.NoError(t, Augment(df, DefaultSettings()))

	assert.True(t, df.HasColumn(ColumnRSI))
	assert.True(t, df.HasColumn(ColumnBBMiddle))
	assert.False(t, df.HasColumn(ColumnATR))
	assert.False(t, df.HasColumn(ColumnStochK))
}

func TestAugment_ShortInput(t *testing.T) {
	df := bars(10, true)
	require.NoError(t, Augment(df, DefaultSettings()))

	for _, column := range []string{ColumnRSI, ColumnMACDLine, ColumnSMA, ColumnATR} {
		values, ok := df.Column(column)
		require.True(t, ok)
		assert.Equal(t, 10, countNaN(values), column)
	}
}

func TestAugment_Errors(t *testing.T) {
	assert.ErrorIs(t, Augment(nil, DefaultSettings()), core.ErrEmptyDataset)

	df := core.NewDataframe("X", []time.Time{time.Now()})
	df.SetColumn(core.ColumnOpen, []float64{1})
	assert.ErrorIs(t, Augment(df, DefaultSettings()), core.ErrMissingClose)
}
