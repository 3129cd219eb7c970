package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// MaType represents moving average type
type MaType = talib.MaType

const (
	TypeSMA = talib.SMA // Simple Moving Average
	TypeEMA = talib.EMA // Exponential Moving Average
)

// The wrappers below return a series as long as the input where the warm-up
// bars are NaN instead of the zeros talib leaves there. Inputs too short for
// the lookback yield an all-NaN series.

// SMA calculates Simple Moving Average
func SMA(input []float64, period int) []float64 {
	lookback := period - 1
	if !enough(input, lookback) {
		return missing(len(input))
	}
	return warmup(talib.Sma(input, period), lookback)
}

// EMA calculates Exponential Moving Average
func EMA(input []float64, period int) []float64 {
	lookback := period - 1
	if !enough(input, lookback) {
		return missing(len(input))
	}
	return warmup(talib.Ema(input, period), lookback)
}

// BB calculates Bollinger Bands, returning upper, middle and lower bands
func BB(input []float64, period int, deviation float64, maType MaType) ([]float64, []float64, []float64) {
	lookback := period - 1
	if !enough(input, lookback) {
		return missing(len(input)), missing(len(input)), missing(len(input))
	}
	upper, middle, lower := talib.BBands(input, period, deviation, deviation, maType)
	return warmup(upper, lookback), warmup(middle, lookback), warmup(lower, lookback)
}

// RSI calculates Relative Strength Index
func RSI(input []float64, period int) []float64 {
	lookback := period
	if !enough(input, lookback) {
		return missing(len(input))
	}
	return warmup(talib.Rsi(input, period), lookback)
}

// MACD calculates Moving Average Convergence/Divergence, returning the
// MACD line, signal line and histogram
func MACD(input []float64, fastPeriod, slowPeriod, signalPeriod int) ([]float64, []float64, []float64) {
	lookback := max(fastPeriod, slowPeriod) - 1 + signalPeriod - 1
	if !enough(input, lookback) {
		return missing(len(input)), missing(len(input)), missing(len(input))
	}
	line, signal, hist := talib.Macd(input, fastPeriod, slowPeriod, signalPeriod)
	return warmup(line, lookback), warmup(signal, lookback), warmup(hist, lookback)
}

// Stoch calculates the slow Stochastic oscillator, returning %K and %D
func Stoch(high, low, close []float64, fastKPeriod, slowKPeriod, slowDPeriod int) ([]float64, []float64) {
	lookback := fastKPeriod - 1 + slowKPeriod - 1 + slowDPeriod - 1
	if !enough(close, lookback) {
		return missing(len(close)), missing(len(close))
	}
	k, d := talib.Stoch(high, low, close, fastKPeriod, slowKPeriod, TypeSMA, slowDPeriod, TypeSMA)
	return warmup(k, lookback), warmup(d, lookback)
}

// WilliamsR calculates Williams' %R
func WilliamsR(high, low, close []float64, period int) []float64 {
	lookback := period - 1
	if !enough(close, lookback) {
		return missing(len(close))
	}
	return warmup(talib.WillR(high, low, close, period), lookback)
}

// ATR calculates Average True Range
func ATR(high, low, close []float64, period int) []float64 {
	lookback := period
	if !enough(close, lookback) {
		return missing(len(close))
	}
	return warmup(talib.Atr(high, low, close, period), lookback)
}

func enough(input []float64, lookback int) bool {
	return lookback >= 0 && len(input) > lookback
}

func warmup(values []float64, lookback int) []float64 {
	for i := 0; i < lookback && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}

func missing(length int) []float64 {
	values := make([]float64, length)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}
