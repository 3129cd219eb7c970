package metric

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// noLossRatio is reported by ratio metrics when there is nothing to divide by
const noLossRatio = 10

// Mean calculates the arithmetic mean of the values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Payoff calculates the ratio of average wins to average losses.
func Payoff(values []float64) float64 {
	wins, losses := partition(values)
	if len(losses) == 0 {
		return noLossRatio
	}

	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return noLossRatio
	}
	return math.Abs(Mean(wins) / avgLoss)
}

// ProfitFactor calculates the ratio of gross profit to gross loss.
func ProfitFactor(values []float64) float64 {
	wins, losses := partition(values)

	grossLoss := floats(losses).sum()
	if grossLoss == 0 {
		return noLossRatio
	}
	return math.Abs(floats(wins).sum() / grossLoss)
}

// Returns converts an equity curve into per-bar fractional returns.
// Bars starting from zero equity are skipped.
func Returns(curve []float64) []float64 {
	if len(curve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1] <= 0 {
			continue
		}
		returns = append(returns, curve[i]/curve[i-1]-1)
	}
	return returns
}

// MaxDrawdown returns the deepest peak-to-trough fall of the curve in percent
func MaxDrawdown(curve []float64) float64 {
	var peak, deepest float64
	for _, value := range curve {
		if value > peak {
			peak = value
		}
		if peak <= 0 {
			continue
		}
		if drawdown := (peak - value) / peak * 100; drawdown > deepest {
			deepest = drawdown
		}
	}
	return deepest
}

// SharpeRatio is the mean over standard deviation of returns, scaled by the
// square root of periods. Zero when the returns do not vary.
func SharpeRatio(returns []float64, periods float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean, stdDev := stat.MeanStdDev(returns, nil)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return mean / stdDev * math.Sqrt(periods)
}

// PeriodsPerYear estimates how many bars fit in a year from the median bar spacing
func PeriodsPerYear(dates []time.Time) float64 {
	if len(dates) < 2 {
		return 0
	}

	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		if gap := dates[i].Sub(dates[i-1]); gap > 0 {
			gaps = append(gaps, float64(gap))
		}
	}
	if len(gaps) == 0 {
		return 0
	}

	sort.Float64s(gaps)
	median := stat.Quantile(0.5, stat.Empirical, gaps, nil)
	return float64(365*24*time.Hour) / median
}

func partition(values []float64) (wins []float64, losses []float64) {
	for _, value := range values {
		if value >= 0 {
			wins = append(wins, value)
		} else {
			losses = append(losses, math.Abs(value))
		}
	}
	return wins, losses
}

type floats []float64

func (f floats) sum() float64 {
	total := 0.0
	for _, value := range f {
		total += value
	}
	return total
}
