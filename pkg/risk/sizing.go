package risk

import (
	"math"

	"github.com/raykavin/stratbench/pkg/strategy"
)

const (
	kellyFraction          = 0.25
	defaultAllocation      = 0.02
	defaultVolatilityRatio = 0.02
	minVolatilityPct       = 0.1
	minVolatilityFactor    = 0.2
	maxVolatilityFactor    = 5.0
)

// PositionSize returns the base cash commitment for an entry, before leverage.
// A volatility that is NaN or not positive falls back to 2% of price.
// Callers cap the result against available cash.
func PositionSize(entry strategy.EntryCondition, portfolioValue, price, volatility float64) float64 {
	var size float64

	switch entry.Sizing {
	case strategy.SizingFixedPercentage:
		size = portfolioValue * entry.SizingValue / 100
	case strategy.SizingFixedDollar:
		size = entry.SizingValue
	case strategy.SizingRiskBased:
		size = portfolioValue * entry.RiskPerTrade / 100
	case strategy.SizingKelly:
		size = portfolioValue * kellyFraction
	case strategy.SizingVolatility:
		size = portfolioValue * entry.SizingValue / 100 * VolatilityFactor(price, volatility)
	default:
		return math.Max(portfolioValue*defaultAllocation, 0)
	}

	if entry.MaxPositionSize != nil {
		size = math.Min(size, portfolioValue*(*entry.MaxPositionSize)/100)
	}

	if math.IsNaN(size) || size < 0 {
		return 0
	}

	return size
}

// VolatilityFactor scales allocations inversely to volatility as a percentage of price
func VolatilityFactor(price, volatility float64) float64 {
	if math.IsNaN(volatility) || volatility <= 0 {
		volatility = price * defaultVolatilityRatio
	}

	if price <= 0 || math.IsNaN(price) {
		return 1 / (defaultVolatilityRatio * 100)
	}

	volatilityPct := 100 * volatility / price
	factor := 1 / math.Max(volatilityPct, minVolatilityPct)

	return math.Min(math.Max(factor, minVolatilityFactor), maxVolatilityFactor)
}
