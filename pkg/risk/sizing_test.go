package risk

import (
	"math"
	"testing"

	"github.com/raykavin/stratbench/pkg/strategy"
	"github.com/stretchr/testify/assert"
)

func TestPositionSize(t *testing.T) {
	cap10 := 10.0

	tests := []struct {
		name       string
		entry      strategy.EntryCondition
		value      float64
		price      float64
		volatility float64
		expected   float64
	}{
		{
			name:     "fixed percentage",
			entry:    strategy.EntryCondition{Sizing: strategy.SizingFixedPercentage, SizingValue: 2},
			value:    10000,
			price:    100,
			expected: 200,
		},
		{
			name:     "fixed percentage doubles with portfolio",
			entry:    strategy.EntryCondition{Sizing: strategy.SizingFixedPercentage, SizingValue: 2},
			value:    20000,
			price:    100,
			expected: 400,
		},
		{
			name:     "fixed dollar",
			entry:    strategy.EntryCondition{Sizing: strategy.SizingFixedDollar, SizingValue: 750},
			value:    10000,
			price:    100,
			expected: 750,
		},
		{
			name:     "risk based",
			entry:    strategy.EntryCondition{Sizing: strategy.SizingRiskBased, RiskPerTrade: 1.5},
			value:    10000,
			price:    100,
			expected: 150,
		},
		{
			name:     "kelly",
			entry:    strategy.EntryCondition{Sizing: strategy.SizingKelly},
			value:    10000,
			price:    100,
			expected: 2500,
		},
		{
			name:     "kelly capped",
			entry:    strategy.EntryCondition{Sizing: strategy.SizingKelly, MaxPositionSize: &cap10},
			value:    10000,
			price:    100,
			expected: 1000,
		},
		{
			name:       "volatility default estimate",
			entry:      strategy.EntryCondition{Sizing: strategy.SizingVolatility, SizingValue: 10},
			value:      10000,
			price:      100,
			volatility: math.NaN(),
			expected:   500,
		},
		{
			name:       "volatility low estimate hits upper clamp",
			entry:      strategy.EntryCondition{Sizing: strategy.SizingVolatility, SizingValue: 10},
			value:      10000,
			price:      100,
			volatility: 0.01,
			expected:   5000,
		},
		{
			name:       "volatility high estimate hits lower clamp",
			entry:      strategy.EntryCondition{Sizing: strategy.SizingVolatility, SizingValue: 10},
			value:      10000,
			price:      100,
			volatility: 50,
			expected:   200,
		},
		{
			name:     "unknown policy",
			entry:    strategy.EntryCondition{Sizing: "martingale", SizingValue: 50},
			value:    10000,
			price:    100,
			expected: 200,
		},
		{
			name:     "negative never returned",
			entry:    strategy.EntryCondition{Sizing: strategy.SizingFixedDollar, SizingValue: -100},
			value:    10000,
			price:    100,
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			size := PositionSize(tc.entry, tc.value, tc.price, tc.volatility)
			assert.InDelta(t, tc.expected, size, 1e-9)
		})
	}
}

func TestVolatilityFactor(t *testing.T) {
	assert.InDelta(t, 0.5, VolatilityFactor(100, 2), 1e-12)
	assert.InDelta(t, 0.5, VolatilityFactor(100, 0), 1e-12)
	assert.InDelta(t, 5.0, VolatilityFactor(100, 0.001), 1e-12)
	assert.InDelta(t, 0.2, VolatilityFactor(100, 80), 1e-12)
}
