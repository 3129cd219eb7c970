package risk

import (
	"math"
	"testing"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/strategy"
	"github.com/stretchr/testify/assert"
)

type fakeBar map[string]float64

func (b fakeBar) Value(column string) (float64, bool) {
	value, ok := b[column]
	return value, ok
}

func long(entry float64) Position {
	return Position{Side: core.SideLong, EntryPrice: entry, Highest: entry, Lowest: entry}
}

func short(entry float64) Position {
	return Position{Side: core.SideShort, EntryPrice: entry, Highest: entry, Lowest: entry}
}

func TestShouldExit_StopLoss(t *testing.T) {
	tests := []struct {
		name     string
		stop     strategy.StopLoss
		position Position
		price    float64
		bar      Bar
		exit     bool
		reason   string
	}{
		{
			name:     "fixed percentage long",
			stop:     strategy.StopLoss{Kind: strategy.StopFixedPercentage, Value: 3},
			position: long(100),
			price:    96,
			exit:     true,
			reason:   "Stop Loss: 3%",
		},
		{
			name:     "fixed percentage long not reached",
			stop:     strategy.StopLoss{Kind: strategy.StopFixedPercentage, Value: 3},
			position: long(100),
			price:    98,
		},
		{
			name:     "fixed percentage short",
			stop:     strategy.StopLoss{Kind: strategy.StopFixedPercentage, Value: 2.5},
			position: short(100),
			price:    103,
			exit:     true,
			reason:   "Stop Loss: 2.5%",
		},
		{
			name:     "fixed dollar long",
			stop:     strategy.StopLoss{Kind: strategy.StopFixedDollar, Value: 5},
			position: long(100),
			price:    95,
			exit:     true,
			reason:   "Stop Loss: $5",
		},
		{
			name:     "trailing percentage from high water mark",
			stop:     strategy.StopLoss{Kind: strategy.StopTrailingPercentage, Value: 10},
			position: Position{Side: core.SideLong, EntryPrice: 100, Highest: 150, Lowest: 100},
			price:    130,
			exit:     true,
			reason:   "Trailing Stop: 10%",
		},
		{
			name:     "trailing percentage short from low water mark",
			stop:     strategy.StopLoss{Kind: strategy.StopTrailingPercentage, Value: 10},
			position: Position{Side: core.SideShort, EntryPrice: 100, Highest: 100, Lowest: 80},
			price:    85,
		},
		{
			name:     "trailing dollar short",
			stop:     strategy.StopLoss{Kind: strategy.StopTrailingDollar, Value: 4},
			position: Position{Side: core.SideShort, EntryPrice: 100, Highest: 100, Lowest: 80},
			price:    85,
			exit:     true,
			reason:   "Trailing Stop: $4",
		},
		{
			name:     "atr stop long",
			stop:     strategy.StopLoss{Kind: strategy.StopATR, Value: 2, ATRPeriod: 14},
			position: long(100),
			price:    94,
			bar:      fakeBar{"atr_14": 3},
			exit:     true,
			reason:   "ATR Stop: 2x ATR",
		},
		{
			name:     "atr stop without column",
			stop:     strategy.StopLoss{Kind: strategy.StopATR, Value: 2, ATRPeriod: 14},
			position: long(100),
			price:    10,
			bar:      fakeBar{"atr": 3},
		},
		{
			name:     "atr stop with missing value",
			stop:     strategy.StopLoss{Kind: strategy.StopATR, Value: 2, ATRPeriod: 14},
			position: long(100),
			price:    10,
			bar:      fakeBar{"atr_14": math.NaN()},
		},
		{
			name:     "support level",
			stop:     strategy.StopLoss{Kind: strategy.StopSupportResistance, Value: 1, Level: 90},
			position: long(100),
			price:    90,
			exit:     true,
			reason:   "Support Level: $90",
		},
		{
			name:     "resistance level",
			stop:     strategy.StopLoss{Kind: strategy.StopSupportResistance, Value: 1, Level: 110},
			position: short(100),
			price:    111,
			exit:     true,
			reason:   "Resistance Level: $110",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stop := tc.stop
			exit, reason := ShouldExit(strategy.ExitCondition{StopLoss: &stop}, tc.position, tc.price, tc.bar)
			assert.Equal(t, tc.exit, exit)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestShouldExit_TakeProfit(t *testing.T) {
	percentStop := &strategy.StopLoss{Kind: strategy.StopFixedPercentage, Value: 5}
	dollarStop := &strategy.StopLoss{Kind: strategy.StopFixedDollar, Value: 50}

	tests := []struct {
		name       string
		stop       *strategy.StopLoss
		takeProfit strategy.TakeProfit
		position   Position
		price      float64
		bar        Bar
		exit       bool
		reason     string
	}{
		{
			name:       "fixed percentage long",
			takeProfit: strategy.TakeProfit{Kind: strategy.TakeProfitFixedPercentage, Value: 6},
			position:   long(100),
			price:      107,
			exit:       true,
			reason:     "Take Profit: 6%",
		},
		{
			name:       "fixed dollar short",
			takeProfit: strategy.TakeProfit{Kind: strategy.TakeProfitFixedDollar, Value: 10},
			position:   short(100),
			price:      89,
			exit:       true,
			reason:     "Take Profit: $10",
		},
		{
			name:       "risk reward with percentage stop",
			stop:       percentStop,
			takeProfit: strategy.TakeProfit{Kind: strategy.TakeProfitRiskReward, Value: 2, RiskReward: 2},
			position:   long(100),
			price:      110,
			exit:       true,
			reason:     "Risk:Reward 2:1",
		},
		{
			name:       "risk reward short not reached",
			stop:       percentStop,
			takeProfit: strategy.TakeProfit{Kind: strategy.TakeProfitRiskReward, Value: 2, RiskReward: 2},
			position:   short(100),
			price:      91,
		},
		{
			name:       "risk reward needs percentage stop",
			stop:       dollarStop,
			takeProfit: strategy.TakeProfit{Kind: strategy.TakeProfitRiskReward, Value: 2, RiskReward: 2},
			position:   long(100),
			price:      1000,
		},
		{
			name: "indicator above threshold",
			takeProfit: strategy.TakeProfit{
				Kind: strategy.TakeProfitIndicator, Indicator: strategy.IndicatorRSI, IndicatorValue: "70",
			},
			position: long(100),
			price:    100,
			bar:      fakeBar{"rsi": 71},
			exit:     true,
			reason:   "RSI > 70",
		},
		{
			name: "indicator equal to threshold",
			takeProfit: strategy.TakeProfit{
				Kind: strategy.TakeProfitIndicator, Indicator: strategy.IndicatorRSI, IndicatorValue: "70",
			},
			position: long(100),
			price:    100,
			bar:      fakeBar{"rsi": 70},
		},
		{
			name: "indicator non numeric threshold",
			takeProfit: strategy.TakeProfit{
				Kind: strategy.TakeProfitIndicator, Indicator: strategy.IndicatorRSI, IndicatorValue: "high",
			},
			position: long(100),
			price:    100,
			bar:      fakeBar{"rsi": 99},
		},
		{
			name: "indicator missing value",
			takeProfit: strategy.TakeProfit{
				Kind: strategy.TakeProfitIndicator, Indicator: strategy.IndicatorRSI, IndicatorValue: "70",
			},
			position: long(100),
			price:    100,
			bar:      fakeBar{"rsi": math.NaN()},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			takeProfit := tc.takeProfit
			exit := strategy.ExitCondition{TakeProfit: &takeProfit}
			if tc.stop != nil {
				stop := *tc.stop
				exit.StopLoss = &stop
			}

			hit, reason := ShouldExit(exit, tc.position, tc.price, tc.bar)
			assert.Equal(t, tc.exit, hit)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestShouldExit_StopLossWins(t *testing.T) {
	exit := strategy.ExitCondition{
		StopLoss:   &strategy.StopLoss{Kind: strategy.StopSupportResistance, Level: 120},
		TakeProfit: &strategy.TakeProfit{Kind: strategy.TakeProfitFixedPercentage, Value: 5},
	}

	hit, reason := ShouldExit(exit, long(100), 110, nil)
	assert.True(t, hit)
	assert.Equal(t, "Support Level: $120", reason)
}

func TestShouldExit_NothingConfigured(t *testing.T) {
	hit, reason := ShouldExit(strategy.ExitCondition{}, long(100), 1, nil)
	assert.False(t, hit)
	assert.Empty(t, reason)

	hit, _ = ShouldExit(strategy.ExitCondition{
		TakeProfit: &strategy.TakeProfit{Kind: strategy.TakeProfitFixedPercentage, Value: 1},
	}, Position{Side: core.SideFlat}, 1000, nil)
	assert.False(t, hit)
}
