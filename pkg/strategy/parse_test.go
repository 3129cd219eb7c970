package strategy

import (
	"testing"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	config, err := Parse([]byte(validStrategy))
	require.NoError(t, err)

	assert.Equal(t, core.SideLong, config.Action)
	assert.Equal(t, LogicAnd, config.LogicalOperator)
	require.Len(t, config.Conditions, 1)
	assert.Equal(t, IndicatorRSI, config.Conditions[0].Indicator)
	assert.Equal(t, OperatorLessThan, config.Conditions[0].Operator)
	assert.Equal(t, "30", config.Conditions[0].Value)

	assert.Equal(t, SizingFixedPercentage, config.Entry.Sizing)
	assert.Equal(t, 2.0, config.Entry.SizingValue)
	assert.Nil(t, config.Entry.MaxPositionSize)
	assert.Equal(t, DefaultRiskPerTrade, config.Entry.RiskPerTrade)
	assert.Equal(t, DefaultVolatilityPeriod, config.Entry.VolatilityPeriod)

	require.NotNil(t, config.Exit.StopLoss)
	assert.Equal(t, StopFixedPercentage, config.Exit.StopLoss.Kind)
	assert.Equal(t, 3.0, config.Exit.StopLoss.Value)
	assert.Equal(t, DefaultATRPeriod, config.Exit.StopLoss.ATRPeriod)

	require.NotNil(t, config.Exit.TakeProfit)
	assert.Equal(t, TakeProfitFixedPercentage, config.Exit.TakeProfit.Kind)
	assert.Equal(t, 6.0, config.Exit.TakeProfit.Value)
}

func TestParse_OptionalFields(t *testing.T) {
	config, err := Parse([]byte(`{
		"conditions": [
			{"indicator": "Close", "operator": "between", "value": 90, "compareValue": "110"},
			{"indicator": "MACD", "operator": "crosses_above", "compareIndicator": "EMA"}
		],
		"logicalOperator": "OR",
		"action": "SHORT",
		"entryCondition": {
			"positionSizing": "volatility_based", "sizingValue": 5,
			"maxPositionSize": 20, "volatilityPeriod": 10
		},
		"exitCondition": {
			"stopLoss": {"type": "atr_based", "value": 2, "atrPeriod": 7},
			"takeProfit": {"type": "indicator_based", "value": 1, "indicator": "Stochastic", "indicatorValue": 80}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, core.SideShort, config.Action)
	assert.Equal(t, LogicOr, config.LogicalOperator)

	lower, upper, ok := config.Conditions[0].Bounds()
	require.True(t, ok)
	assert.Equal(t, 90.0, lower)
	assert.Equal(t, 110.0, upper)

	assert.Equal(t, IndicatorEMA, config.Conditions[1].CompareIndicator)
	assert.Equal(t, "0", config.Conditions[1].Value)

	require.NotNil(t, config.Entry.MaxPositionSize)
	assert.Equal(t, 20.0, *config.Entry.MaxPositionSize)
	assert.Equal(t, "atr_10", config.Entry.VolatilityColumn())

	assert.Equal(t, "atr_7", config.Exit.StopLoss.ATRColumn())
	assert.Equal(t, IndicatorStochastic, config.Exit.TakeProfit.Indicator)
	assert.Equal(t, "80", config.Exit.TakeProfit.IndicatorValue)
}

func TestParse_UnknownLogicDefaultsToAnd(t *testing.T) {
	config, err := Parse([]byte(`{
		"conditions": [{"indicator": "RSI", "operator": "less_than", "value": 30}],
		"logicalOperator": "XOR",
		"action": "LONG",
		"entryCondition": {"positionSizing": "fixed_dollar", "sizingValue": 100},
		"exitCondition": {"takeProfit": {"type": "risk_reward_ratio", "value": 3}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, LogicAnd, config.LogicalOperator)
	assert.Equal(t, 3.0, config.Exit.TakeProfit.RiskReward)
	assert.Equal(t, IndicatorRSI, config.Exit.TakeProfit.Indicator)
	assert.Equal(t, DefaultIndicatorValue, config.Exit.TakeProfit.IndicatorValue)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"conditions":`))
	require.Error(t, err)

	var configErr *core.ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestIndicator_Column(t *testing.T) {
	tests := map[Indicator]string{
		IndicatorRSI:            "rsi",
		IndicatorMACD:           "macd_line",
		IndicatorSMA:            "sma_20",
		IndicatorEMA:            "ema_20",
		IndicatorBollingerBands: "bb_middle",
		IndicatorStochastic:     "stoch_k",
		IndicatorWilliamsR:      "williams_r",
		IndicatorATR:            "atr",
		IndicatorVolume:         "Volume",
		IndicatorClose:          "Close",
		"bollinger_bands":       "bb_middle",
		"unknown":               "Close",
	}

	for indicator, column := range tests {
		assert.Equal(t, column, indicator.Column(), string(indicator))
	}
}
