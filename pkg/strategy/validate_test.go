package strategy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, content string) any {
	t.Helper()

	var raw any
	require.NoError(t, json.Unmarshal([]byte(content), &raw))
	return raw
}

const validStrategy = `{
	"conditions": [{"indicator": "RSI", "operator": "less_than", "value": 30}],
	"logicalOperator": "AND",
	"action": "LONG",
	"entryCondition": {"positionSizing": "fixed_percentage", "sizingValue": 2},
	"exitCondition": {
		"stopLoss": {"type": "fixed_percentage", "value": 3},
		"takeProfit": {"type": "fixed_percentage", "value": 6}
	}
}`

func TestValidate_Valid(t *testing.T) {
	raw := decodeJSON(t, validStrategy)

	require.NoError(t, Validate(raw))
	require.NoError(t, Validate(raw))
}

func TestValidate_FirstError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "not an object",
			content: `[1, 2]`,
			message: "strategy configuration must be an object",
		},
		{
			name:    "missing conditions",
			content: `{"action": "LONG"}`,
			message: "strategy configuration must contain 'conditions'",
		},
		{
			name:    "conditions not a list",
			content: `{"conditions": {}}`,
			message: "conditions must be a list",
		},
		{
			name:    "empty conditions",
			content: `{"conditions": []}`,
			message: "at least one condition is required",
		},
		{
			name:    "condition not an object",
			content: `{"conditions": ["RSI"]}`,
			message: "condition 0 must be an object",
		},
		{
			name:    "missing operator",
			content: `{"conditions": [{"indicator": "RSI"}]}`,
			message: "condition 0 missing required field: operator",
		},
		{
			name:    "unknown operator",
			content: `{"conditions": [{"indicator": "RSI", "operator": "approx"}]}`,
			message: "invalid operator in condition 0: approx",
		},
		{
			name: "unknown indicator reported after operator",
			content: `{"conditions": [
				{"indicator": "RSI", "operator": "less_than"},
				{"indicator": "ADX", "operator": "greater_than"}
			]}`,
			message: "invalid indicator in condition 1: ADX",
		},
		{
			name:    "missing action",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}]}`,
			message: "strategy configuration must contain 'action'",
		},
		{
			name:    "lowercase action",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}], "action": "long"}`,
			message: "invalid action: long, must be 'LONG' or 'SHORT'",
		},
		{
			name: "missing entry",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}], "action": "SHORT",
				"exitCondition": {}}`,
			message: "strategy configuration must contain 'entryCondition'",
		},
		{
			name: "unknown sizing",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}], "action": "SHORT",
				"entryCondition": {"positionSizing": "martingale", "sizingValue": 2}}`,
			message: "invalid position sizing type: martingale",
		},
		{
			name: "string sizing value",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}], "action": "SHORT",
				"entryCondition": {"positionSizing": "fixed_dollar", "sizingValue": "100"}}`,
			message: "entry condition must have a numeric 'sizingValue' field",
		},
		{
			name: "missing exit",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}], "action": "SHORT",
				"entryCondition": {"positionSizing": "fixed_dollar", "sizingValue": 100}}`,
			message: "strategy configuration must contain 'exitCondition'",
		},
		{
			name: "stop loss without value",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}], "action": "SHORT",
				"entryCondition": {"positionSizing": "fixed_dollar", "sizingValue": 100},
				"exitCondition": {"stopLoss": {"type": "trailing_dollar"}}}`,
			message: "stop loss must have a numeric 'value' field",
		},
		{
			name: "unknown take profit",
			content: `{"conditions": [{"indicator": "RSI", "operator": "less_than"}], "action": "SHORT",
				"entryCondition": {"positionSizing": "fixed_dollar", "sizingValue": 100},
				"exitCondition": {"takeProfit": {"type": "moon", "value": 1}}}`,
			message: "invalid take profit type: moon",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(decodeJSON(t, tc.content))
			require.Error(t, err)

			var configErr *core.ConfigError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, tc.message, configErr.Message)
		})
	}
}

func TestValidate_NilInput(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.Equal(t, "strategy configuration must be an object", err.Error())
}

func TestValidate_EmptyExitIsValid(t *testing.T) {
	raw := decodeJSON(t, `{
		"conditions": [{"indicator": "Close", "operator": "greater_than", "value": "100"}],
		"action": "SHORT",
		"entryCondition": {"positionSizing": "kelly_criterion", "sizingValue": 0},
		"exitCondition": {}
	}`)

	require.NoError(t, Validate(raw))
}

func TestConfig_Validate(t *testing.T) {
	parsed, err := Parse([]byte(validStrategy))
	require.NoError(t, err)
	require.NoError(t, parsed.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{
			name:    "no conditions",
			mutate:  func(c *Config) { c.Conditions = nil },
			message: "at least one condition is required",
		},
		{
			name:    "unknown operator",
			mutate:  func(c *Config) { c.Conditions = []Condition{{Indicator: IndicatorRSI, Operator: "above"}} },
			message: "invalid operator in condition 0: above",
		},
		{
			name:    "unknown indicator",
			mutate:  func(c *Config) { c.Conditions = []Condition{{Indicator: "VWAP", Operator: OperatorLessThan}} },
			message: "invalid indicator in condition 0: VWAP",
		},
		{
			name:    "flat action",
			mutate:  func(c *Config) { c.Action = core.SideFlat },
			message: "invalid action: FLAT, must be 'LONG' or 'SHORT'",
		},
		{
			name:    "unknown sizing",
			mutate:  func(c *Config) { c.Entry.Sizing = "martingale" },
			message: "invalid position sizing type: martingale",
		},
		{
			name:    "unknown stop",
			mutate:  func(c *Config) { c.Exit.StopLoss = &StopLoss{Kind: "chandelier"} },
			message: "invalid stop loss type: chandelier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := Parse([]byte(validStrategy))
			require.NoError(t, err)
			tt.mutate(config)

			err = config.Validate()
			var configError *core.ConfigError
			require.ErrorAs(t, err, &configError)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	var missing *Config
	assert.Error(t, missing.Validate())
}
