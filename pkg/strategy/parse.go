package strategy

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/raykavin/stratbench/pkg/core"
)

// Parse decodes a JSON strategy, validates it and resolves every policy
func Parse(data []byte) (*Config, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.NewConfigError("invalid strategy json: %v", err)
	}
	return Decode(raw)
}

// Decode validates an already decoded JSON strategy and resolves it
func Decode(raw any) (*Config, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}

	object := raw.(map[string]any)
	action, _ := core.ParseSide(object["action"].(string))

	config := &Config{
		LogicalOperator: LogicAnd,
		Action:          action,
	}

	if logic, _ := object["logicalOperator"].(string); Logic(logic) == LogicOr {
		config.LogicalOperator = LogicOr
	}

	for _, item := range object["conditions"].([]any) {
		config.Conditions = append(config.Conditions, decodeCondition(item.(map[string]any)))
	}

	config.Entry = decodeEntry(object["entryCondition"].(map[string]any))
	config.Exit = decodeExit(object["exitCondition"].(map[string]any))

	return config, nil
}

func decodeCondition(raw map[string]any) Condition {
	condition := Condition{
		Indicator:        Indicator(stringField(raw, "indicator", "")),
		Operator:         Operator(stringField(raw, "operator", "")),
		Value:            "0",
		CompareIndicator: IndicatorClose,
	}

	if value, ok := literal(raw["value"]); ok {
		condition.Value = value
	}
	if value, ok := literal(raw["compareValue"]); ok {
		condition.CompareValue = value
	}
	if indicator, ok := raw["compareIndicator"].(string); ok {
		condition.CompareIndicator = Indicator(indicator)
	}

	return condition
}

func decodeEntry(raw map[string]any) EntryCondition {
	entry := EntryCondition{
		Sizing:           SizingPolicy(stringField(raw, "positionSizing", "")),
		SizingValue:      numberField(raw, "sizingValue", 0),
		RiskPerTrade:     numberField(raw, "riskPerTrade", DefaultRiskPerTrade),
		VolatilityPeriod: int(numberField(raw, "volatilityPeriod", DefaultVolatilityPeriod)),
	}

	if value, ok := number(raw["maxPositionSize"]); ok {
		entry.MaxPositionSize = &value
	}

	return entry
}

func decodeExit(raw map[string]any) ExitCondition {
	var exit ExitCondition

	if stop, ok := raw["stopLoss"].(map[string]any); ok {
		exit.StopLoss = &StopLoss{
			Kind:      StopKind(stringField(stop, "type", "")),
			Value:     numberField(stop, "value", 0),
			ATRPeriod: int(numberField(stop, "atrPeriod", DefaultATRPeriod)),
			Level:     numberField(stop, "supportResistanceLevel", 0),
		}
	}

	if takeProfit, ok := raw["takeProfit"].(map[string]any); ok {
		value := numberField(takeProfit, "value", 0)
		exit.TakeProfit = &TakeProfit{
			Kind:           TakeProfitKind(stringField(takeProfit, "type", "")),
			Value:          value,
			RiskReward:     numberField(takeProfit, "riskRewardRatio", value),
			Indicator:      Indicator(stringField(takeProfit, "indicator", string(IndicatorRSI))),
			IndicatorValue: DefaultIndicatorValue,
		}
		if threshold, ok := literal(takeProfit["indicatorValue"]); ok {
			exit.TakeProfit.IndicatorValue = threshold
		}
	}

	return exit
}

func stringField(raw map[string]any, key, fallback string) string {
	if value, ok := raw[key].(string); ok {
		return value
	}
	return fallback
}

func numberField(raw map[string]any, key string, fallback float64) float64 {
	if value, ok := number(raw[key]); ok {
		return value
	}
	return fallback
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// literal renders a JSON scalar (number or string) as the text a condition compares against
func literal(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	}

	if f, ok := number(value); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}

	return fmt.Sprint(value), true
}
