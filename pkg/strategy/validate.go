package strategy

import (
	"encoding/json"

	"github.com/raykavin/stratbench/pkg/core"
)

// Validate checks a decoded JSON strategy and returns the first structural
// problem found as a *core.ConfigError.
func Validate(raw any) error {
	config, ok := raw.(map[string]any)
	if !ok {
		return core.NewConfigError("strategy configuration must be an object")
	}

	if err := validateConditions(config); err != nil {
		return err
	}

	action, ok := config["action"]
	if !ok {
		return core.NewConfigError("strategy configuration must contain 'action'")
	}
	if name, _ := action.(string); !isSide(name) {
		return core.NewConfigError("invalid action: %v, must be 'LONG' or 'SHORT'", action)
	}

	if err := validateEntry(config); err != nil {
		return err
	}

	return validateExit(config)
}

func validateConditions(config map[string]any) error {
	rawConditions, ok := config["conditions"]
	if !ok {
		return core.NewConfigError("strategy configuration must contain 'conditions'")
	}

	conditions, ok := rawConditions.([]any)
	if !ok {
		return core.NewConfigError("conditions must be a list")
	}
	if len(conditions) == 0 {
		return core.NewConfigError("at least one condition is required")
	}

	for i, rawCondition := range conditions {
		condition, ok := rawCondition.(map[string]any)
		if !ok {
			return core.NewConfigError("condition %d must be an object", i)
		}

		for _, field := range []string{"indicator", "operator"} {
			if _, ok := condition[field]; !ok {
				return core.NewConfigError("condition %d missing required field: %s", i, field)
			}
		}

		operator, _ := condition["operator"].(string)
		if !Operator(operator).Valid() {
			return core.NewConfigError("invalid operator in condition %d: %v", i, condition["operator"])
		}

		indicator, _ := condition["indicator"].(string)
		if !Indicator(indicator).Valid() {
			return core.NewConfigError("invalid indicator in condition %d: %v", i, condition["indicator"])
		}
	}

	return nil
}

func validateEntry(config map[string]any) error {
	rawEntry, ok := config["entryCondition"]
	if !ok {
		return core.NewConfigError("strategy configuration must contain 'entryCondition'")
	}

	entry, ok := rawEntry.(map[string]any)
	if !ok {
		return core.NewConfigError("entry condition must be an object")
	}

	sizing, ok := entry["positionSizing"]
	if !ok {
		return core.NewConfigError("entry condition must have a 'positionSizing' field")
	}
	if name, _ := sizing.(string); !SizingPolicy(name).Valid() {
		return core.NewConfigError("invalid position sizing type: %v", sizing)
	}

	if !isNumber(entry["sizingValue"]) {
		return core.NewConfigError("entry condition must have a numeric 'sizingValue' field")
	}

	return nil
}

func validateExit(config map[string]any) error {
	rawExit, ok := config["exitCondition"]
	if !ok {
		return core.NewConfigError("strategy configuration must contain 'exitCondition'")
	}

	exit, ok := rawExit.(map[string]any)
	if !ok {
		return core.NewConfigError("exit condition must be an object")
	}

	if rawStop, ok := exit["stopLoss"]; ok {
		stop, ok := rawStop.(map[string]any)
		if !ok {
			return core.NewConfigError("stop loss must be an object")
		}
		kind, ok := stop["type"]
		if !ok {
			return core.NewConfigError("stop loss must have a 'type' field")
		}
		if name, _ := kind.(string); !StopKind(name).Valid() {
			return core.NewConfigError("invalid stop loss type: %v", kind)
		}
		if !isNumber(stop["value"]) {
			return core.NewConfigError("stop loss must have a numeric 'value' field")
		}
	}

	if rawTakeProfit, ok := exit["takeProfit"]; ok {
		takeProfit, ok := rawTakeProfit.(map[string]any)
		if !ok {
			return core.NewConfigError("take profit must be an object")
		}
		kind, ok := takeProfit["type"]
		if !ok {
			return core.NewConfigError("take profit must have a 'type' field")
		}
		if name, _ := kind.(string); !TakeProfitKind(name).Valid() {
			return core.NewConfigError("invalid take profit type: %v", kind)
		}
		if !isNumber(takeProfit["value"]) {
			return core.NewConfigError("take profit must have a numeric 'value' field")
		}
	}

	return nil
}

func isSide(action string) bool {
	_, ok := core.ParseSide(action)
	return ok
}

func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

// Validate checks a config built in code with the same rules Parse enforces
// on JSON input
func (c *Config) Validate() error {
	if c == nil {
		return core.NewConfigError("strategy configuration must be an object")
	}
	if len(c.Conditions) == 0 {
		return core.NewConfigError("at least one condition is required")
	}
	for i, condition := range c.Conditions {
		if !condition.Operator.Valid() {
			return core.NewConfigError("invalid operator in condition %d: %v", i, condition.Operator)
		}
		if !condition.Indicator.Valid() {
			return core.NewConfigError("invalid indicator in condition %d: %v", i, condition.Indicator)
		}
	}
	if !isSide(string(c.Action)) {
		return core.NewConfigError("invalid action: %v, must be 'LONG' or 'SHORT'", c.Action)
	}
	if !c.Entry.Sizing.Valid() {
		return core.NewConfigError("invalid position sizing type: %v", c.Entry.Sizing)
	}
	if stop := c.Exit.StopLoss; stop != nil && !stop.Kind.Valid() {
		return core.NewConfigError("invalid stop loss type: %v", stop.Kind)
	}
	if takeProfit := c.Exit.TakeProfit; takeProfit != nil && !takeProfit.Kind.Valid() {
		return core.NewConfigError("invalid take profit type: %v", takeProfit.Kind)
	}
	return nil
}
