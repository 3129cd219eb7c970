package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/stratbench"
	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/raykavin/stratbench/pkg/metric"
)

// ParamLeverage overrides the run leverage instead of a strategy field
const ParamLeverage = "leverage"

var ErrUnknownParameter = errors.New("parameter does not address a strategy field")

// aliases maps short parameter names to their path in the strategy JSON
var aliases = map[string]string{
	"stopLoss.value":   "exitCondition.stopLoss.value",
	"takeProfit.value": "exitCondition.takeProfit.value",
	"sizingValue":      "entryCondition.sizingValue",
	"riskPerTrade":     "entryCondition.riskPerTrade",
	"maxPositionSize":  "entryCondition.maxPositionSize",
}

// BacktestStrategyEvaluator evaluates parameter sets by backtesting a JSON
// strategy over one dataframe. The dataframe must already carry every
// indicator column the strategy reads; evaluations never modify it.
type BacktestStrategyEvaluator struct {
	dataframe   *core.Dataframe
	strategy    map[string]any
	initialCash float64
	leverage    float64
	logger      logger.Logger
}

// NewBacktestStrategyEvaluator creates an evaluator for a base strategy given
// as JSON text or a decoded JSON object.
func NewBacktestStrategyEvaluator(
	df *core.Dataframe,
	rawStrategy any,
	initialCash float64,
	leverage float64,
	log logger.Logger,
) (*BacktestStrategyEvaluator, error) {
	base, err := decodeObject(rawStrategy)
	if err != nil {
		return nil, err
	}

	// fail early on a strategy that would break every evaluation
	if _, err := stratbench.LoadConfig(base); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Nop()
	}

	return &BacktestStrategyEvaluator{
		dataframe:   df,
		strategy:    base,
		initialCash: initialCash,
		leverage:    leverage,
		logger:      log,
	}, nil
}

// Evaluate runs a backtest with the given parameters and returns performance metrics
func (e *BacktestStrategyEvaluator) Evaluate(ctx context.Context, params ParameterSet) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	config, leverage, err := e.apply(params)
	if err != nil {
		return nil, err
	}

	result, err := stratbench.Backtest(e.dataframe, config, e.initialCash, leverage, stratbench.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("backtest failed: %w", err)
	}

	return &Result{
		Parameters: params,
		Metrics:    collectMetrics(result),
		Duration:   time.Since(startTime),
	}, nil
}

// apply returns a copy of the base strategy with params written into it
func (e *BacktestStrategyEvaluator) apply(params ParameterSet) (map[string]any, float64, error) {
	config, err := clone(e.strategy)
	if err != nil {
		return nil, 0, err
	}

	leverage := e.leverage
	for name, value := range params {
		if name == ParamLeverage {
			number, ok := toFloat(value)
			if !ok {
				return nil, 0, fmt.Errorf("parameter %s must be numeric", name)
			}
			leverage = number
			continue
		}

		if err := set(config, name, value); err != nil {
			return nil, 0, err
		}
	}

	return config, leverage, nil
}

// collectMetrics extracts performance metrics from a finished backtest
func collectMetrics(result *stratbench.Result) map[string]float64 {
	summary := result.TradeStats
	outcome := result.Outcome
	trades := float64(len(summary.Win()) + len(summary.Lose()))

	metrics := map[string]float64{
		string(MetricProfit):       summary.Profit(),
		string(MetricReturn):       outcome.Return(),
		string(MetricFinalBalance): outcome.FinalEquity(),
		string(MetricTradeCount):   trades,
		string(MetricMarginCalls):  float64(summary.MarginCalls),
		string(MetricDrawdown):     metric.MaxDrawdown(outcome.EquityCurve),
		string(MetricSharpeRatio): metric.SharpeRatio(
			metric.Returns(outcome.EquityCurve),
			metric.PeriodsPerYear(outcome.Dates),
		),
		string(MetricWinRate):      0,
		string(MetricPayoff):       0,
		string(MetricProfitFactor): 0,
		string(MetricSQN):          0,
	}

	if trades > 0 {
		metrics[string(MetricWinRate)] = float64(len(summary.Win())) / trades
		metrics[string(MetricPayoff)] = summary.Payoff()
		metrics[string(MetricProfitFactor)] = summary.ProfitFactor()
		metrics[string(MetricSQN)] = summary.SQN()
	}

	return metrics
}

// ParametersFor proposes sweeps for the exits, sizing and leverage of a strategy,
// plus the condition logic when it has several conditions
func ParametersFor(rawStrategy any) ([]Parameter, error) {
	base, err := decodeObject(rawStrategy)
	if err != nil {
		return nil, err
	}

	var params []Parameter
	if _, err := get(base, aliases["stopLoss.value"]); err == nil {
		params = append(params, Parameter{
			Name: "stopLoss.value", Description: "Stop loss distance",
			Default: 3.0, Min: 1.0, Max: 5.0, Step: 1.0, Type: TypeFloat,
		})
	}
	if _, err := get(base, aliases["takeProfit.value"]); err == nil {
		params = append(params, Parameter{
			Name: "takeProfit.value", Description: "Take profit distance",
			Default: 6.0, Min: 2.0, Max: 10.0, Step: 2.0, Type: TypeFloat,
		})
	}

	params = append(params,
		Parameter{
			Name: "sizingValue", Description: "Position sizing parameter",
			Default: 2.0, Min: 1.0, Max: 10.0, Step: 3.0, Type: TypeFloat,
		},
		Parameter{
			Name: ParamLeverage, Description: "Leverage multiplier",
			Default: 1, Min: 1, Max: 5, Step: 1, Type: TypeInt,
		},
	)

	if conditions, _ := base["conditions"].([]any); len(conditions) > 1 {
		params = append(params, Parameter{
			Name: "logicalOperator", Description: "How conditions combine",
			Default: "AND", Options: []any{"AND", "OR"}, Type: TypeCategorical,
		})
	}

	return params, nil
}

func decodeObject(raw any) (map[string]any, error) {
	var data []byte
	switch value := raw.(type) {
	case string:
		data = []byte(value)
	case []byte:
		data = value
	case json.RawMessage:
		data = value
	case map[string]any:
		return clone(value)
	default:
		return nil, core.NewConfigError("strategy configuration must be an object")
	}

	var object map[string]any
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, core.NewConfigError("invalid strategy json: %v", err)
	}
	if object == nil {
		return nil, core.NewConfigError("strategy configuration must be an object")
	}
	return object, nil
}

func clone(object map[string]any) (map[string]any, error) {
	data, err := json.Marshal(object)
	if err != nil {
		return nil, fmt.Errorf("copy strategy: %w", err)
	}

	var copied map[string]any
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("copy strategy: %w", err)
	}
	return copied, nil
}

func resolve(name string) []string {
	if path, ok := aliases[name]; ok {
		name = path
	}
	return strings.Split(name, ".")
}

// parent walks every path segment but the last
func parent(object map[string]any, path []string) (any, error) {
	var current any = object
	for _, segment := range path[:len(path)-1] {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("%s: %w", strings.Join(path, "."), ErrUnknownParameter)
			}
			current = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, fmt.Errorf("%s: %w", strings.Join(path, "."), ErrUnknownParameter)
			}
			current = node[index]
		default:
			return nil, fmt.Errorf("%s: %w", strings.Join(path, "."), ErrUnknownParameter)
		}
	}
	return current, nil
}

func get(object map[string]any, name string) (any, error) {
	path := resolve(name)
	node, err := parent(object, path)
	if err != nil {
		return nil, err
	}

	leaf := path[len(path)-1]
	if fields, ok := node.(map[string]any); ok {
		if value, ok := fields[leaf]; ok {
			return value, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnknownParameter)
}

// set writes value at the dotted path of name. The parent must exist.
func set(object map[string]any, name string, value any) error {
	path := resolve(name)
	node, err := parent(object, path)
	if err != nil {
		return err
	}

	leaf := path[len(path)-1]
	switch fields := node.(type) {
	case map[string]any:
		fields[leaf] = value
	case []any:
		index, err := strconv.Atoi(leaf)
		if err != nil || index < 0 || index >= len(fields) {
			return fmt.Errorf("%s: %w", name, ErrUnknownParameter)
		}
		fields[index] = value
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownParameter)
	}
	return nil
}

func toFloat(value any) (float64, bool) {
	switch number := value.(type) {
	case float64:
		return number, true
	case int:
		return float64(number), true
	default:
		return 0, false
	}
}
