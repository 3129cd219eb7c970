package optimizer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEvaluator scores parameter sets from a fixed table
type MockEvaluator struct {
	ResultMap map[string]map[string]float64
}

func (m *MockEvaluator) Evaluate(_ context.Context, params ParameterSet) (*Result, error) {
	metrics, exists := m.ResultMap[FormatParameterSet(params)]
	if !exists {
		metrics = make(map[string]float64)
		if stop, ok := params["stopLoss.value"].(float64); ok {
			metrics["profit"] = stop * 10
		}
		if leverage, ok := params["leverage"].(int); ok {
			metrics["profit"] -= float64(leverage) * 5
		}
		metrics["win_rate"] = 0.5
	}

	return &Result{
		Parameters: params,
		Metrics:    metrics,
		Duration:   100 * time.Millisecond,
	}, nil
}

type failingEvaluator struct{}

func (failingEvaluator) Evaluate(context.Context, ParameterSet) (*Result, error) {
	return nil, errors.New("boom")
}

func TestGridSearch(t *testing.T) {
	evaluator := &MockEvaluator{
		ResultMap: map[string]map[string]float64{
			"{leverage: 1, stopLoss.value: 2}": {"profit": 100.0, "win_rate": 0.6},
			"{leverage: 3, stopLoss.value: 4}": {"profit": 150.0, "win_rate": 0.7},
		},
	}

	parameters := []Parameter{
		{Name: "stopLoss.value", Default: 2.0, Min: 2.0, Max: 4.0, Step: 2.0, Type: TypeFloat},
		{Name: "leverage", Default: 1, Min: 1, Max: 3, Step: 2, Type: TypeInt},
	}

	config := NewConfig().
		WithParameters(parameters...).
		WithMaxIterations(10).
		WithParallelism(2)

	gridSearch, err := NewGridSearch(config)
	require.NoError(t, err)

	results, err := gridSearch.Optimize(context.Background(), evaluator, MetricProfit, true)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, 150.0, results[0].Metrics["profit"])
	assert.Equal(t, 100.0, results[1].Metrics["profit"])

	gridSearch.SetMaxIterations(3)
	results, err = gridSearch.Optimize(context.Background(), evaluator, MetricProfit, false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.LessOrEqual(t, results[0].Metrics["profit"], results[1].Metrics["profit"])
}

func TestGridSearch_FloatValues(t *testing.T) {
	values, err := generateParameterValues(Parameter{Name: "x", Min: 0.1, Max: 0.5, Step: 0.1, Type: TypeFloat})
	require.NoError(t, err)
	assert.Equal(t, []any{0.1, 0.2, 0.3, 0.4, 0.5}, values)

	_, err = generateParameterValues(Parameter{Name: "x", Min: 1, Max: 2, Step: 0, Type: TypeInt})
	assert.Error(t, err)

	_, err = generateParameterValues(Parameter{Name: "x", Type: TypeCategorical})
	assert.Error(t, err)
}

func TestGridSearch_EvaluationError(t *testing.T) {
	gridSearch, err := NewGridSearch(NewConfig().WithParameters(
		Parameter{Name: "leverage", Min: 1, Max: 3, Step: 1, Type: TypeInt},
	))
	require.NoError(t, err)

	_, err = gridSearch.Optimize(context.Background(), failingEvaluator{}, MetricProfit, true)
	assert.ErrorContains(t, err, "boom")

	_, err = NewGridSearch(NewConfig())
	assert.Error(t, err)
}

func TestRandomSearch(t *testing.T) {
	evaluator := &MockEvaluator{ResultMap: map[string]map[string]float64{}}

	parameters := []Parameter{
		{Name: "stopLoss.value", Default: 3.0, Min: 1.0, Max: 5.0, Type: TypeFloat},
		{Name: "leverage", Default: 1, Min: 1, Max: 10, Type: TypeInt},
	}

	config := NewConfig().
		WithParameters(parameters...).
		WithMaxIterations(5).
		WithParallelism(2).
		WithSeed(42)

	first, err := NewRandomSearch(config)
	require.NoError(t, err)
	results, err := first.Optimize(context.Background(), evaluator, MetricProfit, true)
	require.NoError(t, err)
	require.Len(t, results, 5)

	for _, result := range results {
		stop := result.Parameters["stopLoss.value"].(float64)
		leverage := result.Parameters["leverage"].(int)
		assert.True(t, stop >= 1 && stop <= 5)
		assert.True(t, leverage >= 1 && leverage <= 10)
	}

	second, err := NewRandomSearch(config)
	require.NoError(t, err)
	again, err := second.Optimize(context.Background(), evaluator, MetricProfit, true)
	require.NoError(t, err)

	for i := range results {
		assert.Equal(t, results[i].Parameters, again[i].Parameters)
	}
}

func TestOptimize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gridSearch, err := NewGridSearch(NewConfig().WithParameters(
		Parameter{Name: "leverage", Min: 1, Max: 3, Step: 1, Type: TypeInt},
	))
	require.NoError(t, err)

	_, err = gridSearch.Optimize(ctx, &MockEvaluator{}, MetricProfit, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParameterValidation(t *testing.T) {
	parameters := []Parameter{
		{Name: "intParam", Default: 10, Min: 1, Max: 100, Step: 1, Type: TypeInt},
		{Name: "floatParam", Default: 0.5, Min: 0.1, Max: 1.0, Step: 0.1, Type: TypeFloat},
		{Name: "kind", Options: []any{"fixed_percentage", "trailing"}, Type: TypeCategorical},
	}

	assert.NoError(t, ValidateParameterSet(ParameterSet{
		"intParam": 50, "floatParam": 0.5, "kind": "trailing",
	}, parameters))

	assert.Error(t, ValidateParameterSet(ParameterSet{"intParam": 50}, parameters))
	assert.Error(t, ValidateParameterSet(ParameterSet{
		"intParam": 50.5, "floatParam": 0.5, "kind": "trailing",
	}, parameters))
	assert.Error(t, ValidateParameterSet(ParameterSet{
		"intParam": 50, "floatParam": 0.5, "kind": "atr_based",
	}, parameters))
}

func TestResultSorter(t *testing.T) {
	results := []*Result{
		{Parameters: ParameterSet{"param": 1}, Metrics: map[string]float64{"profit": 100.0, "drawdown": 0.5}},
		{Parameters: ParameterSet{"param": 2}, Metrics: map[string]float64{"profit": 200.0, "drawdown": 0.8}},
		{Parameters: ParameterSet{"param": 3}, Metrics: map[string]float64{"profit": 150.0, "drawdown": 0.3}},
	}

	profitSorter := ResultSorter{Results: results, MetricName: "profit", Maximize: true}
	assert.True(t, profitSorter.Less(1, 0))
	assert.True(t, profitSorter.Less(1, 2))

	drawdownSorter := ResultSorter{Results: results, MetricName: "drawdown", Maximize: false}
	assert.True(t, drawdownSorter.Less(2, 0))
	assert.True(t, drawdownSorter.Less(2, 1))
}

func TestWriteResultsCSV(t *testing.T) {
	results := []*Result{
		{Parameters: ParameterSet{"sizingValue": 2.0}, Metrics: map[string]float64{"profit": 10}, Duration: time.Second},
		{Parameters: ParameterSet{"sizingValue": 5.0}, Metrics: map[string]float64{"profit": 30}, Duration: time.Second},
	}

	var buffer bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buffer, results, MetricProfit, true))

	rows, err := csv.NewReader(&buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Rank", "Duration", "sizingValue", "profit"}, rows[0])
	assert.Equal(t, []string{"1", "1s", "5.0000", "30.0000"}, rows[1])

	// the input order is untouched
	assert.Equal(t, 10.0, results[0].Metrics["profit"])
}

func TestPrintResults(t *testing.T) {
	var buffer bytes.Buffer
	PrintResults(&buffer, nil, MetricProfit, true, 3)
	assert.Equal(t, "No results to display\n", buffer.String())

	buffer.Reset()
	PrintResults(&buffer, []*Result{
		{Parameters: ParameterSet{"leverage": 2.0}, Metrics: map[string]float64{"profit": 12.5}},
	}, MetricProfit, true, 3)
	assert.Contains(t, buffer.String(), "=== Top 1 Results (by profit) ===")
	assert.Contains(t, buffer.String(), "12.5000")
}

func TestFormatParameterSet(t *testing.T) {
	assert.Equal(t, "{leverage: 2, stopLoss.value: 1.5}", FormatParameterSet(ParameterSet{
		"stopLoss.value": 1.5,
		"leverage":       2,
	}))
	assert.Len(t, MergeResults([]*Result{{}}, []*Result{{}, {}}), 3)
}

const rsiStrategy = `{
	"conditions": [{"indicator": "RSI", "operator": "less_than", "value": "30"}],
	"action": "LONG",
	"entryCondition": {"positionSizing": "fixed_percentage", "sizingValue": 2},
	"exitCondition": {
		"stopLoss": {"type": "fixed_percentage", "value": 3},
		"takeProfit": {"type": "fixed_percentage", "value": 6}
	}
}`

func dataset() *core.Dataframe {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 100, 103, 106.5, 104, 100, 95, 99}
	rsi := []float64{50, 25, 40, 45, 50, 25, 40, 50}

	times := make([]time.Time, len(closes))
	for i := range times {
		times[i] = start.AddDate(0, 0, i)
	}

	df := core.NewDataframe("AAPL", times)
	df.SetColumn(core.ColumnClose, closes)
	df.SetColumn("rsi", rsi)
	return df
}

func TestBacktestStrategyEvaluator(t *testing.T) {
	evaluator, err := NewBacktestStrategyEvaluator(dataset(), rsiStrategy, 10000, 1, logger.Nop())
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), ParameterSet{
		"takeProfit.value": 6.0,
		"stopLoss.value":   3.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.Metrics[string(MetricTradeCount)])
	assert.Equal(t, 0.5, result.Metrics[string(MetricWinRate)])
	assert.InDelta(t, 13-10.013, result.Metrics[string(MetricProfit)], 1e-6)

	wide, err := evaluator.Evaluate(context.Background(), ParameterSet{
		"takeProfit.value": 20.0,
		"stopLoss.value":   20.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, wide.Metrics[string(MetricTradeCount)])

	leveraged, err := evaluator.Evaluate(context.Background(), ParameterSet{ParamLeverage: 2.0})
	require.NoError(t, err)
	assert.NotEqual(t, result.Metrics[string(MetricFinalBalance)], leveraged.Metrics[string(MetricFinalBalance)])

	_, err = evaluator.Evaluate(context.Background(), ParameterSet{"exitCondition.trailing.value": 1.0})
	assert.ErrorIs(t, err, ErrUnknownParameter)

	_, err = evaluator.Evaluate(context.Background(), ParameterSet{"sizingValue": "large"})
	var configErr *core.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestBacktestStrategyEvaluator_GridSearch(t *testing.T) {
	evaluator, err := NewBacktestStrategyEvaluator(dataset(), rsiStrategy, 10000, 1, nil)
	require.NoError(t, err)

	parameters, err := ParametersFor(rsiStrategy)
	require.NoError(t, err)
	require.Len(t, parameters, 4)

	gridSearch, err := NewGridSearch(NewConfig().WithParameters(parameters...).WithMaxIterations(20).WithParallelism(4))
	require.NoError(t, err)

	results, err := gridSearch.Optimize(context.Background(), evaluator, MetricReturn, true)
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Metrics[string(MetricReturn)], results[i].Metrics[string(MetricReturn)])
	}

	_, err = NewBacktestStrategyEvaluator(dataset(), `{"conditions": []}`, 10000, 1, nil)
	assert.Error(t, err)
}

func TestParametersFor_ConditionLogic(t *testing.T) {
	twoConditions := `{
		"conditions": [
			{"indicator": "RSI", "operator": "less_than", "value": "30"},
			{"indicator": "Close", "operator": "greater_than", "value": "99"}
		],
		"action": "LONG",
		"entryCondition": {"positionSizing": "fixed_percentage", "sizingValue": 2},
		"exitCondition": {
			"stopLoss": {"type": "fixed_percentage", "value": 1},
			"takeProfit": {"type": "fixed_percentage", "value": 2}
		}
	}`

	parameters, err := ParametersFor(twoConditions)
	require.NoError(t, err)
	require.Len(t, parameters, 5)
	assert.Equal(t, TypeInt, parameters[3].Type)
	assert.Equal(t, "logicalOperator", parameters[4].Name)

	values, err := generateParameterValues(parameters[4])
	require.NoError(t, err)
	assert.Equal(t, []any{"AND", "OR"}, values)

	evaluator, err := NewBacktestStrategyEvaluator(dataset(), twoConditions, 10000, 1, nil)
	require.NoError(t, err)

	strict, err := evaluator.Evaluate(context.Background(), ParameterSet{"logicalOperator": "AND", ParamLeverage: 1})
	require.NoError(t, err)
	loose, err := evaluator.Evaluate(context.Background(), ParameterSet{"logicalOperator": "OR", ParamLeverage: 1})
	require.NoError(t, err)
	// OR also enters on bars where only the close filter holds
	assert.Equal(t, 2.0, strict.Metrics[string(MetricTradeCount)])
	assert.Equal(t, 3.0, loose.Metrics[string(MetricTradeCount)])
}
