package optimizer

import (
	"context"
	"fmt"
	"math"
)

// GridSearch evaluates every combination of parameter values
type GridSearch struct {
	parameters    []Parameter
	maxIterations int
	runner        runner
}

// NewGridSearch creates a new grid search optimizer
func NewGridSearch(config *Config) (*GridSearch, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if len(config.Parameters) == 0 {
		return nil, fmt.Errorf("at least one parameter must be provided")
	}

	return &GridSearch{
		parameters:    config.Parameters,
		maxIterations: config.MaxIterations,
		runner:        newRunner(config),
	}, nil
}

// SetParameters sets the parameters to be optimized
func (g *GridSearch) SetParameters(params []Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	g.parameters = params
	return nil
}

// SetMaxIterations sets the maximum number of iterations
func (g *GridSearch) SetMaxIterations(iterations int) {
	g.maxIterations = iterations
}

// SetParallelism sets the number of parallel evaluations
func (g *GridSearch) SetParallelism(n int) {
	g.runner.parallelism = max(n, 1)
}

// Optimize runs the grid search optimization process
func (g *GridSearch) Optimize(
	ctx context.Context,
	evaluator Evaluator,
	targetMetric MetricName,
	maximize bool,
) ([]*Result, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	parameterSets, err := g.generateParameterSets()
	if err != nil {
		return nil, err
	}

	if g.maxIterations > 0 && len(parameterSets) > g.maxIterations {
		g.runner.logf("limiting parameter combinations from %d to %d", len(parameterSets), g.maxIterations)
		parameterSets = parameterSets[:g.maxIterations]
	}

	g.runner.logf("starting grid search with %d parameter combinations", len(parameterSets))

	results, err := g.runner.run(ctx, evaluator, parameterSets, targetMetric, maximize)
	if err != nil {
		return nil, err
	}

	g.runner.logf("grid search completed with %d results", len(results))
	return results, nil
}

// generateParameterSets creates all combinations of parameter values
func (g *GridSearch) generateParameterSets() ([]ParameterSet, error) {
	parameterSets := []ParameterSet{make(ParameterSet)}

	for _, param := range g.parameters {
		values, err := generateParameterValues(param)
		if err != nil {
			return nil, err
		}

		var newSets []ParameterSet
		for _, set := range parameterSets {
			for _, value := range values {
				newSet := make(ParameterSet, len(set)+1)
				for k, v := range set {
					newSet[k] = v
				}
				newSet[param.Name] = value
				newSets = append(newSets, newSet)
			}
		}
		parameterSets = newSets
	}

	return parameterSets, nil
}

// generateParameterValues lists the grid values of a parameter
func generateParameterValues(param Parameter) ([]any, error) {
	switch param.Type {
	case TypeInt:
		return generateIntValues(param)
	case TypeFloat:
		return generateFloatValues(param)
	case TypeCategorical:
		if len(param.Options) == 0 {
			return nil, fmt.Errorf("parameter %s of type %s must have options", param.Name, param.Type)
		}
		return param.Options, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func generateIntValues(param Parameter) ([]any, error) {
	min, ok := param.Min.(int)
	if !ok {
		return nil, fmt.Errorf("parameter %s min value must be an integer", param.Name)
	}

	max, ok := param.Max.(int)
	if !ok {
		return nil, fmt.Errorf("parameter %s max value must be an integer", param.Name)
	}

	step, ok := param.Step.(int)
	if !ok {
		return nil, fmt.Errorf("parameter %s step value must be an integer", param.Name)
	}

	if step <= 0 {
		return nil, fmt.Errorf("parameter %s step value must be positive", param.Name)
	}

	var values []any
	for i := min; i <= max; i += step {
		values = append(values, i)
	}

	return values, nil
}

// generateFloatValues steps by multiples of step so the values do not drift
func generateFloatValues(param Parameter) ([]any, error) {
	min, ok := param.Min.(float64)
	if !ok {
		return nil, fmt.Errorf("parameter %s min value must be a float", param.Name)
	}

	max, ok := param.Max.(float64)
	if !ok {
		return nil, fmt.Errorf("parameter %s max value must be a float", param.Name)
	}

	step, ok := param.Step.(float64)
	if !ok {
		return nil, fmt.Errorf("parameter %s step value must be a float", param.Name)
	}

	if step <= 0 {
		return nil, fmt.Errorf("parameter %s step value must be positive", param.Name)
	}

	var values []any
	for i := 0; ; i++ {
		value := min + float64(i)*step
		if value > max+step*1e-9 {
			break
		}
		values = append(values, math.Round(value*1e9)/1e9)
	}

	return values, nil
}
