package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RandomSearch evaluates randomly drawn parameter sets
type RandomSearch struct {
	parameters    []Parameter
	maxIterations int
	runner        runner
	rng           *rand.Rand
}

// NewRandomSearch creates a new random search optimizer. Config.Seed fixes
// the draws; zero seeds from the clock.
func NewRandomSearch(config *Config) (*RandomSearch, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if len(config.Parameters) == 0 {
		return nil, fmt.Errorf("at least one parameter must be provided")
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomSearch{
		parameters:    config.Parameters,
		maxIterations: config.MaxIterations,
		runner:        newRunner(config),
		rng:           rand.New(rand.NewSource(seed)),
	}, nil
}

// SetParameters sets the parameters to be optimized
func (r *RandomSearch) SetParameters(params []Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	r.parameters = params
	return nil
}

// SetMaxIterations sets the maximum number of iterations
func (r *RandomSearch) SetMaxIterations(iterations int) {
	r.maxIterations = iterations
}

// SetParallelism sets the number of parallel evaluations
func (r *RandomSearch) SetParallelism(n int) {
	r.runner.parallelism = max(n, 1)
}

// Optimize runs the random search optimization process
func (r *RandomSearch) Optimize(
	ctx context.Context,
	evaluator Evaluator,
	targetMetric MetricName,
	maximize bool,
) ([]*Result, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	parameterSets := r.generateRandomParameterSets()

	r.runner.logf("starting random search with %d iterations", len(parameterSets))

	results, err := r.runner.run(ctx, evaluator, parameterSets, targetMetric, maximize)
	if err != nil {
		return nil, err
	}

	r.runner.logf("random search completed with %d results", len(results))
	return results, nil
}

func (r *RandomSearch) generateRandomParameterSets() []ParameterSet {
	parameterSets := make([]ParameterSet, r.maxIterations)

	for i := 0; i < r.maxIterations; i++ {
		paramSet := make(ParameterSet, len(r.parameters))
		for _, param := range r.parameters {
			paramSet[param.Name] = r.generateRandomValue(param)
		}
		parameterSets[i] = paramSet
	}

	return parameterSets
}

// generateRandomValue draws a value within the parameter range, falling back
// to its default when the range is unusable.
func (r *RandomSearch) generateRandomValue(param Parameter) any {
	switch param.Type {
	case TypeInt:
		return r.generateRandomInt(param)
	case TypeFloat:
		return r.generateRandomFloat(param)
	case TypeCategorical:
		return r.generateRandomOption(param)
	default:
		return param.Default
	}
}

func (r *RandomSearch) generateRandomInt(param Parameter) int {
	min, ok := param.Min.(int)
	if !ok {
		if def, ok := param.Default.(int); ok {
			return def
		}
		return 0
	}

	max, ok := param.Max.(int)
	if !ok || min >= max {
		return min
	}

	return min + r.rng.Intn(max-min+1)
}

func (r *RandomSearch) generateRandomFloat(param Parameter) float64 {
	min, ok := param.Min.(float64)
	if !ok {
		if def, ok := param.Default.(float64); ok {
			return def
		}
		return 0.0
	}

	max, ok := param.Max.(float64)
	if !ok || min >= max {
		return min
	}

	return min + r.rng.Float64()*(max-min)
}

func (r *RandomSearch) generateRandomOption(param Parameter) any {
	if len(param.Options) == 0 {
		return param.Default
	}
	return param.Options[r.rng.Intn(len(param.Options))]
}
