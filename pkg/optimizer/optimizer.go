package optimizer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raykavin/stratbench/pkg/logger"
)

// Parameter represents a strategy value swept by an optimizer
type Parameter struct {
	Name        string // Dotted path into the strategy, or "leverage"
	Description string
	Default     any
	Min         any
	Max         any
	Step        any
	Options     []any // Possible values for categorical parameters
	Type        ParameterType
}

// ParameterType defines the data type of a parameter
type ParameterType string

const (
	TypeInt         ParameterType = "int"
	TypeFloat       ParameterType = "float"
	TypeCategorical ParameterType = "categorical"
)

// ParameterSet represents a collection of parameters with specific values
type ParameterSet map[string]any

// Result represents the outcome of a single evaluation
type Result struct {
	Parameters ParameterSet
	Metrics    map[string]float64
	Duration   time.Duration
}

// MetricName defines standard metric names for optimization
type MetricName string

const (
	MetricProfit       MetricName = "profit"
	MetricReturn       MetricName = "return_pct"
	MetricFinalBalance MetricName = "final_balance"
	MetricWinRate      MetricName = "win_rate"
	MetricPayoff       MetricName = "payoff"
	MetricProfitFactor MetricName = "profit_factor"
	MetricSQN          MetricName = "sqn"
	MetricDrawdown     MetricName = "drawdown"
	MetricSharpeRatio  MetricName = "sharpe_ratio"
	MetricTradeCount   MetricName = "trade_count"
	MetricMarginCalls  MetricName = "margin_calls"
)

// Evaluator defines the interface for evaluating a parameter set
type Evaluator interface {
	// Evaluate runs a backtest with the given parameters and returns performance metrics
	Evaluate(ctx context.Context, params ParameterSet) (*Result, error)
}

// Optimizer defines the interface for optimization algorithms
type Optimizer interface {
	// Optimize runs the optimization process and returns the results best first
	Optimize(ctx context.Context, evaluator Evaluator, targetMetric MetricName, maximize bool) ([]*Result, error)
	SetParameters(params []Parameter) error
	SetMaxIterations(iterations int)
	SetParallelism(n int)
}

// Config holds configuration for the optimization process
type Config struct {
	Parameters    []Parameter
	MaxIterations int
	Parallelism   int
	Logger        logger.Logger
	TargetMetric  MetricName
	Maximize      bool
	TopN          int

	// Seed makes random search reproducible when non-zero
	Seed int64

	// Progress receives a progress bar when set
	Progress io.Writer
}

// NewConfig creates a default configuration
func NewConfig() *Config {
	return &Config{
		Parameters:    []Parameter{},
		MaxIterations: 100,
		Parallelism:   1,
		TargetMetric:  MetricProfit,
		Maximize:      true,
		TopN:          5,
	}
}

// WithParameters adds parameters to the configuration
func (c *Config) WithParameters(params ...Parameter) *Config {
	c.Parameters = append(c.Parameters, params...)
	return c
}

// WithMaxIterations sets the maximum number of iterations
func (c *Config) WithMaxIterations(iterations int) *Config {
	c.MaxIterations = iterations
	return c
}

// WithParallelism sets the number of parallel evaluations
func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

// WithLogger sets the logger
func (c *Config) WithLogger(logger logger.Logger) *Config {
	c.Logger = logger
	return c
}

// WithTargetMetric sets the target metric to optimize
func (c *Config) WithTargetMetric(metric MetricName, maximize bool) *Config {
	c.TargetMetric = metric
	c.Maximize = maximize
	return c
}

// WithTopN sets the number of top results to return
func (c *Config) WithTopN(n int) *Config {
	c.TopN = n
	return c
}

// WithSeed fixes the random search seed
func (c *Config) WithSeed(seed int64) *Config {
	c.Seed = seed
	return c
}

// WithProgress renders a progress bar to w
func (c *Config) WithProgress(w io.Writer) *Config {
	c.Progress = w
	return c
}

// ValidateParameterSet checks if a parameter set contains all required parameters
// with values of the correct type
func ValidateParameterSet(params ParameterSet, definitions []Parameter) error {
	for _, def := range definitions {
		value, exists := params[def.Name]
		if !exists {
			return fmt.Errorf("missing parameter: %s", def.Name)
		}

		switch def.Type {
		case TypeInt:
			if _, ok := value.(int); !ok {
				return fmt.Errorf("parameter %s must be an integer", def.Name)
			}
		case TypeFloat:
			if _, ok := value.(float64); !ok {
				return fmt.Errorf("parameter %s must be a float", def.Name)
			}
		case TypeCategorical:
			found := false
			for _, option := range def.Options {
				if option == value {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("parameter %s has invalid value", def.Name)
			}
		}
	}
	return nil
}

// ResultSorter sorts optimization results by a specific metric
type ResultSorter struct {
	Results    []*Result
	MetricName string
	Maximize   bool
}

func (s ResultSorter) Len() int {
	return len(s.Results)
}

func (s ResultSorter) Swap(i, j int) {
	s.Results[i], s.Results[j] = s.Results[j], s.Results[i]
}

// Less compares two results based on the target metric
func (s ResultSorter) Less(i, j int) bool {
	valueI := s.Results[i].Metrics[s.MetricName]
	valueJ := s.Results[j].Metrics[s.MetricName]

	if s.Maximize {
		return valueI > valueJ
	}
	return valueI < valueJ
}
