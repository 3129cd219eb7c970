package signal

import (
	"errors"
	"fmt"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/strategy"
)

var (
	ErrMissingColumn   = errors.New("column not in dataset")
	ErrInvalidValue    = errors.New("condition value is not numeric")
	ErrUnknownOperator = errors.New("unknown operator")
)

// Series holds one signal per dataframe row
type Series []core.Signal

// Count returns how many bars carry the given signal
func (s Series) Count(signal core.Signal) int {
	count := 0
	for _, value := range s {
		if value == signal {
			count++
		}
	}
	return count
}

// Generate evaluates every condition over the dataframe, combines them with the
// configured logical operator and emits the configured action where they hold.
// Conditions that cannot be evaluated are skipped.
func Generate(df *core.Dataframe, config *strategy.Config) Series {
	size := df.Len()
	signals := make(Series, size)
	for i := range signals {
		signals[i] = core.SignalHold
	}

	var usable [][]bool
	for _, condition := range config.Conditions {
		values, err := Evaluate(df, condition)
		if err != nil {
			continue
		}
		usable = append(usable, values)
	}

	if len(usable) == 0 {
		return signals
	}

	action := core.SignalFor(config.Action)
	for i := 0; i < size; i++ {
		if combine(usable, i, config.LogicalOperator) {
			signals[i] = action
		}
	}

	return signals
}

// Evaluate computes the boolean series of a single condition. Missing values
// evaluate to false.
func Evaluate(df *core.Dataframe, condition strategy.Condition) ([]bool, error) {
	column := condition.Indicator.Column()
	series, ok := df.Column(column)
	if !ok {
		return nil, fmt.Errorf("%s: %w", column, ErrMissingColumn)
	}

	result := make([]bool, df.Len())

	switch condition.Operator {
	case strategy.OperatorCrossesAbove, strategy.OperatorCrossesBelow:
		compareColumn := condition.CompareIndicator.Column()
		reference, ok := df.Column(compareColumn)
		if !ok {
			return nil, fmt.Errorf("%s: %w", compareColumn, ErrMissingColumn)
		}

		for i := range result {
			if condition.Operator == strategy.OperatorCrossesAbove {
				result[i] = series.CrossedAbove(reference, i)
			} else {
				result[i] = series.CrossedBelow(reference, i)
			}
		}

	case strategy.OperatorBetween, strategy.OperatorOutside:
		lower, upper, ok := condition.Bounds()
		if !ok {
			return nil, fmt.Errorf("%s: %w", condition.Value, ErrInvalidValue)
		}

		for i := range result {
			value, ok := at(series, i)
			if !ok {
				continue
			}
			if condition.Operator == strategy.OperatorBetween {
				result[i] = value >= lower && value <= upper
			} else {
				result[i] = value < lower || value > upper
			}
		}

	case strategy.OperatorLessThan, strategy.OperatorGreaterThan,
		strategy.OperatorEquals, strategy.OperatorNotEquals:
		threshold, ok := condition.Threshold()
		if !ok {
			return nil, fmt.Errorf("%s: %w", condition.Value, ErrInvalidValue)
		}

		for i := range result {
			value, ok := at(series, i)
			if !ok {
				continue
			}
			result[i] = compare(condition.Operator, value, threshold)
		}

	default:
		return nil, fmt.Errorf("%s: %w", condition.Operator, ErrUnknownOperator)
	}

	return result, nil
}

func compare(operator strategy.Operator, value, threshold float64) bool {
	switch operator {
	case strategy.OperatorLessThan:
		return value < threshold
	case strategy.OperatorGreaterThan:
		return value > threshold
	case strategy.OperatorEquals:
		return value == threshold
	case strategy.OperatorNotEquals:
		return value != threshold
	}
	return false
}

func combine(conditions [][]bool, index int, logic strategy.Logic) bool {
	if logic == strategy.LogicOr {
		for _, values := range conditions {
			if values[index] {
				return true
			}
		}
		return false
	}

	for _, values := range conditions {
		if !values[index] {
			return false
		}
	}
	return true
}

func at(values core.Series[float64], index int) (float64, bool) {
	if index >= len(values) || core.IsMissing(values[index]) {
		return 0, false
	}
	return values[index], true
}
