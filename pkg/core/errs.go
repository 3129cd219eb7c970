package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset = errors.New("dataset is empty")
	ErrMissingClose = errors.New("dataset has no Close column")
	ErrInvalidCash  = errors.New("initial cash must be positive")
)

// ConfigError reports a strategy configuration that failed validation
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// NewConfigError creates a ConfigError from a formatted message
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// DataError reports a dataset the engine cannot run on
type DataError struct {
	Err error
}

func (e *DataError) Error() string {
	return e.Err.Error()
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// SimulationError reports an unexpected failure while walking the bars
type SimulationError struct {
	Bar int
	Err error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("bar %d: %v", e.Bar, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// FormattingError reports a failure while assembling the result bundle
type FormattingError struct {
	Err error
}

func (e *FormattingError) Error() string {
	return e.Err.Error()
}

func (e *FormattingError) Unwrap() error {
	return e.Err
}
