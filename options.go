package stratbench

import (
	"github.com/raykavin/stratbench/pkg/indicator"
	"github.com/raykavin/stratbench/pkg/logger"
)

// Option is a functional option for configuring a backtest run
type Option func(*engine)

// WithLogger sets the logger that receives run and trade events
func WithLogger(log logger.Logger) Option {
	return func(e *engine) {
		e.log = log
	}
}

// WithIndicators computes the indicator columns on the dataset before the
// signals are generated. ATR windows read by the strategy are added to
// settings automatically.
func WithIndicators(settings indicator.Settings) Option {
	return func(e *engine) {
		e.indicators = &settings
	}
}

// WithDefaultIndicators is WithIndicators using indicator.DefaultSettings
func WithDefaultIndicators() Option {
	return WithIndicators(indicator.DefaultSettings())
}
