package stratbench

import (
	"encoding/json"
	"fmt"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/indicator"
	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/raykavin/stratbench/pkg/metric"
	"github.com/raykavin/stratbench/pkg/portfolio"
	"github.com/raykavin/stratbench/pkg/report"
	"github.com/raykavin/stratbench/pkg/signal"
	"github.com/raykavin/stratbench/pkg/strategy"
)

// DefaultLog is the logger used when no WithLogger option is given
var DefaultLog logger.Logger = logger.Nop()

type engine struct {
	log        logger.Logger
	indicators *indicator.Settings
}

// Result bundles the formatted report with the raw simulation data
type Result struct {
	Report     *report.Result
	Outcome    *portfolio.Outcome
	Config     *strategy.Config
	Signals    signal.Series
	TradeStats metric.TradeSummary
}

// Envelope returns the successful response of the run
func (r *Result) Envelope() report.Envelope {
	return report.Success(r.Report)
}

// Run executes a backtest and always returns an envelope; failures of any
// kind are reported through its error message.
func Run(df *core.Dataframe, rawConfig any, initialCash, leverage float64, opts ...Option) (envelope report.Envelope) {
	e := newEngine(opts...)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			e.log.WithError(err).Error("backtest: recovered from panic")
			envelope = report.Failure(err)
		}
	}()

	result, err := e.backtest(df, rawConfig, initialCash, leverage)
	if err != nil {
		e.log.WithError(err).Warn("backtest: run failed")
		return report.Failure(err)
	}
	return result.Envelope()
}

// Backtest validates the inputs, generates the signals, simulates the
// portfolio and formats the outcome.
func Backtest(df *core.Dataframe, rawConfig any, initialCash, leverage float64, opts ...Option) (*Result, error) {
	return newEngine(opts...).backtest(df, rawConfig, initialCash, leverage)
}

func newEngine(opts ...Option) *engine {
	e := &engine{log: DefaultLog}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	return e
}

func (e *engine) backtest(df *core.Dataframe, rawConfig any, initialCash, leverage float64) (*Result, error) {
	if df == nil || df.Len() == 0 {
		return nil, &core.DataError{Err: core.ErrEmptyDataset}
	}
	if initialCash <= 0 {
		return nil, core.NewConfigError("%v", core.ErrInvalidCash)
	}

	config, err := LoadConfig(rawConfig)
	if err != nil {
		return nil, err
	}

	if e.indicators != nil {
		settings := *e.indicators
		settings.ExtraATRPeriods = append(settings.ExtraATRPeriods, ATRPeriods(config)...)
		if err := indicator.Augment(df, settings); err != nil {
			return nil, &core.DataError{Err: err}
		}
		e.log.WithField("columns", df.Columns()).Debug("indicators added")
	}

	log := e.log.WithField("pair", df.Pair)

	signals := signal.Generate(df, config)
	log.Debugf("generated %d %s signals over %d bars", signals.Count(core.SignalFor(config.Action)), config.Action, df.Len())

	outcome, err := portfolio.Simulate(df, signals, portfolio.Settings{
		InitialCash: initialCash,
		Leverage:    leverage,
		Entry:       config.Entry,
		Exit:        config.Exit,
		Log:         log,
	})
	if err != nil {
		return nil, err
	}

	formatted, err := report.Format(outcome)
	if err != nil {
		return nil, err
	}

	log.Infof("backtest finished: %d trades, equity %s, return %s%%",
		len(outcome.Trades), formatted.Stats.EquityFinal, formatted.Stats.Return)

	return &Result{
		Report:     formatted,
		Outcome:    outcome,
		Config:     config,
		Signals:    signals,
		TradeStats: metric.Summarize(df.Pair, outcome.Trades),
	}, nil
}

// LoadConfig resolves a strategy given as JSON text, as a decoded JSON value
// or as a config built in code
func LoadConfig(rawConfig any) (*strategy.Config, error) {
	switch raw := rawConfig.(type) {
	case *strategy.Config:
		if err := raw.Validate(); err != nil {
			return nil, err
		}
		return raw, nil
	case []byte:
		return strategy.Parse(raw)
	case json.RawMessage:
		return strategy.Parse(raw)
	case string:
		return strategy.Parse([]byte(raw))
	default:
		return strategy.Decode(raw)
	}
}

// ATRPeriods lists the ATR windows the strategy reads besides the default
func ATRPeriods(config *strategy.Config) []int {
	var periods []int
	if config.Entry.Sizing == strategy.SizingVolatility {
		periods = append(periods, config.Entry.VolatilityPeriod)
	}
	if stop := config.Exit.StopLoss; stop != nil && stop.Kind == strategy.StopATR {
		periods = append(periods, stop.ATRPeriod)
	}
	return periods
}
