package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/raykavin/stratbench/pkg/risk"
	"github.com/raykavin/stratbench/pkg/signal"
	"github.com/raykavin/stratbench/pkg/strategy"
)

const (
	MinLeverage = 1.0
	MaxLeverage = 10.0

	// cashBuffer is the share of available cash an entry may commit
	cashBuffer = 0.95
)

// Settings configures a simulation run
type Settings struct {
	InitialCash float64
	Leverage    float64
	Entry       strategy.EntryCondition
	Exit        strategy.ExitCondition
	Log         logger.Logger
}

// Outcome is the raw product of a simulation run
type Outcome struct {
	InitialCash float64
	Leverage    float64
	EquityCurve []float64
	Dates       []time.Time
	Trades      []Trade

	// ClosedOut is set when a position was still open after the last bar and
	// the curve carries one extra terminal point.
	ClosedOut bool
}

// FinalEquity returns the last point of the equity curve
func (o *Outcome) FinalEquity() float64 {
	if len(o.EquityCurve) == 0 {
		return 0
	}
	return o.EquityCurve[len(o.EquityCurve)-1]
}

// Return returns the total return in percent of the initial cash
func (o *Outcome) Return() float64 {
	return (o.FinalEquity() - o.InitialCash) / o.InitialCash * 100
}

// ClampLeverage bounds leverage to the supported range
func ClampLeverage(leverage float64) float64 {
	if math.IsNaN(leverage) {
		return MinLeverage
	}
	return math.Min(math.Max(leverage, MinLeverage), MaxLeverage)
}

// state is everything a run mutates, threaded through the step functions
type state struct {
	cash      float64
	position  Position
	lastPrice float64
	trades    []Trade
	equity    []float64
	settings  Settings
	leverage  float64
	dataframe *core.Dataframe
	barIndex  int
	closedOut bool
}

// Simulate walks the dataframe bar by bar, trading on the signal series under
// the sizing and exit policies of settings.
func Simulate(df *core.Dataframe, signals signal.Series, settings Settings) (outcome *Outcome, err error) {
	if settings.InitialCash <= 0 || math.IsNaN(settings.InitialCash) {
		return nil, core.NewConfigError("%v", core.ErrInvalidCash)
	}
	if df == nil || df.Len() == 0 {
		return nil, &core.DataError{Err: core.ErrEmptyDataset}
	}
	if !df.HasColumn(core.ColumnClose) {
		return nil, &core.DataError{Err: core.ErrMissingClose}
	}
	if len(signals) != df.Len() {
		return nil, &core.DataError{Err: fmt.Errorf("signal series has %d bars, dataset has %d", len(signals), df.Len())}
	}

	s := &state{
		cash:      settings.InitialCash,
		settings:  settings,
		leverage:  ClampLeverage(settings.Leverage),
		dataframe: df,
		equity:    make([]float64, 0, df.Len()+1),
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = &core.SimulationError{Bar: s.barIndex, Err: fmt.Errorf("%v", r)}
		}
	}()

	for i := 0; i < df.Len(); i++ {
		s.barIndex = i
		s.step(i, signals[i])
	}

	s.closeOut()

	dates := make([]time.Time, len(df.Time), len(df.Time)+1)
	copy(dates, df.Time)
	if s.closedOut {
		dates = append(dates, df.Time[len(df.Time)-1])
	}

	return &Outcome{
		InitialCash: settings.InitialCash,
		Leverage:    s.leverage,
		EquityCurve: s.equity,
		Dates:       dates,
		Trades:      s.trades,
		ClosedOut:   s.closedOut,
	}, nil
}

func (s *state) step(index int, sig core.Signal) {
	price := s.dataframe.Close[index]
	if !core.IsValidPrice(price) {
		s.record(s.markToMarket(s.lastPrice))
		return
	}

	bar := s.dataframe.Row(index)
	at := s.dataframe.Time[index]

	if !s.position.Open() {
		if side := sig.Side(); side != core.SideFlat && s.cash > 0 {
			s.enter(side, price, at, bar)
		}
	} else {
		s.position.Track(price)
		if exit, reason := risk.ShouldExit(s.settings.Exit, s.position.view(), price, bar); exit {
			s.close(price, at, reason, false)
		}
	}

	equity := s.markToMarket(price)
	if s.position.Open() && equity <= 0 {
		s.close(price, at, "", true)
		equity = 0
	}

	s.lastPrice = price
	s.record(equity)
}

func (s *state) enter(side core.Side, price float64, at time.Time, bar core.Row) {
	volatility := math.NaN()
	if s.settings.Entry.Sizing == strategy.SizingVolatility {
		if value, ok := bar.Value(s.settings.Entry.VolatilityColumn()); ok {
			volatility = value
		}
	}

	base := risk.PositionSize(s.settings.Entry, s.cash, price, volatility)
	base = math.Min(base, s.cash*cashBuffer)
	if base <= 0 {
		return
	}

	exposure := base * s.leverage
	shares := exposure / price
	if side == core.SideShort {
		shares = -shares
	}

	s.position = Position{
		Side:       side,
		EntryPrice: price,
		EntryTime:  at,
		Shares:     shares,
		Highest:    price,
		Lowest:     price,
		Base:       base,
		Exposure:   exposure,
	}

	if side == core.SideLong {
		s.cash -= base
	}

	s.trades = append(s.trades, Trade{
		Time:      at,
		Type:      entryType(side),
		Side:      side,
		Price:     price,
		Portfolio: s.position.Equity(s.cash, price),
		Leverage:  s.leverage,
		Size:      base,
	})

	s.debugf("%s %s at %.2f, size %.2f, exposure %.2f", at.Format(time.DateTime), side, price, base, exposure)
}

// close realises the position at price. A close that leaves no cash is
// recorded as a margin call and floors the account at zero.
func (s *state) close(price float64, at time.Time, reason string, forced bool) {
	position := s.position
	pnl := position.PnL(price)

	s.cash += position.Release(price)
	tradeType := exitType(position.Side)
	if forced || s.cash <= 0 {
		tradeType = marginCallType(position.Side)
		s.cash = 0
		reason = ""
	}

	s.trades = append(s.trades, Trade{
		Time:       at,
		Type:       tradeType,
		Side:       position.Side,
		Price:      price,
		Portfolio:  s.cash,
		PnL:        pnl,
		PnLPercent: position.PnLPercent(price, s.leverage),
		Leverage:   s.leverage,
		Reason:     reason,
	})

	s.position = Position{}

	if tradeType == marginCallType(position.Side) {
		s.warnf("%s %s at %.2f, pnl %.2f", at.Format(time.DateTime), tradeType, price, pnl)
		return
	}
	s.debugf("%s %s at %.2f, pnl %.2f (%s)", at.Format(time.DateTime), tradeType, price, pnl, reason)
}

func (s *state) closeOut() {
	if !s.position.Open() {
		return
	}

	last := s.dataframe.Time[len(s.dataframe.Time)-1]
	s.close(s.lastPrice, last, ReasonDataFinished, false)
	s.closedOut = true
	s.record(s.cash)
}

func (s *state) markToMarket(price float64) float64 {
	if !s.position.Open() {
		return s.cash
	}
	return s.position.Equity(s.cash, price)
}

func (s *state) record(equity float64) {
	if math.IsNaN(equity) || equity < 0 {
		equity = 0
	}
	s.equity = append(s.equity, equity)
}

func (s *state) debugf(format string, args ...any) {
	if s.settings.Log != nil {
		s.settings.Log.Debugf(format, args...)
	}
}

func (s *state) warnf(format string, args ...any) {
	if s.settings.Log != nil {
		s.settings.Log.Warnf(format, args...)
	}
}
