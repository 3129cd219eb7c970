package risk

import (
	"fmt"
	"math"
	"strconv"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/strategy"
)

// Bar exposes the column values of the bar being evaluated
type Bar interface {
	Value(column string) (float64, bool)
}

// Position is the view of an open position the exit rules need
type Position struct {
	Side       core.Side
	EntryPrice float64
	Highest    float64
	Lowest     float64
}

// ShouldExit evaluates the stop-loss, then the take-profit rule, against the
// current price. The first rule to trigger wins and its reason is returned.
func ShouldExit(exit strategy.ExitCondition, position Position, price float64, bar Bar) (bool, string) {
	if position.Side != core.SideLong && position.Side != core.SideShort {
		return false, ""
	}

	if exit.StopLoss != nil {
		if hit, reason := stopLossHit(*exit.StopLoss, position, price, bar); hit {
			return true, reason
		}
	}

	if exit.TakeProfit != nil {
		if hit, reason := takeProfitHit(*exit.TakeProfit, exit.StopLoss, position, price, bar); hit {
			return true, reason
		}
	}

	return false, ""
}

func stopLossHit(stop strategy.StopLoss, position Position, price float64, bar Bar) (bool, string) {
	long := position.Side == core.SideLong
	entry := position.EntryPrice

	switch stop.Kind {
	case strategy.StopFixedPercentage:
		loss := (price - entry) / entry * 100
		if long {
			loss = -loss
		}
		if loss >= stop.Value {
			return true, fmt.Sprintf("Stop Loss: %s%%", number(stop.Value))
		}

	case strategy.StopFixedDollar:
		loss := price - entry
		if long {
			loss = -loss
		}
		if loss >= stop.Value {
			return true, fmt.Sprintf("Stop Loss: $%s", number(stop.Value))
		}

	case strategy.StopTrailingPercentage:
		var move float64
		if long {
			move = (position.Highest - price) / position.Highest * 100
		} else {
			move = (price - position.Lowest) / position.Lowest * 100
		}
		if move >= stop.Value {
			return true, fmt.Sprintf("Trailing Stop: %s%%", number(stop.Value))
		}

	case strategy.StopTrailingDollar:
		move := price - position.Lowest
		if long {
			move = position.Highest - price
		}
		if move >= stop.Value {
			return true, fmt.Sprintf("Trailing Stop: $%s", number(stop.Value))
		}

	case strategy.StopATR:
		atr, ok := barValue(bar, stop.ATRColumn())
		if !ok || core.IsMissing(atr) {
			return false, ""
		}
		distance := atr * stop.Value
		if (long && price <= entry-distance) || (!long && price >= entry+distance) {
			return true, fmt.Sprintf("ATR Stop: %sx ATR", number(stop.Value))
		}

	case strategy.StopSupportResistance:
		if long && price <= stop.Level {
			return true, fmt.Sprintf("Support Level: $%s", number(stop.Level))
		}
		if !long && price >= stop.Level {
			return true, fmt.Sprintf("Resistance Level: $%s", number(stop.Level))
		}
	}

	return false, ""
}

func takeProfitHit(takeProfit strategy.TakeProfit, stop *strategy.StopLoss, position Position,
	price float64, bar Bar) (bool, string) {

	long := position.Side == core.SideLong
	entry := position.EntryPrice

	switch takeProfit.Kind {
	case strategy.TakeProfitFixedPercentage:
		gain := (price - entry) / entry * 100
		if !long {
			gain = -gain
		}
		if gain >= takeProfit.Value {
			return true, fmt.Sprintf("Take Profit: %s%%", number(takeProfit.Value))
		}

	case strategy.TakeProfitFixedDollar:
		gain := price - entry
		if !long {
			gain = -gain
		}
		if gain >= takeProfit.Value {
			return true, fmt.Sprintf("Take Profit: $%s", number(takeProfit.Value))
		}

	case strategy.TakeProfitRiskReward:
		if stop == nil || stop.Kind != strategy.StopFixedPercentage {
			return false, ""
		}
		target := entry * stop.Value / 100 * takeProfit.RiskReward
		if (long && price >= entry+target) || (!long && price <= entry-target) {
			return true, fmt.Sprintf("Risk:Reward %s:1", number(takeProfit.RiskReward))
		}

	case strategy.TakeProfitIndicator:
		threshold, err := strconv.ParseFloat(takeProfit.IndicatorValue, 64)
		if err != nil || math.IsNaN(threshold) {
			return false, ""
		}
		value, ok := barValue(bar, takeProfit.Indicator.Column())
		if !ok || core.IsMissing(value) {
			return false, ""
		}
		if value > threshold {
			return true, fmt.Sprintf("%s > %s", takeProfit.Indicator, takeProfit.IndicatorValue)
		}
	}

	return false, ""
}

func barValue(bar Bar, column string) (float64, bool) {
	if bar == nil {
		return 0, false
	}
	return bar.Value(column)
}

func number(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
