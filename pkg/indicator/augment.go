package indicator

import (
	"fmt"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/samber/lo"
)

// Column names produced by Augment
const (
	ColumnRSI       = "rsi"
	ColumnMACDLine  = "macd_line"
	ColumnSMA       = "sma_20"
	ColumnEMA       = "ema_20"
	ColumnBBMiddle  = "bb_middle"
	ColumnStochK    = "stoch_k"
	ColumnWilliamsR = "williams_r"
	ColumnATR       = "atr"
)

// Settings holds the periods used by Augment
type Settings struct {
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	MAPeriod        int
	BBPeriod        int
	BBDeviation     float64
	StochK          int
	StochSlowK      int
	StochSlowD      int
	WilliamsPeriod  int
	ATRPeriod       int
	ExtraATRPeriods []int // each adds an atr_<period> column
}

func DefaultSettings() Settings {
	return Settings{
		RSIPeriod:      14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		MAPeriod:       20,
		BBPeriod:       20,
		BBDeviation:    2,
		StochK:         14,
		StochSlowK:     3,
		StochSlowD:     3,
		WilliamsPeriod: 14,
		ATRPeriod:      14,
	}
}

// ATRColumn names the ATR column of a period
func ATRColumn(period int) string {
	return fmt.Sprintf("atr_%d", period)
}

// Augment appends the indicator columns the strategy rules read. Columns
// needing High and Low are only added when both are present.
func Augment(df *core.Dataframe, settings Settings) error {
	if df == nil || df.Len() == 0 {
		return core.ErrEmptyDataset
	}
	if !df.HasColumn(core.ColumnClose) {
		return core.ErrMissingClose
	}

	closes := df.Close.Values()

	df.SetColumn(ColumnRSI, RSI(closes, settings.RSIPeriod))

	line, _, _ := MACD(closes, settings.MACDFast, settings.MACDSlow, settings.MACDSignal)
	df.SetColumn(ColumnMACDLine, line)

	df.SetColumn(ColumnSMA, SMA(closes, settings.MAPeriod))
	df.SetColumn(ColumnEMA, EMA(closes, settings.MAPeriod))

	_, middle, _ := BB(closes, settings.BBPeriod, settings.BBDeviation, TypeSMA)
	df.SetColumn(ColumnBBMiddle, middle)

	if !df.HasColumn(core.ColumnHigh) || !df.HasColumn(core.ColumnLow) {
		return nil
	}

	highs, lows := df.High.Values(), df.Low.Values()

	k, _ := Stoch(highs, lows, closes, settings.StochK, settings.StochSlowK, settings.StochSlowD)
	df.SetColumn(ColumnStochK, k)
	df.SetColumn(ColumnWilliamsR, WilliamsR(highs, lows, closes, settings.WilliamsPeriod))

	atr := ATR(highs, lows, closes, settings.ATRPeriod)
	df.SetColumn(ColumnATR, atr)
	df.SetColumn(ATRColumn(settings.ATRPeriod), atr)

	for _, period := range lo.Uniq(settings.ExtraATRPeriods) {
		if period <= 0 || period == settings.ATRPeriod {
			continue
		}
		df.SetColumn(ATRColumn(period), ATR(highs, lows, closes, period))
	}

	return nil
}
