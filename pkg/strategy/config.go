package strategy

import (
	"strconv"
	"strings"

	"github.com/raykavin/stratbench/pkg/core"
)

// Indicator names a dataset column a condition reads from
type Indicator string

const (
	IndicatorRSI            Indicator = "RSI"
	IndicatorMACD           Indicator = "MACD"
	IndicatorClose          Indicator = "Close"
	IndicatorSMA            Indicator = "SMA"
	IndicatorEMA            Indicator = "EMA"
	IndicatorBollingerBands Indicator = "Bollinger_Bands"
	IndicatorStochastic     Indicator = "Stochastic"
	IndicatorWilliamsR      Indicator = "Williams_R"
	IndicatorATR            Indicator = "ATR"
	IndicatorVolume         Indicator = "Volume"
)

var indicatorColumns = map[Indicator]string{
	IndicatorRSI:            "rsi",
	IndicatorMACD:           "macd_line",
	IndicatorSMA:            "sma_20",
	IndicatorEMA:            "ema_20",
	IndicatorBollingerBands: "bb_middle",
	IndicatorStochastic:     "stoch_k",
	IndicatorWilliamsR:      "williams_r",
	IndicatorATR:            "atr",
	IndicatorVolume:         core.ColumnVolume,
	IndicatorClose:          core.ColumnClose,
}

// Valid reports whether the indicator belongs to the recognised set
func (i Indicator) Valid() bool {
	_, ok := indicatorColumns[i]
	return ok
}

// Column returns the dataset column for the indicator. Lookup ignores case
// and unknown names fall back to Close.
func (i Indicator) Column() string {
	if column, ok := indicatorColumns[i]; ok {
		return column
	}
	for indicator, column := range indicatorColumns {
		if strings.EqualFold(string(indicator), string(i)) {
			return column
		}
	}
	return core.ColumnClose
}

// Operator is the comparison a condition applies
type Operator string

const (
	OperatorLessThan     Operator = "less_than"
	OperatorGreaterThan  Operator = "greater_than"
	OperatorEquals       Operator = "equals"
	OperatorNotEquals    Operator = "not_equals"
	OperatorCrossesAbove Operator = "crosses_above"
	OperatorCrossesBelow Operator = "crosses_below"
	OperatorBetween      Operator = "between"
	OperatorOutside      Operator = "outside"
)

// Valid reports whether the operator belongs to the recognised set
func (o Operator) Valid() bool {
	switch o {
	case OperatorLessThan, OperatorGreaterThan, OperatorEquals, OperatorNotEquals,
		OperatorCrossesAbove, OperatorCrossesBelow, OperatorBetween, OperatorOutside:
		return true
	}
	return false
}

// Logic combines per-condition results
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// SizingPolicy selects the position-size formula
type SizingPolicy string

const (
	SizingFixedPercentage SizingPolicy = "fixed_percentage"
	SizingFixedDollar     SizingPolicy = "fixed_dollar"
	SizingKelly           SizingPolicy = "kelly_criterion"
	SizingRiskBased       SizingPolicy = "risk_based"
	SizingVolatility      SizingPolicy = "volatility_based"
)

// Valid reports whether the policy belongs to the recognised set
func (p SizingPolicy) Valid() bool {
	switch p {
	case SizingFixedPercentage, SizingFixedDollar, SizingKelly, SizingRiskBased, SizingVolatility:
		return true
	}
	return false
}

// StopKind selects the stop-loss rule
type StopKind string

const (
	StopFixedPercentage    StopKind = "fixed_percentage"
	StopFixedDollar        StopKind = "fixed_dollar"
	StopTrailingPercentage StopKind = "trailing_percentage"
	StopTrailingDollar     StopKind = "trailing_dollar"
	StopATR                StopKind = "atr_based"
	StopSupportResistance  StopKind = "support_resistance"
)

// Valid reports whether the stop kind belongs to the recognised set
func (k StopKind) Valid() bool {
	switch k {
	case StopFixedPercentage, StopFixedDollar, StopTrailingPercentage, StopTrailingDollar,
		StopATR, StopSupportResistance:
		return true
	}
	return false
}

// TakeProfitKind selects the take-profit rule
type TakeProfitKind string

const (
	TakeProfitFixedPercentage TakeProfitKind = "fixed_percentage"
	TakeProfitFixedDollar     TakeProfitKind = "fixed_dollar"
	TakeProfitRiskReward      TakeProfitKind = "risk_reward_ratio"
	TakeProfitIndicator       TakeProfitKind = "indicator_based"
)

// Valid reports whether the take-profit kind belongs to the recognised set
func (k TakeProfitKind) Valid() bool {
	switch k {
	case TakeProfitFixedPercentage, TakeProfitFixedDollar, TakeProfitRiskReward, TakeProfitIndicator:
		return true
	}
	return false
}

// Defaults applied while parsing optional fields
const (
	DefaultATRPeriod        = 14
	DefaultVolatilityPeriod = 20
	DefaultRiskPerTrade     = 1.0
	DefaultIndicatorValue   = "70"
)

// Config is a parsed strategy with every policy resolved to its enum
type Config struct {
	Conditions      []Condition
	LogicalOperator Logic
	Action          core.Side
	Entry           EntryCondition
	Exit            ExitCondition
}

// Condition is one rule evaluated on every bar
type Condition struct {
	Indicator        Indicator
	Operator         Operator
	Value            string
	CompareIndicator Indicator
	CompareValue     string
}

// Threshold parses the condition literal
func (c Condition) Threshold() (float64, bool) {
	return parseNumber(c.Value)
}

// Bounds returns the [min, max] band used by range operators
func (c Condition) Bounds() (float64, float64, bool) {
	lower, ok := parseNumber(c.Value)
	if !ok {
		return 0, 0, false
	}

	upper := lower
	if c.CompareValue != "" {
		if upper, ok = parseNumber(c.CompareValue); !ok {
			return 0, 0, false
		}
	}

	return lower, upper, true
}

// EntryCondition controls how much cash an entry commits
type EntryCondition struct {
	Sizing           SizingPolicy
	SizingValue      float64
	MaxPositionSize  *float64
	RiskPerTrade     float64
	VolatilityPeriod int
}

// VolatilityColumn is the ATR column used by volatility-based sizing
func (e EntryCondition) VolatilityColumn() string {
	return ATRColumn(e.VolatilityPeriod)
}

// ExitCondition holds the optional stop-loss and take-profit rules
type ExitCondition struct {
	StopLoss   *StopLoss
	TakeProfit *TakeProfit
}

// StopLoss is a resolved stop-loss rule
type StopLoss struct {
	Kind      StopKind
	Value     float64
	ATRPeriod int
	Level     float64
}

// ATRColumn is the column read by ATR stops
func (s StopLoss) ATRColumn() string {
	return ATRColumn(s.ATRPeriod)
}

// TakeProfit is a resolved take-profit rule
type TakeProfit struct {
	Kind           TakeProfitKind
	Value          float64
	RiskReward     float64
	Indicator      Indicator
	IndicatorValue string
}

// ATRColumn returns the dataset column holding ATR for period
func ATRColumn(period int) string {
	return "atr_" + strconv.Itoa(period)
}

func parseNumber(value string) (float64, bool) {
	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return number, true
}
