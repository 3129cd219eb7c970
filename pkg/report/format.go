package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/portfolio"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"

	// Blank marks a trade column that does not apply
	Blank = "—"
)

// Stats is the summary block of a run
type Stats struct {
	Start       string `json:"Start"`
	End         string `json:"End"`
	EquityFinal string `json:"Equity Final [$]"`
	Return      string `json:"Return [%]"`
	Trades      int    `json:"# Trades"`
}

// PlotData carries the equity curve and its timestamps
type PlotData struct {
	EquityCurve []float64 `json:"equity_curve"`
	Dates       []string  `json:"dates"`
}

// TradeRow is the display form of a trade
type TradeRow struct {
	Date         string `json:"Date"`
	Type         string `json:"Type"`
	Price        string `json:"Price"`
	Portfolio    string `json:"Portfolio"`
	PnL          string `json:"P&L"`
	Leverage     string `json:"Leverage"`
	PositionSize string `json:"Position Size"`
	ExitReason   string `json:"Exit Reason,omitempty"`
}

// Result is the formatted output of a successful run
type Result struct {
	Stats    Stats      `json:"stats"`
	PlotData PlotData   `json:"plot_data"`
	Trades   []TradeRow `json:"trades"`
}

// Format turns a simulation outcome into the result bundle
func Format(outcome *portfolio.Outcome) (result *Result, err error) {
	if outcome == nil || len(outcome.EquityCurve) == 0 {
		return nil, ErrNoData
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &core.FormattingError{Err: fmt.Errorf("%v", r)}
		}
	}()

	if len(outcome.Dates) != len(outcome.EquityCurve) {
		return nil, &core.FormattingError{
			Err: fmt.Errorf("equity curve has %d points but %d dates", len(outcome.EquityCurve), len(outcome.Dates)),
		}
	}
	if outcome.InitialCash <= 0 {
		return nil, &core.FormattingError{Err: core.ErrInvalidCash}
	}

	dates := make([]string, len(outcome.Dates))
	for i, at := range outcome.Dates {
		dates[i] = at.Format(DateTimeLayout)
	}

	trades := make([]TradeRow, len(outcome.Trades))
	for i, trade := range outcome.Trades {
		trades[i] = Row(trade)
	}

	curve := make([]float64, len(outcome.EquityCurve))
	copy(curve, outcome.EquityCurve)

	start, end := DateRange(outcome.Dates)

	return &Result{
		Stats: Stats{
			Start:       start,
			End:         end,
			EquityFinal: Money(outcome.FinalEquity()),
			Return:      Percent(outcome.Return()),
			Trades:      len(outcome.Trades),
		},
		PlotData: PlotData{EquityCurve: curve, Dates: dates},
		Trades:   trades,
	}, nil
}

// Row formats a single trade
func Row(trade portfolio.Trade) TradeRow {
	row := TradeRow{
		Date:         trade.Time.Format(DateTimeLayout),
		Type:         string(trade.Type),
		Price:        fmt.Sprintf("%.2f", trade.Price),
		Portfolio:    "$" + Money(trade.Portfolio),
		Leverage:     Leverage(trade.Leverage),
		PnL:          Blank,
		PositionSize: Blank,
		ExitReason:   trade.Reason,
	}

	switch {
	case trade.IsEntry():
		row.PositionSize = "$" + Money(trade.Size)
	case trade.IsMarginCall():
		row.Portfolio = "$0.00"
		row.PnL = signedMoney(trade.PnL)
	default:
		row.PnL = fmt.Sprintf("%s (%s%%)", signedMoney(trade.PnL), signedPercent(trade.PnL, trade.PnLPercent))
	}

	return row
}

// Money formats an amount with thousands separators and two decimals
func Money(value float64) string {
	return message.NewPrinter(language.English).Sprintf("%.2f", value)
}

// Percent formats a percentage with two decimals
func Percent(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

// Leverage formats a multiplier as 2.0x or 2.5x
func Leverage(value float64) string {
	label := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.ContainsAny(label, ".eEN") {
		label += ".0"
	}
	return label + "x"
}

// DateRange formats the first and last timestamps of a run
func DateRange(dates []time.Time) (string, string) {
	if len(dates) == 0 {
		return "", ""
	}
	return dates[0].Format(DateLayout), dates[len(dates)-1].Format(DateLayout)
}

func signedMoney(value float64) string {
	if value >= 0 {
		return "+$" + Money(value)
	}
	return "-$" + Money(math.Abs(value))
}

// signedPercent takes its sign from the amount
func signedPercent(amount, percent float64) string {
	if amount >= 0 {
		return "+" + Percent(percent)
	}
	return Percent(percent)
}
