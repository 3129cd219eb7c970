package metric

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/portfolio"
)

// TradeSummary collects the closed-trade statistics of a run
type TradeSummary struct {
	Pair             string
	WinLong          []float64
	WinLongPercent   []float64
	WinShort         []float64
	WinShortPercent  []float64
	LoseLong         []float64
	LoseLongPercent  []float64
	LoseShort        []float64
	LoseShortPercent []float64
	MarginCalls      int
	Volume           float64 // leveraged exposure opened
}

// Summarize builds a TradeSummary from a trade log
func Summarize(pair string, trades []portfolio.Trade) TradeSummary {
	summary := TradeSummary{Pair: pair}

	for _, trade := range trades {
		if trade.IsEntry() {
			summary.Volume += trade.Size * trade.Leverage
			continue
		}
		if trade.IsMarginCall() {
			summary.MarginCalls++
		}

		long := trade.Side == core.SideLong
		switch {
		case trade.PnL >= 0 && long:
			summary.WinLong = append(summary.WinLong, trade.PnL)
			summary.WinLongPercent = append(summary.WinLongPercent, trade.PnLPercent)
		case trade.PnL >= 0:
			summary.WinShort = append(summary.WinShort, trade.PnL)
			summary.WinShortPercent = append(summary.WinShortPercent, trade.PnLPercent)
		case long:
			summary.LoseLong = append(summary.LoseLong, trade.PnL)
			summary.LoseLongPercent = append(summary.LoseLongPercent, trade.PnLPercent)
		default:
			summary.LoseShort = append(summary.LoseShort, trade.PnL)
			summary.LoseShortPercent = append(summary.LoseShortPercent, trade.PnLPercent)
		}
	}

	return summary
}

// Win returns all winning trades (both long and short)
func (s TradeSummary) Win() []float64 {
	return concat(s.WinLong, s.WinShort)
}

// WinPercent returns the percentage gains of all winning trades
func (s TradeSummary) WinPercent() []float64 {
	return concat(s.WinLongPercent, s.WinShortPercent)
}

// Lose returns all losing trades (both long and short)
func (s TradeSummary) Lose() []float64 {
	return concat(s.LoseLong, s.LoseShort)
}

// LosePercent returns the percentage losses of all losing trades
func (s TradeSummary) LosePercent() []float64 {
	return concat(s.LoseLongPercent, s.LoseShortPercent)
}

// Results returns the profit of every closed trade
func (s TradeSummary) Results() []float64 {
	return concat(s.Win(), s.Lose())
}

// ResultsPercent returns the leveraged percentage result of every closed trade
func (s TradeSummary) ResultsPercent() []float64 {
	return concat(s.WinPercent(), s.LosePercent())
}

func (s TradeSummary) Trades() int {
	return len(s.Win()) + len(s.Lose())
}

// Profit calculates the total profit across all trades
func (s TradeSummary) Profit() float64 {
	return floats(s.Results()).sum()
}

// SQN (System Quality Number) = sqrt(n) * (average profit / standard deviation)
func (s TradeSummary) SQN() float64 {
	results := s.Results()
	total := float64(len(results))
	if total == 0 {
		return 0
	}

	avg := s.Profit() / total

	variance := 0.0
	for _, profit := range results {
		variance += math.Pow(profit-avg, 2)
	}

	stdDev := math.Sqrt(variance / total)
	if stdDev == 0 {
		return 0
	}
	return math.Sqrt(total) * (avg / stdDev)
}

// Payoff is the average percentage win over the average percentage loss
func (s TradeSummary) Payoff() float64 {
	if len(s.WinPercent()) == 0 || len(s.LosePercent()) == 0 {
		return 0
	}
	return Payoff(s.ResultsPercent())
}

// ProfitFactor is the gross percentage win over the gross percentage loss
func (s TradeSummary) ProfitFactor() float64 {
	if len(s.LosePercent()) == 0 {
		return 0
	}
	return ProfitFactor(s.ResultsPercent())
}

// WinPercentage calculates the percentage of winning trades
func (s TradeSummary) WinPercentage() float64 {
	total := s.Trades()
	if total == 0 {
		return 0
	}
	return float64(len(s.Win())) / float64(total) * 100
}

// String formats the trade summary as a text table
func (s TradeSummary) String() string {
	buffer := &strings.Builder{}
	table := tablewriter.NewWriter(buffer)

	table.AppendBulk([][]string{
		{"Ticker", s.Pair},
		{"Trades", strconv.Itoa(s.Trades())},
		{"Win", strconv.Itoa(len(s.Win()))},
		{"Loss", strconv.Itoa(len(s.Lose()))},
		{"Margin Calls", strconv.Itoa(s.MarginCalls)},
		{"% Win", fmt.Sprintf("%.1f", s.WinPercentage())},
		{"Payoff", fmt.Sprintf("%.1f", s.Payoff()*100)},
		{"Pr.Fact", fmt.Sprintf("%.1f", s.ProfitFactor()*100)},
		{"SQN", fmt.Sprintf("%.2f", s.SQN())},
		{"Profit", fmt.Sprintf("%.2f", s.Profit())},
		{"Volume", fmt.Sprintf("%.2f", s.Volume)},
	})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return buffer.String()
}

func concat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
