package stratbench

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbench/pkg/metric"
	"github.com/samber/lo"
)

const (
	bootstrapSamples    = 10000
	bootstrapConfidence = 0.95
	histogramBins       = 15
)

// Summary writes the stats table, the trade statistics, a histogram of trade
// returns and their bootstrap confidence intervals to w.
func (r *Result) Summary(w io.Writer) error {
	stats := r.Report.Stats
	curve := r.Outcome.EquityCurve

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Start", "End", "Equity Final [$]", "Return [%]", "# Trades", "Max DD [%]", "Sharpe"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)
	table.Append([]string{
		stats.Start,
		stats.End,
		stats.EquityFinal,
		stats.Return,
		strconv.Itoa(stats.Trades),
		fmt.Sprintf("%.2f", metric.MaxDrawdown(curve)),
		fmt.Sprintf("%.2f", metric.SharpeRatio(metric.Returns(curve), metric.PeriodsPerYear(r.Outcome.Dates))),
	})
	table.Render()

	fmt.Fprintln(w)
	fmt.Fprint(w, r.TradeStats.String())

	returns := r.TradeStats.ResultsPercent()
	if len(returns) == 0 {
		fmt.Fprintln(w, "no closed trades")
		return nil
	}

	// a histogram needs a non-empty value range
	if lo.Min(returns) < lo.Max(returns) {
		fmt.Fprintln(w, "------ RETURN -------")
		hist := histogram.Hist(histogramBins, returns)
		if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "------ CONFIDENCE INTERVAL (%.0f%%) -------\n", bootstrapConfidence*100)
	returnsInterval := metric.Bootstrap(returns, metric.Mean, bootstrapSamples, bootstrapConfidence)
	payoffInterval := metric.Bootstrap(returns, metric.Payoff, bootstrapSamples, bootstrapConfidence)
	profitFactorInterval := metric.Bootstrap(returns, metric.ProfitFactor, bootstrapSamples, bootstrapConfidence)

	fmt.Fprintf(w, "RETURN:      %.2f%% (%.2f%% ~ %.2f%%)\n",
		returnsInterval.Mean, returnsInterval.Lower, returnsInterval.Upper)
	fmt.Fprintf(w, "PAYOFF:      %.2f (%.2f ~ %.2f)\n",
		payoffInterval.Mean, payoffInterval.Lower, payoffInterval.Upper)
	fmt.Fprintf(w, "PROF.FACTOR: %.2f (%.2f ~ %.2f)\n",
		profitFactorInterval.Mean, profitFactorInterval.Lower, profitFactorInterval.Upper)

	return nil
}
