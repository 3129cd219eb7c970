package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbench/pkg/report"
	"github.com/raykavin/stratbench/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	historyUser   string
	historyTicker string
	showResults   int64
)

func buildHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List the stored backtests of a user, newest first",
		RunE:  runHistory,
	}

	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "local", "User whose runs are listed")
	historyCmd.Flags().StringVarP(&historyTicker, "ticker", "t", "", "Only runs of this ticker")
	historyCmd.Flags().Int64Var(&showResults, "show", 0, "Print the stored JSON results of a run ID")

	return historyCmd
}

func runHistory(_ *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	history, err := a.openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	var filters []storage.RunFilter
	if historyTicker != "" {
		filters = append(filters, storage.WithTicker(historyTicker))
	}

	runs, err := history.List(historyUser, filters...)
	if err != nil {
		return err
	}

	if showResults > 0 {
		for _, run := range runs {
			if run.ID == showResults {
				fmt.Fprintln(os.Stdout, run.Results)
				return nil
			}
		}
		return fmt.Errorf("run %d not found for user %s", showResults, historyUser)
	}

	if len(runs) == 0 {
		fmt.Fprintf(os.Stdout, "no stored runs for %s\n", historyUser)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Created", "Strategy", "Ticker", "TF", "Start", "End", "Cash", "Lev", "Equity [$]",
		"Return [%]", "Trades"})
	for _, run := range runs {
		table.Append([]string{
			strconv.FormatInt(run.ID, 10),
			run.CreatedAt.Local().Format(report.DateTimeLayout),
			run.StrategyName,
			run.Ticker,
			run.Timeframe,
			run.StartDate.Format(report.DateLayout),
			run.EndDate.Format(report.DateLayout),
			report.Money(run.Cash),
			report.Leverage(run.Leverage),
			run.EquityFinal,
			run.Return,
			strconv.Itoa(run.Trades),
		})
	}
	table.Render()

	return nil
}
