package main

import (
	"fmt"
	"os"

	"github.com/raykavin/stratbench"
	"github.com/raykavin/stratbench/pkg/report"
	"github.com/raykavin/stratbench/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	noSave     bool
)

func buildRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Backtest a strategy over a dataset",
		RunE:  runBacktest,
	}

	addDataFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result envelope as JSON")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the run in the history")

	return runCmd
}

func runBacktest(_ *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	request, err := a.request()
	if err != nil {
		return a.fail(err)
	}

	df, err := a.load(&request)
	if err != nil {
		return a.fail(err)
	}

	if err := request.Validate(); err != nil {
		return a.fail(err)
	}

	opts := []stratbench.Option{stratbench.WithLogger(a.log)}
	if a.cfg.Backtest.Indicators {
		opts = append(opts, stratbench.WithDefaultIndicators())
	}

	result, err := stratbench.Backtest(df, request.Strategy, request.Cash, request.Leverage, opts...)
	if err != nil {
		return a.fail(err)
	}

	if jsonOutput {
		data, err := result.Envelope().JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
	} else if err := result.Summary(os.Stdout); err != nil {
		return err
	}

	if noSave {
		return nil
	}
	return a.save(request, result)
}

// fail prints the error envelope in JSON mode and returns err for the exit code
func (a *app) fail(err error) error {
	if jsonOutput {
		if data, jsonErr := report.Failure(err).JSON(); jsonErr == nil {
			fmt.Fprintln(os.Stdout, string(data))
		}
	}
	return err
}

func (a *app) openHistory() (storage.History, error) {
	return storage.Open(a.cfg.Storage.Driver, a.cfg.Storage.Path, a.cfg.Storage.Limit)
}

func (a *app) save(request stratbench.Request, result *stratbench.Result) error {
	run, err := request.Record(result)
	if err != nil {
		return err
	}

	history, err := a.openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	if err := history.Save(run); err != nil {
		return err
	}

	a.log.WithFields(map[string]any{"id": run.ID, "user": run.User}).Info("run stored in history")
	return nil
}
