package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/raykavin/stratbench"
	"github.com/raykavin/stratbench/pkg/indicator"
	"github.com/raykavin/stratbench/pkg/optimizer"
	"github.com/spf13/cobra"
)

var (
	method     string
	target     string
	iterations int
	topN       int
	outputFile string
)

func buildOptimizeCmd() *cobra.Command {
	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Sweep stop loss, take profit, sizing and leverage values",
		RunE:  runOptimize,
	}

	addDataFlags(optimizeCmd)
	optimizeCmd.Flags().StringVarP(&method, "method", "m", "", "Search method: grid or random")
	optimizeCmd.Flags().StringVar(&target, "target", "", "Metric to maximize (e.g. return_pct, sharpe_ratio)")
	optimizeCmd.Flags().IntVar(&iterations, "iterations", 0, "Maximum number of evaluations")
	optimizeCmd.Flags().IntVar(&topN, "top", 0, "Number of results to print")
	optimizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Save every result to a CSV file")

	return optimizeCmd
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	settings := a.cfg.Optimizer
	if method != "" {
		settings.Method = method
	}
	if target != "" {
		settings.Target = target
	}
	if iterations > 0 {
		settings.MaxIterations = iterations
	}
	if topN > 0 {
		settings.TopN = topN
	}

	request, err := a.request()
	if err != nil {
		return err
	}

	df, err := a.load(&request)
	if err != nil {
		return err
	}

	if err := request.Validate(); err != nil {
		return err
	}

	config, err := stratbench.LoadConfig(request.Strategy)
	if err != nil {
		return err
	}

	// evaluations share the dataframe, so indicators are computed once up front
	if a.cfg.Backtest.Indicators {
		indicators := indicator.DefaultSettings()
		indicators.ExtraATRPeriods = stratbench.ATRPeriods(config)
		if err := indicator.Augment(df, indicators); err != nil {
			return err
		}
	}

	evaluator, err := optimizer.NewBacktestStrategyEvaluator(df, request.Strategy, request.Cash, request.Leverage, nil)
	if err != nil {
		return err
	}

	parameters, err := optimizer.ParametersFor(request.Strategy)
	if err != nil {
		return err
	}

	optimizerConfig := optimizer.NewConfig().
		WithParameters(parameters...).
		WithMaxIterations(settings.MaxIterations).
		WithParallelism(settings.Parallelism).
		WithTargetMetric(optimizer.MetricName(settings.Target), !settings.Minimize).
		WithTopN(settings.TopN).
		WithSeed(settings.Seed).
		WithLogger(a.log).
		WithProgress(os.Stderr)

	var search optimizer.Optimizer
	if settings.Method == "random" {
		search, err = optimizer.NewRandomSearch(optimizerConfig)
	} else {
		search, err = optimizer.NewGridSearch(optimizerConfig)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := search.Optimize(ctx, evaluator, optimizerConfig.TargetMetric, optimizerConfig.Maximize)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		a.log.Warn("optimization interrupted")
		return context.Canceled
	}

	optimizer.PrintResults(os.Stdout, results, optimizerConfig.TargetMetric, optimizerConfig.Maximize, optimizerConfig.TopN)

	if outputFile != "" {
		if err := optimizer.SaveResultsToCSV(results, optimizerConfig.TargetMetric, optimizerConfig.Maximize, outputFile); err != nil {
			return err
		}
		a.log.Infof("saved %d results to %s", len(results), outputFile)
	}

	return nil
}
