package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/raykavin/stratbench"
	"github.com/raykavin/stratbench/internal/config"
	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/feed"
	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// Global flags
var (
	configFile string
	logLevel   string
)

// Data selection flags shared by run and optimize
var (
	dataPath     string
	ticker       string
	timeframe    string
	startDate    string
	endDate      string
	window       string
	strategyArg  string
	strategyName string
	user         string
	cash         float64
	leverage     float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stratbench",
		Short:         "Backtest rule-based trading strategies",
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(buildRunCmd(), buildOptimizeCmd(), buildHistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every command needs after startup
type app struct {
	cfg *config.Config
	log logger.Logger
}

func setup() (*app, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := stratbench.NewLogger(cfg.LogSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &app{cfg: cfg, log: log}, nil
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file or directory (defaults to <dataRoot>/<ticker>/<timeframe>)")
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "Ticker symbol (e.g. AAPL)")
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "Timeframe (1m 5m 15m 30m 1h 4h 1d)")
	cmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (e.g. 2023-01-01)")
	cmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (e.g. 2023-12-31)")
	cmd.Flags().StringVar(&window, "limit", "", "Keep only the trailing window (e.g. 90d)")
	cmd.Flags().StringVar(&strategyArg, "strategy", "", "Strategy JSON file or inline JSON")
	cmd.Flags().StringVarP(&strategyName, "name", "n", "", "Strategy name (defaults to the file name)")
	cmd.Flags().StringVarP(&user, "user", "u", "local", "User the run is stored under")
	cmd.Flags().Float64Var(&cash, "cash", 0, "Initial cash (defaults to backtest.cash)")
	cmd.Flags().Float64Var(&leverage, "leverage", 0, "Leverage 1-10 (defaults to backtest.leverage)")

	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("strategy")
}

// request assembles and validates the run request from the flags
func (a *app) request() (stratbench.Request, error) {
	raw, name, err := readStrategy(strategyArg)
	if err != nil {
		return stratbench.Request{}, err
	}
	if strategyName != "" {
		name = strategyName
	}

	tf := timeframe
	if tf == "" {
		tf = a.cfg.Backtest.Timeframe
	}

	start, end, err := parseInterval(startDate, endDate)
	if err != nil {
		return stratbench.Request{}, err
	}

	return stratbench.Request{
		User:         user,
		StrategyName: name,
		Strategy:     raw,
		Ticker:       strings.ToUpper(ticker),
		Timeframe:    tf,
		StartDate:    start,
		EndDate:      end,
		Cash:         cash,
		Leverage:     leverage,
	}.WithDefaults(a.cfg.Backtest.Cash, a.cfg.Backtest.Leverage), nil
}

// load reads the candles for request and fills an open date range from the data
func (a *app) load(request *stratbench.Request) (*core.Dataframe, error) {
	loader := feed.NewLoader(a.log)

	var (
		candles []core.Candle
		err     error
	)

	if dataPath != "" {
		candles, err = loader.Load(dataPath, request.Ticker)
		if err != nil {
			return nil, err
		}
		candles = feed.Between(candles, request.StartDate, request.EndDate)
	} else {
		var dataRange feed.Range
		candles, dataRange, err = loader.LoadTicker(a.cfg.Backtest.DataRoot, request.Ticker, request.Timeframe,
			request.StartDate, request.EndDate)
		if err != nil {
			return nil, err
		}
		a.log.Infof("loaded %d points from %s (%s to %s)", dataRange.Points, dataRange.Source,
			dataRange.ActualStart.Format(dateLayout), dataRange.ActualEnd.Format(dateLayout))
	}

	if window != "" {
		if candles, err = feed.Limit(candles, window); err != nil {
			return nil, err
		}
	}

	if len(candles) == 0 {
		return nil, feed.ErrNoData
	}

	if request.StartDate.IsZero() {
		request.StartDate = candles[0].Time
	}
	if request.EndDate.IsZero() {
		request.EndDate = candles[len(candles)-1].Time
	}

	return core.FromCandles(request.Ticker, candles), nil
}

// readStrategy accepts a path to a JSON file or the JSON text itself
func readStrategy(arg string) ([]byte, string, error) {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), "inline", nil
	}

	content, err := os.ReadFile(arg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read strategy: %w", err)
	}

	name := arg
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return content, strings.TrimSuffix(name, ".json"), nil
}

func parseInterval(start, end string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if start != "" {
		if from, err = feed.ParseDate(start); err != nil {
			return from, to, fmt.Errorf("invalid start date format: %w", err)
		}
	}
	if end != "" {
		if to, err = feed.ParseDate(end); err != nil {
			return from, to, fmt.Errorf("invalid end date format: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, errors.New("end date must be after start date")
	}

	return from, to, nil
}
