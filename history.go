package stratbench

import (
	"fmt"

	"github.com/raykavin/stratbench/pkg/storage"
)

// Record builds the history entry of a successful run of the request
func (r Request) Record(result *Result) (*storage.Run, error) {
	if result == nil || result.Report == nil {
		return nil, fmt.Errorf("record %s: no result", r.StrategyName)
	}

	results, err := result.Envelope().JSON()
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.StrategyName, err)
	}

	stats := result.Report.Stats
	return &storage.Run{
		User:         r.User,
		StrategyName: r.StrategyName,
		Strategy:     string(r.Strategy),
		Ticker:       r.Ticker,
		Timeframe:    r.Timeframe,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Cash:         r.Cash,
		Leverage:     r.Leverage,
		EquityFinal:  stats.EquityFinal,
		Return:       stats.Return,
		Trades:       stats.Trades,
		Results:      string(results),
	}, nil
}
