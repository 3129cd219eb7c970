package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
)

// DefaultLimit is the number of runs kept per user
const DefaultLimit = 10

var ErrUnknownDriver = errors.New("unknown storage driver")

// Run is a stored backtest with its request parameters and formatted results
type Run struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	User         string    `json:"user" gorm:"column:user_name;index"`
	StrategyName string    `json:"strategy_name"`
	Strategy     string    `json:"strategy" gorm:"type:text"`
	Ticker       string    `json:"ticker" gorm:"index"`
	Timeframe    string    `json:"timeframe"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Cash         float64   `json:"cash"`
	Leverage     float64   `json:"leverage"`
	EquityFinal  string    `json:"equity_final"`
	Return       string    `json:"return"`
	Trades       int       `json:"trades"`
	Results      string    `json:"results" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunFilter selects stored runs
type RunFilter func(run Run) bool

// History keeps the latest backtests of every user
type History interface {
	// Save stores run, assigns its ID and drops the user's runs beyond the limit
	Save(run *Run) error

	// List returns the runs of user newest first
	List(user string, filters ...RunFilter) ([]*Run, error)

	Close() error
}

func WithTicker(ticker string) RunFilter {
	return func(run Run) bool {
		return strings.EqualFold(run.Ticker, ticker)
	}
}

func WithStrategyName(name string) RunFilter {
	return func(run Run) bool {
		return run.StrategyName == name
	}
}

func WithCreatedAfter(at time.Time) RunFilter {
	return func(run Run) bool {
		return run.CreatedAt.After(at)
	}
}

func matches(run Run, filters []RunFilter) bool {
	for _, filter := range filters {
		if !filter(run) {
			return false
		}
	}
	return true
}

// Open creates the history store for driver: memory, buntdb (path is the
// file) or postgres (path is the DSN).
func Open(driver, path string, limit int) (History, error) {
	var (
		history History
		err     error
	)

	switch strings.ToLower(driver) {
	case "", "memory":
		history, err = FromMemory(limit)
	case "buntdb", "file":
		history, err = FromFile(path, limit)
	case "postgres":
		history, err = FromSQL(postgres.Open(path), limit)
	default:
		return nil, fmt.Errorf("%s: %w", driver, ErrUnknownDriver)
	}

	if err != nil {
		return nil, err
	}
	return history, nil
}
