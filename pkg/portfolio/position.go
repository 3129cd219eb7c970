package portfolio

import (
	"math"
	"time"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/risk"
)

// Position is the open-position state of a run. The zero value is FLAT.
type Position struct {
	Side       core.Side
	EntryPrice float64
	EntryTime  time.Time
	Shares     float64 // positive long, negative short
	Highest    float64
	Lowest     float64
	Base       float64 // cash committed before leverage
	Exposure   float64 // base * leverage
}

// Open reports whether the position holds shares
func (p Position) Open() bool {
	return p.Side == core.SideLong || p.Side == core.SideShort
}

// PnL is the profit of closing the position at price
func (p Position) PnL(price float64) float64 {
	shares := math.Abs(p.Shares)
	if p.Side == core.SideShort {
		return (p.EntryPrice - price) * shares
	}
	return (price - p.EntryPrice) * shares
}

// PnLPercent is the leveraged price move in the position's favour
func (p Position) PnLPercent(price float64, leverage float64) float64 {
	change := (price - p.EntryPrice) / p.EntryPrice * 100
	if p.Side == core.SideShort {
		change = -change
	}
	return change * leverage
}

// Equity is the account value with the position marked at price
func (p Position) Equity(cash, price float64) float64 {
	switch p.Side {
	case core.SideLong:
		return cash + p.Base + p.PnL(price)
	case core.SideShort:
		return cash + p.PnL(price)
	default:
		return cash
	}
}

// Release is the cash returned to the account when the position is closed at price.
// A short returns its sale proceeds minus the buy-back cost.
func (p Position) Release(price float64) float64 {
	shares := math.Abs(p.Shares)
	if p.Side == core.SideShort {
		proceeds := shares * p.EntryPrice
		buyBack := shares * price
		return proceeds - buyBack
	}
	return p.Base + p.PnL(price)
}

// Track moves the trailing extrema to include price
func (p *Position) Track(price float64) {
	p.Highest = math.Max(p.Highest, price)
	p.Lowest = math.Min(p.Lowest, price)
}

func (p Position) view() risk.Position {
	return risk.Position{
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		Highest:    p.Highest,
		Lowest:     p.Lowest,
	}
}
