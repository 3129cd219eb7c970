package portfolio

import (
	"time"

	"github.com/raykavin/stratbench/pkg/core"
)

// TradeType labels a trade log entry
type TradeType string

const (
	TradeLong            TradeType = "LONG"
	TradeShort           TradeType = "SHORT"
	TradeExitLong        TradeType = "EXIT LONG"
	TradeExitShort       TradeType = "EXIT SHORT"
	TradeMarginCallLong  TradeType = "MARGIN CALL LONG"
	TradeMarginCallShort TradeType = "MARGIN CALL SHORT"
)

// ReasonDataFinished marks the close-out of a position still open at the last bar
const ReasonDataFinished = "Data Finished"

func entryType(side core.Side) TradeType {
	if side == core.SideShort {
		return TradeShort
	}
	return TradeLong
}

func exitType(side core.Side) TradeType {
	if side == core.SideShort {
		return TradeExitShort
	}
	return TradeExitLong
}

func marginCallType(side core.Side) TradeType {
	if side == core.SideShort {
		return TradeMarginCallShort
	}
	return TradeMarginCallLong
}

// Trade is an immutable trade log entry
type Trade struct {
	Time       time.Time
	Type       TradeType
	Side       core.Side
	Price      float64
	Portfolio  float64 // account value after the trade
	PnL        float64
	PnLPercent float64
	Leverage   float64
	Size       float64 // base commitment, entries only
	Reason     string
}

// IsEntry reports whether the trade opened a position
func (t Trade) IsEntry() bool {
	return t.Type == TradeLong || t.Type == TradeShort
}

// IsMarginCall reports whether the trade was a forced liquidation
func (t Trade) IsMarginCall() bool {
	return t.Type == TradeMarginCallLong || t.Type == TradeMarginCallShort
}
