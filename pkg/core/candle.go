package core

import (
	"time"
)

// Candle is a single OHLCV row read from a data source
type Candle struct {
	Pair   string
	Time   time.Time
	Open   float64
	Close  float64
	Low    float64
	High   float64
	Volume float64

	// Additional columns from CSV inputs
	Metadata map[string]float64
}

// IsEmpty checks if the candle contains no significant data
func (c Candle) IsEmpty() bool { return c.Close == 0 && c.Open == 0 && c.Volume == 0 }
