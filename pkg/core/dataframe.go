package core

import (
	"sort"
	"time"

	"github.com/StudioSol/set"
)

// Base OHLCV column names
const (
	ColumnOpen   = "Open"
	ColumnHigh   = "High"
	ColumnLow    = "Low"
	ColumnClose  = "Close"
	ColumnVolume = "Volume"
)

// Dataframe is a time-indexed container for OHLCV and indicator columns.
// Engines treat it as read-only.
type Dataframe struct {
	Pair string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time []time.Time

	// Indicator columns keyed by name (rsi, macd_line, atr_14...)
	Metadata map[string]Series[float64]

	columns *set.LinkedHashSetString // insertion order
	index   map[string]struct{}
}

// NewDataframe creates an empty dataframe indexed by the given timestamps
func NewDataframe(pair string, times []time.Time) *Dataframe {
	return &Dataframe{
		Pair:     pair,
		Time:     times,
		Metadata: make(map[string]Series[float64]),
		columns:  set.NewLinkedHashSetString(),
		index:    make(map[string]struct{}),
	}
}

// Len returns the number of rows
func (df *Dataframe) Len() int {
	return len(df.Time)
}

// SetColumn stores values under name. Base OHLCV names map to their fields.
func (df *Dataframe) SetColumn(name string, values []float64) {
	if df.columns == nil {
		df.columns = set.NewLinkedHashSetString()
	}
	if df.index == nil {
		df.index = make(map[string]struct{})
	}
	if df.Metadata == nil {
		df.Metadata = make(map[string]Series[float64])
	}

	switch name {
	case ColumnOpen:
		df.Open = values
	case ColumnHigh:
		df.High = values
	case ColumnLow:
		df.Low = values
	case ColumnClose:
		df.Close = values
	case ColumnVolume:
		df.Volume = values
	default:
		df.Metadata[name] = values
	}

	if _, ok := df.index[name]; !ok {
		df.index[name] = struct{}{}
		df.columns.Add(name)
	}
}

// Column returns the series stored under name
func (df *Dataframe) Column(name string) (Series[float64], bool) {
	if !df.HasColumn(name) {
		return nil, false
	}

	switch name {
	case ColumnOpen:
		return df.Open, true
	case ColumnHigh:
		return df.High, true
	case ColumnLow:
		return df.Low, true
	case ColumnClose:
		return df.Close, true
	case ColumnVolume:
		return df.Volume, true
	}

	values, ok := df.Metadata[name]
	return values, ok
}

// HasColumn reports whether the column was set
func (df *Dataframe) HasColumn(name string) bool {
	_, ok := df.index[name]
	return ok
}

// Columns lists column names in insertion order
func (df *Dataframe) Columns() []string {
	if df.columns == nil {
		return nil
	}

	names := make([]string, 0, df.columns.Length())
	for name := range df.columns.Iter() {
		names = append(names, name)
	}
	return names
}

// ValueAt returns the value of a column at row index
func (df *Dataframe) ValueAt(name string, index int) (float64, bool) {
	values, ok := df.Column(name)
	if !ok || index < 0 || index >= len(values) {
		return 0, false
	}
	return values[index], true
}

// FromCandles builds a dataframe from candles, promoting candle metadata to columns
func FromCandles(pair string, candles []Candle) *Dataframe {
	times := make([]time.Time, len(candles))
	open := make([]float64, len(candles))
	high := make([]float64, len(candles))
	low := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	volume := make([]float64, len(candles))
	extra := make(map[string][]float64)
	extraOrder := make([]string, 0)

	for i, candle := range candles {
		times[i] = candle.Time
		open[i] = candle.Open
		high[i] = candle.High
		low[i] = candle.Low
		closes[i] = candle.Close
		volume[i] = candle.Volume

		for key, value := range candle.Metadata {
			column, ok := extra[key]
			if !ok {
				column = Constant(nanValue, len(candles))
				extraOrder = append(extraOrder, key)
			}
			column[i] = value
			extra[key] = column
		}
	}

	sort.Strings(extraOrder)

	df := NewDataframe(pair, times)
	df.SetColumn(ColumnOpen, open)
	df.SetColumn(ColumnHigh, high)
	df.SetColumn(ColumnLow, low)
	df.SetColumn(ColumnClose, closes)
	df.SetColumn(ColumnVolume, volume)
	for _, key := range extraOrder {
		df.SetColumn(key, extra[key])
	}

	return df
}

// Row is a single bar of a dataframe
type Row struct {
	df    *Dataframe
	index int
}

// Row returns a view over the bar at index
func (df *Dataframe) Row(index int) Row {
	return Row{df: df, index: index}
}

// Value returns the column value of the bar
func (r Row) Value(column string) (float64, bool) {
	if r.df == nil {
		return 0, false
	}
	return r.df.ValueAt(column, r.index)
}
