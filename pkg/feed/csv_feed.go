package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

// MinRows is the smallest dataset a backtest accepts
const MinRows = 30

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrNoFiles          = errors.New("no csv files found")
	ErrNoData           = errors.New("no data in range")
	ErrTimeframe        = errors.New("unsupported timeframe")

	// Timeframes lists the supported dataset directories
	Timeframes = []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"}

	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}

	// tab files carry no header: Date Open High Low Close Volume
	tabHeaderMap = map[string]int{
		"time": 0, "open": 1, "high": 2, "low": 3, "close": 4, "volume": 5,
	}

	dateLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02",
	}
)

// Range describes what a load asked for and what it found
type Range struct {
	RequestedStart time.Time
	RequestedEnd   time.Time
	ActualStart    time.Time
	ActualEnd      time.Time
	Points         int
	Source         string
}

// Loader reads candle files from disk. Files that cannot be parsed while
// reading a directory are logged and skipped.
type Loader struct {
	Log logger.Logger
}

func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{Log: log}
}

// LoadTicker loads <root>/<ticker>/<timeframe>/*.csv restricted to [start, end]
func (l *Loader) LoadTicker(root, ticker, timeframe string, start, end time.Time) ([]core.Candle, Range, error) {
	if !lo.Contains(Timeframes, timeframe) {
		return nil, Range{}, fmt.Errorf("%w: %s, supported: %s", ErrTimeframe, timeframe, strings.Join(Timeframes, ", "))
	}

	dir := filepath.Join(root, strings.ToLower(ticker), timeframe)
	candles, err := l.ReadDir(dir, strings.ToUpper(ticker))
	if err != nil {
		return nil, Range{}, err
	}

	candles = Between(candles, start, end)
	if len(candles) == 0 {
		return nil, Range{}, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	if len(candles) < MinRows {
		return nil, Range{}, fmt.Errorf("%w for %s: need at least %d data points, got %d",
			ErrInsufficientData, ticker, MinRows, len(candles))
	}

	return candles, Range{
		RequestedStart: start,
		RequestedEnd:   end,
		ActualStart:    candles[0].Time,
		ActualEnd:      candles[len(candles)-1].Time,
		Points:         len(candles),
		Source:         "csv_local",
	}, nil
}

// Load reads a single file or every csv file of a directory
func (l *Loader) Load(path, pair string) ([]core.Candle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return l.ReadDir(path, pair)
	}
	return ReadFile(path, pair)
}

// ReadDir merges every csv file of dir, sorted by time and de-duplicated
func (l *Loader) ReadDir(dir, pair string) ([]core.Candle, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}
	sort.Strings(files)

	var (
		merged []core.Candle
		read   int
	)
	for _, file := range files {
		candles, err := ReadFile(file, pair)
		if err != nil {
			l.Log.WithError(err).Warnf("feed: skipping %s", filepath.Base(file))
			continue
		}
		merged = append(merged, candles...)
		read++
	}

	if read == 0 {
		return nil, fmt.Errorf("could not read any csv file from %s", dir)
	}
	return Normalize(merged), nil
}

// ReadFile parses a candle file. Tab separated files are read as headerless
// Date/Open/High/Low/Close/Volume rows; comma separated files use unix
// timestamps with an optional header whose extra columns become metadata.
func ReadFile(path, pair string) ([]core.Candle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file, pair)
}

// Read parses candles from r, detecting the separator from the first line
func Read(r io.Reader, pair string) ([]core.Candle, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return nil, fmt.Errorf("%w: empty file", ErrInsufficientData)
	}

	firstLine, _, _ := strings.Cut(text, "\n")
	reader := csv.NewReader(strings.NewReader(text))
	reader.TrimLeadingSpace = true
	if strings.Contains(firstLine, "\t") {
		reader.Comma = '\t'
	}

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if reader.Comma == '\t' {
		return parseLines(lines, tabHeaderMap, nil, pair, parseDate)
	}

	headerMap, additional, hasHeader := parseHeaders(lines[0])
	if hasHeader {
		lines = lines[1:]
	}
	return parseLines(lines, headerMap, additional, pair, parseUnix)
}

// parseHeaders maps column names to indexes; a numeric first cell means there is no header
func parseHeaders(headers []string) (headerMap map[string]int, additional []string, hasHeader bool) {
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, nil, false
	}

	headerMap = make(map[string]int, len(headers))
	for index, header := range headers {
		header = strings.ToLower(strings.TrimSpace(header))
		headerMap[header] = index
		if _, known := defaultHeaderMap[header]; !known {
			additional = append(additional, header)
		}
	}
	return headerMap, additional, true
}

func parseLines(lines [][]string, headerMap map[string]int, additional []string, pair string,
	parseTime func(string) (time.Time, error)) ([]core.Candle, error) {

	candles := make([]core.Candle, 0, len(lines))
	for number, line := range lines {
		candle, err := parseLine(line, headerMap, additional, pair, parseTime)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", number+1, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseLine(line []string, headerMap map[string]int, additional []string, pair string,
	parseTime func(string) (time.Time, error)) (core.Candle, error) {

	field := func(name string) (string, error) {
		index, ok := headerMap[name]
		if !ok || index >= len(line) {
			return "", fmt.Errorf("missing column %s", name)
		}
		return strings.TrimSpace(line[index]), nil
	}

	number := func(name string) (float64, error) {
		value, err := field(name)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(value, 64)
	}

	stamp, err := field("time")
	if err != nil {
		return core.Candle{}, err
	}

	candle := core.Candle{Pair: pair}
	if candle.Time, err = parseTime(stamp); err != nil {
		return core.Candle{}, err
	}
	if candle.Open, err = number("open"); err != nil {
		return core.Candle{}, err
	}
	if candle.High, err = number("high"); err != nil {
		return core.Candle{}, err
	}
	if candle.Low, err = number("low"); err != nil {
		return core.Candle{}, err
	}
	if candle.Close, err = number("close"); err != nil {
		return core.Candle{}, err
	}
	if candle.Volume, err = number("volume"); err != nil {
		return core.Candle{}, err
	}

	if len(additional) > 0 {
		candle.Metadata = make(map[string]float64, len(additional))
		for _, header := range additional {
			if candle.Metadata[header], err = number(header); err != nil {
				return core.Candle{}, err
			}
		}
	}

	return candle, nil
}

func parseUnix(value string) (time.Time, error) {
	timestamp, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(timestamp, 0).UTC(), nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// ParseDate parses the date formats accepted in candle files and range flags
func ParseDate(value string) (time.Time, error) {
	return parseDate(strings.TrimSpace(value))
}

// Normalize sorts candles by time and keeps the first candle of each timestamp
func Normalize(candles []core.Candle) []core.Candle {
	sorted := make([]core.Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	return lo.UniqBy(sorted, func(candle core.Candle) int64 {
		return candle.Time.UnixNano()
	})
}

// Between keeps candles within [start, end]. A zero bound is open.
func Between(candles []core.Candle, start, end time.Time) []core.Candle {
	return lo.Filter(candles, func(candle core.Candle, _ int) bool {
		if !start.IsZero() && candle.Time.Before(start) {
			return false
		}
		if !end.IsZero() && candle.Time.After(end) {
			return false
		}
		return true
	})
}

// Limit keeps the trailing window of candles, e.g. "90d" or "12h"
func Limit(candles []core.Candle, window string) ([]core.Candle, error) {
	if len(candles) == 0 || window == "" {
		return candles, nil
	}

	duration, err := str2duration.ParseDuration(window)
	if err != nil {
		return nil, err
	}

	start := candles[len(candles)-1].Time.Add(-duration)
	return lo.Filter(candles, func(candle core.Candle, _ int) bool {
		return candle.Time.After(start)
	}), nil
}
