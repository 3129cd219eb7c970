package optimizer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// SaveResultsToCSV writes the results ranked by targetMetric to filePath
func SaveResultsToCSV(results []*Result, targetMetric MetricName, maximize bool, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteResultsCSV(file, results, targetMetric, maximize); err != nil {
		return err
	}
	return file.Close()
}

// WriteResultsCSV writes one row per result: rank, duration, parameters and
// metrics in name order.
func WriteResultsCSV(w io.Writer, results []*Result, targetMetric MetricName, maximize bool) error {
	writer := csv.NewWriter(w)

	ranked := rank(results, targetMetric, maximize)
	paramNames, metricNames := columns(ranked)

	header := []string{"Rank", "Duration"}
	header = append(header, paramNames...)
	header = append(header, metricNames...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, result := range ranked {
		row := []string{
			strconv.Itoa(i + 1),
			result.Duration.String(),
		}

		for _, paramName := range paramNames {
			value, exists := result.Parameters[paramName]
			if !exists {
				row = append(row, "")
				continue
			}
			row = append(row, formatValue(value))
		}

		for _, metricName := range metricNames {
			value, exists := result.Metrics[metricName]
			if !exists {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(value, 'f', 4, 64))
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// PrintResults renders the top N results as a table
func PrintResults(w io.Writer, results []*Result, targetMetric MetricName, maximize bool, topN int) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display")
		return
	}

	ranked := rank(results, targetMetric, maximize)
	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}

	paramNames, _ := columns(ranked)
	metricNames := []string{string(targetMetric)}
	for _, name := range []MetricName{MetricReturn, MetricTradeCount, MetricWinRate, MetricDrawdown} {
		if name != targetMetric {
			metricNames = append(metricNames, string(name))
		}
	}

	fmt.Fprintf(w, "\n=== Top %d Results (by %s) ===\n\n", len(ranked), targetMetric)

	table := tablewriter.NewWriter(w)
	table.SetHeader(append(append([]string{"Rank", "Duration"}, paramNames...), metricNames...))
	for i, result := range ranked {
		row := []string{strconv.Itoa(i + 1), result.Duration.Round(time.Millisecond).String()}
		for _, name := range paramNames {
			row = append(row, formatValue(result.Parameters[name]))
		}
		for _, name := range metricNames {
			row = append(row, strconv.FormatFloat(result.Metrics[name], 'f', 4, 64))
		}
		table.Append(row)
	}
	table.Render()
}

// FormatParameterSet formats a parameter set as {a: 1, b: 2} in name order
func FormatParameterSet(params ParameterSet) string {
	names := lo.Keys(params)
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = fmt.Sprintf("%s: %v", name, params[name])
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// MergeResults combines multiple result sets into a single slice
func MergeResults(resultSets ...[]*Result) []*Result {
	return lo.Flatten(resultSets)
}

// rank returns a sorted copy of results
func rank(results []*Result, targetMetric MetricName, maximize bool) []*Result {
	ranked := make([]*Result, len(results))
	copy(ranked, results)
	sort.Stable(ResultSorter{
		Results:    ranked,
		MetricName: string(targetMetric),
		Maximize:   maximize,
	})
	return ranked
}

func columns(results []*Result) (params []string, metrics []string) {
	paramNames := make(map[string]bool)
	metricNames := make(map[string]bool)

	for _, result := range results {
		for name := range result.Parameters {
			paramNames[name] = true
		}
		for name := range result.Metrics {
			metricNames[name] = true
		}
	}

	params = lo.Keys(paramNames)
	metrics = lo.Keys(metricNames)
	sort.Strings(params)
	sort.Strings(metrics)
	return params, metrics
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', 4, 64)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
