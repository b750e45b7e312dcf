package backtest

import (
	"fmt"
	"sort"
	"strings"
)

// Performance holds the aggregated return figures for one weight map over
// one price table.
type Performance struct {
	TotalReturn  float64
	DailyReturns []float64
}

// CalculatePerformance aggregates per-symbol returns into portfolio-level
// figures for the given weight map. The same routine serves both the chosen
// portfolio and the equal-weight benchmark - the benchmark just passes a
// derived equal-weight map - so the two can never drift apart.
//
// An empty weight map is a pure cash position: total return 0 and a zero
// daily series, one entry per day-over-day step in the table. A symbol in
// the map with fewer than two observed rows contributes 0 to the total, and
// a (symbol, day) pair missing today's or yesterday's close contributes 0 to
// that day, without skipping the day.
func CalculatePerformance(table *Table, weights map[string]float64) Performance {
	dates := table.Dates()

	steps := len(dates) - 1
	if steps < 0 {
		steps = 0
	}
	daily := make([]float64, steps)

	if len(weights) == 0 {
		return Performance{TotalReturn: 0, DailyReturns: daily}
	}

	// Total return: weight-sum of each symbol's own first-to-last close move
	var total float64
	for symbol, weight := range weights {
		first, last, ok := table.firstLastClose(symbol)
		if !ok || first == 0 {
			continue
		}
		total += weight * (last/first - 1)
	}

	for i := 1; i < len(dates); i++ {
		daily[i-1] = dayReturn(table, weights, dates[i-1], dates[i])
	}

	return Performance{TotalReturn: total, DailyReturns: daily}
}

// dayReturn computes the weighted day-over-day return between two adjacent
// index dates, summing only over symbols with a close on both days.
func dayReturn(table *Table, weights map[string]float64, prevDate, date string) float64 {
	var r float64
	for symbol, weight := range weights {
		today, okToday := table.Close(symbol, date)
		yesterday, okPrev := table.Close(symbol, prevDate)
		if !okToday || !okPrev || yesterday == 0 {
			continue
		}
		r += weight * (today/yesterday - 1)
	}
	return r
}

// EqualWeights derives the passive benchmark weight map: 1/N for every
// symbol in the configured universe, independent of the decision weights.
func EqualWeights(universe []string) map[string]float64 {
	weights := make(map[string]float64, len(universe))
	if len(universe) == 0 {
		return weights
	}

	w := 1.0 / float64(len(universe))
	for _, symbol := range universe {
		weights[symbol] = w
	}
	return weights
}

// PortfolioComposition formats a weight map as a human-readable holdings
// list, e.g. "AAPL: 50.0%, NVDA: 25.0%". An empty map reads "Cash (0 stocks)".
func PortfolioComposition(weights map[string]float64) string {
	if len(weights) == 0 {
		return "Cash (0 stocks)"
	}

	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	parts := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", symbol, weights[symbol]*100))
	}

	return strings.Join(parts, ", ")
}

// BenchmarkComposition describes the equal-weight universe,
// e.g. "Equal-weight AAPL, MSFT, NVDA, TSLA (25.0% each)".
func BenchmarkComposition(universe []string) string {
	if len(universe) == 0 {
		return "Empty universe"
	}

	sorted := make([]string, len(universe))
	copy(sorted, universe)
	sort.Strings(sorted)

	return fmt.Sprintf("Equal-weight %s (%.1f%% each)",
		strings.Join(sorted, ", "), 100.0/float64(len(universe)))
}
