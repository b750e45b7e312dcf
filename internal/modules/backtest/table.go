package backtest

import (
	"sort"

	"github.com/alphaagents/backtester/internal/modules/prices"
)

// Table indexes a long-format price table for performance calculations.
//
// The date index is the union of every observed (symbol, date) row, sorted
// ascending. Missing trading days for a symbol stay missing - there is no
// gap-filling - and per-symbol calculations use each symbol's own observed
// rows within the window.
type Table struct {
	rows   []prices.PricePoint
	dates  []string
	closes map[string]map[string]float64 // symbol -> date -> close
}

// NewTable builds the shared date index and close lookup from raw rows.
// Duplicate (symbol, date) rows keep the last close seen.
func NewTable(rows []prices.PricePoint) *Table {
	t := &Table{
		rows:   rows,
		closes: make(map[string]map[string]float64),
	}

	dateSet := make(map[string]struct{})
	for _, row := range rows {
		dateSet[row.Date] = struct{}{}

		byDate, ok := t.closes[row.Symbol]
		if !ok {
			byDate = make(map[string]float64)
			t.closes[row.Symbol] = byDate
		}
		byDate[row.Date] = row.Close
	}

	t.dates = make([]string, 0, len(dateSet))
	for date := range dateSet {
		t.dates = append(t.dates, date)
	}
	sort.Strings(t.dates)

	return t
}

// Dates returns the sorted distinct trading days in the table
func (t *Table) Dates() []string {
	return t.dates
}

// Rows returns the raw long-format rows the table was built from
func (t *Table) Rows() []prices.PricePoint {
	return t.rows
}

// Close returns the closing price for (symbol, date) if that row exists
func (t *Table) Close(symbol, date string) (float64, bool) {
	byDate, ok := t.closes[symbol]
	if !ok {
		return 0, false
	}
	close, ok := byDate[date]
	return close, ok
}

// ObservedDays returns the number of rows present for a symbol
func (t *Table) ObservedDays(symbol string) int {
	return len(t.closes[symbol])
}

// firstLastClose returns the first and last observed close for a symbol in
// date order, and whether the symbol has at least two rows to span a return.
func (t *Table) firstLastClose(symbol string) (first, last float64, ok bool) {
	byDate := t.closes[symbol]
	if len(byDate) < 2 {
		return 0, 0, false
	}

	found := false
	for _, date := range t.dates {
		close, exists := byDate[date]
		if !exists {
			continue
		}
		if !found {
			first = close
			found = true
		}
		last = close
	}

	return first, last, true
}
