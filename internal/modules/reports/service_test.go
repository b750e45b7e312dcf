package reports

import (
	"encoding/csv"
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaagents/backtester/internal/modules/backtest"
)

// fakeIndicators serves canned close series per symbol
type fakeIndicators struct {
	closes map[string][]float64
}

func (f *fakeIndicators) IndicatorCloses(symbol string, lookback int) ([]float64, error) {
	closes, ok := f.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("no cached closes for %s", symbol)
	}
	if len(closes) > lookback {
		closes = closes[len(closes)-lookback:]
	}
	return closes, nil
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestService_WritePerformanceCSV(t *testing.T) {
	service := NewService(t.TempDir(), nil, zerolog.Nop())

	result := sampleResult()
	path, err := service.WritePerformanceCSV(&result)
	require.NoError(t, err)
	assert.Contains(t, path, "performance_2024-08-20.csv")

	records := readCSV(t, path)
	require.Len(t, records, 2)

	header, row := records[0], records[1]
	require.Equal(t, len(header), len(row))

	byColumn := make(map[string]string, len(header))
	for i, name := range header {
		byColumn[name] = row[i]
	}

	assert.Equal(t, "2024-08-20", byColumn["decision_date"])
	assert.Equal(t, "15", byColumn["test_period_days"])
	assert.Equal(t, "10.00", byColumn["portfolio_return_pct"])
	assert.Equal(t, "2.00", byColumn["excess_return_pct"])
	assert.Equal(t, "1.250", byColumn["portfolio_sharpe"])
	assert.Equal(t, "2", byColumn["portfolio_stocks"])
	assert.Equal(t, "", byColumn["error"])
}

func TestService_WritePerformanceCSV_DegradedResult(t *testing.T) {
	service := NewService(t.TempDir(), nil, zerolog.Nop())

	result := backtest.Result{
		AsOfDate: "2024-08-20",
		EndDate:  "2024-09-03",
		Error:    "failed to load price data: connection refused",
	}

	path, err := service.WritePerformanceCSV(&result)
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Contains(t, records[1], "failed to load price data: connection refused")
}

func TestService_WriteGrowthCSV(t *testing.T) {
	service := NewService(t.TempDir(), nil, zerolog.Nop())

	growth := &backtest.Growth{
		Dates:     []string{"2024-08-20", "2024-08-21", "2024-08-22"},
		Portfolio: []float64{1.0, 1.05, 1.10},
		Benchmark: []float64{1.0, 1.02, 1.04},
	}

	path, err := service.WriteGrowthCSV("2024-08-20", growth)
	require.NoError(t, err)
	assert.Contains(t, path, "growth_2024-08-20.csv")

	records := readCSV(t, path)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"date", "portfolio_value", "benchmark_value"}, records[0])
	assert.Equal(t, "2024-08-21", records[2][0])
	assert.Equal(t, "1.050000", records[2][1])
	assert.Equal(t, "1.020000", records[2][2])
}

func TestService_IndicatorSnapshot(t *testing.T) {
	// 42 strictly rising closes: RSI saturates at 100
	rising := make([]float64, 42)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}

	source := &fakeIndicators{closes: map[string][]float64{
		"AAPL": rising,
		"MSFT": {400, 404}, // too short for a 14-day RSI
	}}
	service := NewService(t.TempDir(), source, zerolog.Nop())

	rows := service.IndicatorSnapshot([]string{"MSFT", "AAPL", "NVDA"})
	require.Len(t, rows, 3)

	// Sorted by symbol
	assert.Equal(t, "AAPL", rows[0].Symbol)
	assert.Equal(t, "MSFT", rows[1].Symbol)
	assert.Equal(t, "NVDA", rows[2].Symbol)

	require.NotNil(t, rows[0].RSI14)
	assert.InDelta(t, 100.0, *rows[0].RSI14, 1e-6)

	assert.Nil(t, rows[1].RSI14) // not enough history
	assert.Nil(t, rows[2].RSI14) // no cached closes at all
}

func TestService_IndicatorSnapshot_NoSource(t *testing.T) {
	service := NewService(t.TempDir(), nil, zerolog.Nop())

	rows := service.IndicatorSnapshot([]string{"AAPL"})
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].RSI14)
}
