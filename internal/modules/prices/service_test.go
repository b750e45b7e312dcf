package prices

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaagents/backtester/internal/clients/findata"
)

// mockAPI serves canned bars per ticker, optionally failing some tickers
type mockAPI struct {
	bars    map[string][]findata.Bar
	failAll bool
	calls   int
}

func (m *mockAPI) GetDailyPrices(ticker, startDate, endDate string) ([]findata.Bar, error) {
	m.calls++
	if m.failAll {
		return nil, fmt.Errorf("api unavailable")
	}
	bars, ok := m.bars[ticker]
	if !ok {
		return nil, fmt.Errorf("no price data returned for %s", ticker)
	}
	return bars, nil
}

func testBars(dates []string, closes []float64) []findata.Bar {
	bars := make([]findata.Bar, 0, len(dates))
	for i, date := range dates {
		bars = append(bars, findata.Bar{
			Date:   date,
			Open:   closes[i],
			High:   closes[i] * 1.01,
			Low:    closes[i] * 0.99,
			Close:  closes[i],
			Volume: 1000,
		})
	}
	return bars
}

func TestService_GetPriceData_FromAPI(t *testing.T) {
	api := &mockAPI{bars: map[string][]findata.Bar{
		"AAPL": testBars([]string{"2024-08-20", "2024-08-21"}, []float64{100, 101}),
		"MSFT": testBars([]string{"2024-08-20", "2024-08-21"}, []float64{400, 404}),
	}}
	cache := NewCache(t.TempDir(), zerolog.Nop())
	service := NewService(api, cache, zerolog.Nop())

	table, err := service.GetPriceData([]string{"AAPL", "MSFT"}, "2024-08-20", "2024-08-21")
	require.NoError(t, err)
	require.Len(t, table, 4)

	// Sorted by (symbol, date)
	assert.Equal(t, "AAPL", table[0].Symbol)
	assert.Equal(t, "2024-08-20", table[0].Date)
	assert.Equal(t, "MSFT", table[3].Symbol)
	assert.Equal(t, "2024-08-21", table[3].Date)
}

func TestService_GetPriceData_APIRefreshesCache(t *testing.T) {
	api := &mockAPI{bars: map[string][]findata.Bar{
		"AAPL": testBars([]string{"2024-08-20", "2024-08-21"}, []float64{100, 101}),
	}}
	cache := NewCache(t.TempDir(), zerolog.Nop())
	service := NewService(api, cache, zerolog.Nop())

	_, err := service.GetPriceData([]string{"AAPL"}, "2024-08-20", "2024-08-21")
	require.NoError(t, err)

	// A successful API load must leave the fallback cache usable
	cached, err := cache.GetRange("AAPL", "2024-08-20", "2024-08-21")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestService_GetPriceData_FallsBackToCache(t *testing.T) {
	cache := NewCache(t.TempDir(), zerolog.Nop())
	require.NoError(t, cache.Save("AAPL", testPoints("AAPL",
		[]string{"2024-08-20", "2024-08-21"}, []float64{100, 101})))

	api := &mockAPI{failAll: true}
	service := NewService(api, cache, zerolog.Nop())

	table, err := service.GetPriceData([]string{"AAPL"}, "2024-08-20", "2024-08-21")
	require.NoError(t, err)
	assert.Len(t, table, 2)
	assert.Equal(t, 1, api.calls)
}

func TestService_GetPriceData_PartialFailureKeepsGoing(t *testing.T) {
	// One symbol fails both sources; the load still succeeds with the rest
	api := &mockAPI{bars: map[string][]findata.Bar{
		"AAPL": testBars([]string{"2024-08-20", "2024-08-21"}, []float64{100, 101}),
	}}
	cache := NewCache(t.TempDir(), zerolog.Nop())
	service := NewService(api, cache, zerolog.Nop())

	table, err := service.GetPriceData([]string{"AAPL", "NVDA"}, "2024-08-20", "2024-08-21")
	require.NoError(t, err)
	assert.Len(t, table, 2)
	for _, row := range table {
		assert.Equal(t, "AAPL", row.Symbol)
	}
}

func TestService_GetPriceData_AllFail(t *testing.T) {
	api := &mockAPI{failAll: true}
	cache := NewCache(t.TempDir(), zerolog.Nop())
	service := NewService(api, cache, zerolog.Nop())

	_, err := service.GetPriceData([]string{"AAPL", "MSFT"}, "2024-08-20", "2024-08-21")
	assert.Error(t, err)
}

func TestService_RefreshCache(t *testing.T) {
	api := &mockAPI{bars: map[string][]findata.Bar{
		"AAPL": testBars([]string{"2024-08-20", "2024-08-21"}, []float64{100, 101}),
		"MSFT": testBars([]string{"2024-08-20", "2024-08-21"}, []float64{400, 404}),
	}}
	cache := NewCache(t.TempDir(), zerolog.Nop())
	service := NewService(api, cache, zerolog.Nop())

	require.NoError(t, service.RefreshCache([]string{"AAPL", "MSFT"}, "2024-08-20", "2024-08-21"))

	for _, symbol := range []string{"AAPL", "MSFT"} {
		cached, err := cache.GetRange(symbol, "2024-08-20", "2024-08-21")
		require.NoError(t, err)
		assert.Len(t, cached, 2)
	}
}

func TestService_RefreshCache_ReportsFailures(t *testing.T) {
	api := &mockAPI{bars: map[string][]findata.Bar{
		"AAPL": testBars([]string{"2024-08-20"}, []float64{100}),
	}}
	cache := NewCache(t.TempDir(), zerolog.Nop())
	service := NewService(api, cache, zerolog.Nop())

	err := service.RefreshCache([]string{"AAPL", "NVDA"}, "2024-08-20", "2024-08-20")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NVDA")
}
