package backtest

import (
	"github.com/alphaagents/backtester/internal/modules/prices"
)

// Decision is the input record from the rating pipeline: the date the
// portfolio weights were fixed and the weights themselves. An empty weight
// map is a valid all-cash decision, not an error.
type Decision struct {
	AsOfDate    string             `json:"as_of_date"` // YYYY-MM-DD
	Weights     map[string]float64 `json:"weights"`
	ForwardDays int                `json:"forward_days,omitempty"`
}

// Result is the terminal output of one backtest run. Degraded runs (provider
// failure, insufficient data) produce the same struct with zeroed metrics and
// a non-empty Error, so downstream consumers never branch on result shape.
type Result struct {
	AsOfDate       string `json:"as_of_date"`
	EndDate        string `json:"end_date"`
	ForwardDays    int    `json:"forward_days"`
	TestPeriodDays int    `json:"test_period_days"`

	PortfolioReturn      float64 `json:"portfolio_return"`
	PortfolioVolatility  float64 `json:"portfolio_volatility"`
	PortfolioSharpe      float64 `json:"portfolio_sharpe"`
	PortfolioComposition string  `json:"portfolio_composition"`

	BenchmarkReturn      float64 `json:"benchmark_return"`
	BenchmarkVolatility  float64 `json:"benchmark_volatility"`
	BenchmarkSharpe      float64 `json:"benchmark_sharpe"`
	BenchmarkComposition string  `json:"benchmark_composition"`

	ExcessReturn float64 `json:"excess_return"`

	// Raw rows retained for downstream visualization and reporting
	PriceData        []prices.PricePoint `json:"price_data,omitempty"`
	PortfolioWeights map[string]float64  `json:"portfolio_weights"`

	DataWarnings []string `json:"data_warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Growth holds the growth-of-$1 trajectories for portfolio and benchmark,
// one entry per distinct trading day in the price table, both starting at 1.0.
type Growth struct {
	Dates     []string  `json:"dates"`
	Portfolio []float64 `json:"portfolio"`
	Benchmark []float64 `json:"benchmark"`
}
