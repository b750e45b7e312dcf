package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/alphaagents/backtester/internal/modules/prices"
	"github.com/alphaagents/backtester/pkg/formulas"
)

// DefaultMinTradingDays is the minimum number of distinct trading days a
// window must contain before metrics are considered meaningful.
const DefaultMinTradingDays = 5

// PriceProvider supplies the long-format price table for a symbol list and
// inclusive date range. The engine treats it as an opaque, possibly slow,
// possibly failing call; retries and timeouts belong to the provider.
type PriceProvider interface {
	GetPriceData(symbols []string, startDate, endDate string) ([]prices.PricePoint, error)
}

// Config holds engine parameters
type Config struct {
	Universe       []string
	RiskFreeRate   float64 // annual, e.g. 0.05
	MinTradingDays int     // 0 means DefaultMinTradingDays
	ReportDataGaps bool    // surface missing-symbol data as result warnings
}

// Engine runs forward backtests of decision weights against the equal-weight
// benchmark over the configured universe.
//
// Each Run is independent and reentrant: all state is derived from the
// inputs and the price table returned for that call, so concurrent runs for
// different decision dates need no coordination.
type Engine struct {
	provider       PriceProvider
	universe       []string
	riskFreeRate   float64
	minTradingDays int
	reportDataGaps bool
	log            zerolog.Logger
}

// NewEngine creates a new backtest engine
func NewEngine(provider PriceProvider, cfg Config, log zerolog.Logger) *Engine {
	minDays := cfg.MinTradingDays
	if minDays <= 0 {
		minDays = DefaultMinTradingDays
	}

	return &Engine{
		provider:       provider,
		universe:       cfg.Universe,
		riskFreeRate:   cfg.RiskFreeRate,
		minTradingDays: minDays,
		reportDataGaps: cfg.ReportDataGaps,
		log:            log.With().Str("service", "backtest").Logger(),
	}
}

// Run walks forward from the decision date over approximately forwardDays
// trading days and compares the weighted portfolio against the equal-weight
// benchmark.
//
// The request window starts at the decision date, never before it: the
// engine only ever asks the provider for data the rating pipeline could not
// have seen early. Failures never propagate - provider errors and too-thin
// windows degrade to a Result with zeroed metrics and Error set, so a broken
// backtest cannot abort the surrounding analysis run.
func (e *Engine) Run(asOfDate string, weights map[string]float64, forwardDays int) Result {
	start, err := time.Parse("2006-01-02", asOfDate)
	if err != nil {
		return e.errorResult(asOfDate, "", forwardDays, weights, fmt.Sprintf("invalid decision date %q", asOfDate))
	}

	endDate := AddTradingDays(start, forwardDays).Format("2006-01-02")

	e.log.Info().
		Str("as_of_date", asOfDate).
		Str("end_date", endDate).
		Int("forward_days", forwardDays).
		Msg("Running performance backtest")

	rows, err := e.provider.GetPriceData(e.universe, asOfDate, endDate)
	if err != nil {
		e.log.Error().Err(err).Str("as_of_date", asOfDate).Msg("Price data load failed")
		return e.errorResult(asOfDate, endDate, forwardDays, weights, fmt.Sprintf("failed to load price data: %v", err))
	}

	table := NewTable(rows)
	actualDays := len(table.Dates())

	if actualDays < e.minTradingDays {
		e.log.Warn().
			Int("trading_days", actualDays).
			Int("min_required", e.minTradingDays).
			Msg("Insufficient price data, skipping backtest")
		return e.errorResult(asOfDate, endDate, forwardDays, weights,
			fmt.Sprintf("insufficient price data: %d trading days, need %d", actualDays, e.minTradingDays))
	}

	portfolio := CalculatePerformance(table, weights)
	benchmark := CalculatePerformance(table, EqualWeights(e.universe))

	portfolioRisk := formulas.CalculateRiskMetrics(portfolio.DailyReturns, portfolio.TotalReturn, actualDays, e.riskFreeRate)
	benchmarkRisk := formulas.CalculateRiskMetrics(benchmark.DailyReturns, benchmark.TotalReturn, actualDays, e.riskFreeRate)

	result := Result{
		AsOfDate:       asOfDate,
		EndDate:        endDate,
		ForwardDays:    forwardDays,
		TestPeriodDays: actualDays,

		PortfolioReturn:      portfolio.TotalReturn,
		PortfolioVolatility:  portfolioRisk.AnnualizedVolatility,
		PortfolioSharpe:      portfolioRisk.SharpeRatio,
		PortfolioComposition: PortfolioComposition(weights),

		BenchmarkReturn:      benchmark.TotalReturn,
		BenchmarkVolatility:  benchmarkRisk.AnnualizedVolatility,
		BenchmarkSharpe:      benchmarkRisk.SharpeRatio,
		BenchmarkComposition: BenchmarkComposition(e.universe),

		ExcessReturn: portfolio.TotalReturn - benchmark.TotalReturn,

		PriceData:        rows,
		PortfolioWeights: weights,
	}

	if e.reportDataGaps {
		result.DataWarnings = e.dataGapWarnings(table, weights)
	}

	e.log.Info().
		Int("trading_days", actualDays).
		Float64("portfolio_return", result.PortfolioReturn).
		Float64("benchmark_return", result.BenchmarkReturn).
		Float64("excess_return", result.ExcessReturn).
		Float64("portfolio_sharpe", result.PortfolioSharpe).
		Float64("benchmark_sharpe", result.BenchmarkSharpe).
		Msg("Backtest complete")

	return result
}

// Growth recomputes the growth-of-$1 trajectories for a decision. It shares
// the engine's no-lookahead window and degraded-data rules with Run.
func (e *Engine) Growth(asOfDate string, weights map[string]float64, forwardDays int) (*Growth, error) {
	start, err := time.Parse("2006-01-02", asOfDate)
	if err != nil {
		return nil, fmt.Errorf("invalid decision date %q", asOfDate)
	}

	endDate := AddTradingDays(start, forwardDays).Format("2006-01-02")

	rows, err := e.provider.GetPriceData(e.universe, asOfDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load price data: %w", err)
	}

	table := NewTable(rows)
	if len(table.Dates()) < e.minTradingDays {
		return nil, fmt.Errorf("insufficient price data: %d trading days, need %d", len(table.Dates()), e.minTradingDays)
	}

	growth := GrowthSeries(table, weights, e.universe)
	return &growth, nil
}

// Universe returns the configured instrument universe
func (e *Engine) Universe() []string {
	return e.universe
}

// dataGapWarnings lists decision symbols whose rows in the window are too
// few to span a return. Such symbols contribute 0, which silently drags the
// portfolio toward cash - worth surfacing to the caller.
func (e *Engine) dataGapWarnings(table *Table, weights map[string]float64) []string {
	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var warnings []string
	for _, symbol := range symbols {
		if days := table.ObservedDays(symbol); days < 2 {
			warnings = append(warnings,
				fmt.Sprintf("%s has %d price rows in the test window; its weight contributes 0 return", symbol, days))
		}
	}

	return warnings
}

// errorResult builds the degraded result for failed runs: same shape as a
// success, zeroed metrics, non-empty Error.
func (e *Engine) errorResult(asOfDate, endDate string, forwardDays int, weights map[string]float64, msg string) Result {
	return Result{
		AsOfDate:         asOfDate,
		EndDate:          endDate,
		ForwardDays:      forwardDays,
		TestPeriodDays:   0,
		PortfolioWeights: weights,
		Error:            msg,
	}
}
