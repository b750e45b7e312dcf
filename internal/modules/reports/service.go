package reports

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/alphaagents/backtester/internal/modules/backtest"
	"github.com/alphaagents/backtester/pkg/formulas"
)

// IndicatorSource supplies recent closing prices for indicator snapshots
type IndicatorSource interface {
	IndicatorCloses(symbol string, lookback int) ([]float64, error)
}

// rsiPeriod is the standard 14-day RSI window used in report snapshots
const rsiPeriod = 14

// Service produces CSV report files from backtest results
type Service struct {
	outputDir  string
	indicators IndicatorSource
	log        zerolog.Logger
}

// NewService creates a new reports service. indicators may be nil to omit
// the RSI snapshot from performance reports.
func NewService(outputDir string, indicators IndicatorSource, log zerolog.Logger) *Service {
	return &Service{
		outputDir:  outputDir,
		indicators: indicators,
		log:        log.With().Str("service", "reports").Logger(),
	}
}

// WritePerformanceCSV writes the portfolio-vs-benchmark metrics of one
// result as a single-row CSV and returns the file path.
func (s *Service) WritePerformanceCSV(result *backtest.Result) (string, error) {
	path := filepath.Join(s.outputDir, fmt.Sprintf("performance_%s.csv", result.AsOfDate))

	header := []string{
		"decision_date", "end_date", "test_period_days", "forward_days",
		"portfolio_return_pct", "benchmark_return_pct", "excess_return_pct",
		"portfolio_volatility_pct", "benchmark_volatility_pct",
		"portfolio_sharpe", "benchmark_sharpe",
		"portfolio_stocks", "portfolio_composition", "error",
	}

	row := []string{
		result.AsOfDate,
		result.EndDate,
		strconv.Itoa(result.TestPeriodDays),
		strconv.Itoa(result.ForwardDays),
		formatPct(result.PortfolioReturn),
		formatPct(result.BenchmarkReturn),
		formatPct(result.ExcessReturn),
		formatPct(result.PortfolioVolatility),
		formatPct(result.BenchmarkVolatility),
		strconv.FormatFloat(result.PortfolioSharpe, 'f', 3, 64),
		strconv.FormatFloat(result.BenchmarkSharpe, 'f', 3, 64),
		strconv.Itoa(len(result.PortfolioWeights)),
		result.PortfolioComposition,
		result.Error,
	}

	if err := s.writeCSV(path, [][]string{header, row}); err != nil {
		return "", err
	}

	s.log.Info().Str("path", path).Msg("Wrote performance report")
	return path, nil
}

// WriteGrowthCSV writes the growth-of-$1 series as one row per trading day
func (s *Service) WriteGrowthCSV(asOfDate string, growth *backtest.Growth) (string, error) {
	path := filepath.Join(s.outputDir, fmt.Sprintf("growth_%s.csv", asOfDate))

	records := make([][]string, 0, len(growth.Dates)+1)
	records = append(records, []string{"date", "portfolio_value", "benchmark_value"})

	for i, date := range growth.Dates {
		records = append(records, []string{
			date,
			strconv.FormatFloat(growth.Portfolio[i], 'f', 6, 64),
			strconv.FormatFloat(growth.Benchmark[i], 'f', 6, 64),
		})
	}

	if err := s.writeCSV(path, records); err != nil {
		return "", err
	}

	s.log.Info().Str("path", path).Int("days", len(growth.Dates)).Msg("Wrote growth report")
	return path, nil
}

// IndicatorRow is one symbol's technical snapshot at report time
type IndicatorRow struct {
	Symbol string   `json:"symbol"`
	RSI14  *float64 `json:"rsi_14,omitempty"`
}

// IndicatorSnapshot computes the RSI-14 snapshot for the given symbols from
// cached closes. Symbols with too little history get a nil RSI, not an error.
func (s *Service) IndicatorSnapshot(symbols []string) []IndicatorRow {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	rows := make([]IndicatorRow, 0, len(sorted))
	for _, symbol := range sorted {
		row := IndicatorRow{Symbol: symbol}

		if s.indicators != nil {
			closes, err := s.indicators.IndicatorCloses(symbol, rsiPeriod*3)
			if err != nil {
				s.log.Debug().Err(err).Str("symbol", symbol).Msg("No closes for indicator snapshot")
			} else {
				row.RSI14 = formulas.CalculateRSI(closes, rsiPeriod)
			}
		}

		rows = append(rows, row)
	}

	return rows
}

func (s *Service) writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64)
}
