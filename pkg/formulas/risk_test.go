package formulas

import (
	"math"
	"testing"
)

func TestAnnualizedReturn(t *testing.T) {
	tests := []struct {
		name        string
		totalReturn float64
		tradingDays int
		expected    float64
	}{
		{
			name:        "quarter window scales 4x",
			totalReturn: 0.05,
			tradingDays: 63,
			expected:    0.20,
		},
		{
			name:        "full year is identity",
			totalReturn: 0.10,
			tradingDays: 252,
			expected:    0.10,
		},
		{
			name:        "negative return scales too",
			totalReturn: -0.02,
			tradingDays: 21,
			expected:    -0.24,
		},
		{
			name:        "zero days guards division",
			totalReturn: 0.10,
			tradingDays: 0,
			expected:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnnualizedReturn(tt.totalReturn, tt.tradingDays)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Expected %.6f, got %.6f", tt.expected, result)
			}
		})
	}
}

func TestCalculateRiskMetrics_FlatSeries(t *testing.T) {
	// Perfectly flat daily returns: zero variance must yield Sharpe 0,
	// never NaN or Inf.
	daily := []float64{0, 0, 0, 0, 0}

	metrics := CalculateRiskMetrics(daily, 0.0, 6, 0.05)

	if metrics.AnnualizedVolatility != 0 {
		t.Errorf("Expected zero volatility, got %f", metrics.AnnualizedVolatility)
	}
	if metrics.SharpeRatio != 0 {
		t.Errorf("Expected zero Sharpe, got %f", metrics.SharpeRatio)
	}
}

func TestCalculateRiskMetrics_Finite(t *testing.T) {
	daily := []float64{0.01, -0.005, 0.02, 0.003, -0.01, 0.007}

	metrics := CalculateRiskMetrics(daily, 0.025, 7, 0.05)

	if math.IsNaN(metrics.AnnualizedVolatility) || math.IsInf(metrics.AnnualizedVolatility, 0) {
		t.Errorf("Volatility not finite: %f", metrics.AnnualizedVolatility)
	}
	if math.IsNaN(metrics.SharpeRatio) || math.IsInf(metrics.SharpeRatio, 0) {
		t.Errorf("Sharpe not finite: %f", metrics.SharpeRatio)
	}
	if metrics.AnnualizedVolatility <= 0 {
		t.Errorf("Expected positive volatility, got %f", metrics.AnnualizedVolatility)
	}
}

func TestCalculateRiskMetrics_KnownValues(t *testing.T) {
	// Constant positive daily returns still have zero sample variance,
	// so use an alternating series with known stddev.
	daily := []float64{0.01, -0.01, 0.01, -0.01}

	metrics := CalculateRiskMetrics(daily, 0.10, 10, 0.05)

	// Sample stddev of {0.01,-0.01,0.01,-0.01} = sqrt(4*0.0001/3)
	wantVol := math.Sqrt(4*0.0001/3) * math.Sqrt(252)
	if math.Abs(metrics.AnnualizedVolatility-wantVol) > 1e-9 {
		t.Errorf("Expected volatility %.6f, got %.6f", wantVol, metrics.AnnualizedVolatility)
	}

	wantSharpe := (0.10*(252.0/10.0) - 0.05) / wantVol
	if math.Abs(metrics.SharpeRatio-wantSharpe) > 1e-9 {
		t.Errorf("Expected Sharpe %.6f, got %.6f", wantSharpe, metrics.SharpeRatio)
	}
}
