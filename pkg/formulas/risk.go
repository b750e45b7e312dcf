package formulas

// RiskMetrics holds the annualized risk figures derived from a daily return
// series over a short forward test window.
type RiskMetrics struct {
	AnnualizedVolatility float64
	SharpeRatio          float64
}

// AnnualizedReturn scales a total return over an observed number of trading
// days to an annual figure.
//
// This is a simple linear scaling (totalReturn × 252/days), not geometric
// compounding. Over the short windows we test (weeks to a quarter) the
// difference is negligible and the linear form keeps the Sharpe input
// directly comparable across window lengths.
func AnnualizedReturn(totalReturn float64, tradingDays int) float64 {
	if tradingDays <= 0 {
		return 0
	}
	return totalReturn * (TradingDaysPerYear / float64(tradingDays))
}

// CalculateRiskMetrics computes annualized volatility and Sharpe ratio from a
// daily return series and the total return observed over tradingDays.
//
// Sharpe = (annualized return − annual risk-free rate) / annualized volatility.
// A zero-volatility series (flat prices, all-cash portfolio, or fewer than two
// observations) yields Sharpe 0 rather than dividing by zero. That masks a
// genuinely riskless positive carry, which is acceptable here: a zero-vol
// window almost always means no data rather than a riskless asset.
func CalculateRiskMetrics(dailyReturns []float64, totalReturn float64, tradingDays int, riskFreeRate float64) RiskMetrics {
	vol := AnnualizedVolatility(dailyReturns)
	if vol == 0 {
		return RiskMetrics{AnnualizedVolatility: 0, SharpeRatio: 0}
	}

	excess := AnnualizedReturn(totalReturn, tradingDays) - riskFreeRate

	return RiskMetrics{
		AnnualizedVolatility: vol,
		SharpeRatio:          excess / vol,
	}
}
