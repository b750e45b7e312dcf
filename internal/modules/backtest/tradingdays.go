package backtest

import "time"

// AddTradingDays approximates adding trading days to a calendar date using
// a 5-trading-day week: calendarDays = tradingDays × 7/5, truncated.
//
// There is no holiday or market-closure awareness; callers accept a few
// calendar days of slack, which the insufficient-data guard in the engine
// absorbs for short windows.
func AddTradingDays(start time.Time, tradingDays int) time.Time {
	calendarDays := tradingDays * 7 / 5
	return start.AddDate(0, 0, calendarDays)
}
