package backtest

// GrowthSeries reconstructs the growth-of-$1 trajectories for the decision
// weights and the equal-weight benchmark over the table's date index.
//
// Both series start at 1.0 on the first trading day and compound the same
// day-over-day weighted returns the performance aggregator produces:
// value[d] = value[d-1] × (1 + dailyReturn[d]). The final portfolio value
// minus 1 therefore matches the aggregator's daily-return compounding for
// the same inputs.
func GrowthSeries(table *Table, weights map[string]float64, universe []string) Growth {
	dates := table.Dates()
	benchmark := EqualWeights(universe)

	g := Growth{
		Dates:     dates,
		Portfolio: make([]float64, 0, len(dates)),
		Benchmark: make([]float64, 0, len(dates)),
	}

	if len(dates) == 0 {
		return g
	}

	g.Portfolio = append(g.Portfolio, 1.0)
	g.Benchmark = append(g.Benchmark, 1.0)

	for i := 1; i < len(dates); i++ {
		pr := dayReturn(table, weights, dates[i-1], dates[i])
		br := dayReturn(table, benchmark, dates[i-1], dates[i])

		g.Portfolio = append(g.Portfolio, g.Portfolio[i-1]*(1+pr))
		g.Benchmark = append(g.Benchmark, g.Benchmark[i-1]*(1+br))
	}

	return g
}
