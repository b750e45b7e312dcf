package reports

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaagents/backtester/internal/database"
	"github.com/alphaagents/backtester/internal/modules/backtest"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() { db.Close() })
	return db.Conn()
}

func sampleResult() backtest.Result {
	return backtest.Result{
		AsOfDate:             "2024-08-20",
		EndDate:              "2024-09-03",
		ForwardDays:          10,
		TestPeriodDays:       15,
		PortfolioReturn:      0.10,
		PortfolioVolatility:  0.18,
		PortfolioSharpe:      1.25,
		PortfolioComposition: "FLAT: 50.0%, WINNER: 50.0%",
		BenchmarkReturn:      0.08,
		BenchmarkVolatility:  0.20,
		BenchmarkSharpe:      0.95,
		BenchmarkComposition: "Equal-weight FLAT, WINNER (50.0% each)",
		ExcessReturn:         0.02,
		PortfolioWeights:     map[string]float64{"WINNER": 0.5, "FLAT": 0.5},
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	result := sampleResult()
	id, err := repo.Create(&result)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	stored, err := repo.GetByID(int(id))
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "2024-08-20", stored.Result.AsOfDate)
	assert.Equal(t, "2024-09-03", stored.Result.EndDate)
	assert.Equal(t, 15, stored.Result.TestPeriodDays)
	assert.InDelta(t, 0.10, stored.Result.PortfolioReturn, 1e-12)
	assert.InDelta(t, 0.02, stored.Result.ExcessReturn, 1e-12)
	assert.Equal(t, map[string]float64{"WINNER": 0.5, "FLAT": 0.5}, stored.Result.PortfolioWeights)
	assert.Empty(t, stored.Result.Error)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRepository_CreateDegradedResult(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	result := backtest.Result{
		AsOfDate:         "2024-08-20",
		EndDate:          "2024-09-03",
		ForwardDays:      10,
		PortfolioWeights: map[string]float64{},
		DataWarnings:     []string{"GHOST has 0 price rows in the test window; its weight contributes 0 return"},
		Error:            "failed to load price data: connection refused",
	}

	id, err := repo.Create(&result)
	require.NoError(t, err)

	stored, err := repo.GetByID(int(id))
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, result.Error, stored.Result.Error)
	assert.Len(t, stored.Result.DataWarnings, 1)
	assert.Zero(t, stored.Result.PortfolioReturn)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	stored, err := repo.GetByID(42)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRepository_ListRecent(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	for _, date := range []string{"2024-08-20", "2024-08-21", "2024-08-22"} {
		result := sampleResult()
		result.AsOfDate = date
		_, err := repo.Create(&result)
		require.NoError(t, err)
	}

	results, err := repo.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Newest first by insert order
	assert.Equal(t, "2024-08-22", results[0].Result.AsOfDate)
	assert.Equal(t, "2024-08-21", results[1].Result.AsOfDate)
}
