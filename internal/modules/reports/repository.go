package reports

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alphaagents/backtester/internal/modules/backtest"
)

// StoredResult is a persisted backtest result row. The raw price table is
// not persisted - it is visualization payload, reproducible from the cache.
type StoredResult struct {
	ID        int             `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Result    backtest.Result `json:"result"`
}

// Repository persists backtest results in the service database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new results repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "reports").Logger(),
	}
}

// Create inserts a backtest result and returns its row ID
func (r *Repository) Create(result *backtest.Result) (int64, error) {
	weightsJSON, err := json.Marshal(result.PortfolioWeights)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal weights: %w", err)
	}

	var warningsJSON []byte
	if len(result.DataWarnings) > 0 {
		warningsJSON, err = json.Marshal(result.DataWarnings)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal warnings: %w", err)
		}
	}

	query := `
		INSERT INTO backtest_results (
			as_of_date, end_date, forward_days, test_period_days,
			portfolio_return, portfolio_volatility, portfolio_sharpe, portfolio_composition,
			benchmark_return, benchmark_volatility, benchmark_sharpe, benchmark_composition,
			excess_return, weights_json, warnings_json, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().Format("2006-01-02 15:04:05")

	res, err := r.db.Exec(
		query,
		result.AsOfDate,
		result.EndDate,
		result.ForwardDays,
		result.TestPeriodDays,
		result.PortfolioReturn,
		result.PortfolioVolatility,
		result.PortfolioSharpe,
		result.PortfolioComposition,
		result.BenchmarkReturn,
		result.BenchmarkVolatility,
		result.BenchmarkSharpe,
		result.BenchmarkComposition,
		result.ExcessReturn,
		string(weightsJSON),
		nullableString(warningsJSON),
		nullableStringValue(result.Error),
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert backtest result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// GetByID retrieves a stored result by row ID, or nil when absent
func (r *Repository) GetByID(id int) (*StoredResult, error) {
	row := r.db.QueryRow(selectColumns+" FROM backtest_results WHERE id = ?", id)

	stored, err := scanStoredResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest result: %w", err)
	}

	return stored, nil
}

// ListRecent returns the most recent stored results, newest first
func (r *Repository) ListRecent(limit int) ([]StoredResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(selectColumns+`
		FROM backtest_results
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtest results: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		stored, err := scanStoredResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backtest result: %w", err)
		}
		results = append(results, *stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backtest results: %w", err)
	}

	return results, nil
}

const selectColumns = `
	SELECT id, as_of_date, end_date, forward_days, test_period_days,
	       portfolio_return, portfolio_volatility, portfolio_sharpe, portfolio_composition,
	       benchmark_return, benchmark_volatility, benchmark_sharpe, benchmark_composition,
	       excess_return, weights_json, warnings_json, error, created_at
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStoredResult(row rowScanner) (*StoredResult, error) {
	var stored StoredResult
	var weightsJSON string
	var warningsJSON, errMsg sql.NullString
	var createdAt string

	err := row.Scan(
		&stored.ID,
		&stored.Result.AsOfDate,
		&stored.Result.EndDate,
		&stored.Result.ForwardDays,
		&stored.Result.TestPeriodDays,
		&stored.Result.PortfolioReturn,
		&stored.Result.PortfolioVolatility,
		&stored.Result.PortfolioSharpe,
		&stored.Result.PortfolioComposition,
		&stored.Result.BenchmarkReturn,
		&stored.Result.BenchmarkVolatility,
		&stored.Result.BenchmarkSharpe,
		&stored.Result.BenchmarkComposition,
		&stored.Result.ExcessReturn,
		&weightsJSON,
		&warningsJSON,
		&errMsg,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(weightsJSON), &stored.Result.PortfolioWeights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	if warningsJSON.Valid && warningsJSON.String != "" {
		if err := json.Unmarshal([]byte(warningsJSON.String), &stored.Result.DataWarnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	if errMsg.Valid {
		stored.Result.Error = errMsg.String
	}

	stored.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)

	return &stored, nil
}

func nullableString(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nullableStringValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
