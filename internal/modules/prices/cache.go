package prices

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
)

// Cache stores daily price history in one SQLite file per symbol.
// It is the documented fallback when the prices API is unavailable, and is
// kept fresh by the scheduled sync job.
type Cache struct {
	cacheDir string
	log      zerolog.Logger
}

// NewCache creates a new price cache rooted at cacheDir
func NewCache(cacheDir string, log zerolog.Logger) *Cache {
	return &Cache{
		cacheDir: cacheDir,
		log:      log.With().Str("component", "price_cache").Logger(),
	}
}

// GetRange fetches cached daily prices for a symbol within [startDate, endDate]
func (c *Cache) GetRange(symbol, startDate, endDate string) ([]PricePoint, error) {
	db, err := c.openDB(symbol, false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM daily_prices
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		p := PricePoint{Symbol: symbol}
		var volume sql.NullInt64

		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan cached price: %w", err)
		}

		if volume.Valid {
			p.Volume = volume.Int64
		}

		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached prices: %w", err)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no cached data for %s in range %s to %s", symbol, startDate, endDate)
	}

	return points, nil
}

// Save upserts daily prices for a symbol, creating the symbol database on
// first write
func (c *Cache) Save(symbol string, points []PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	db, err := c.openDB(symbol, true)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (date, open_price, high_price, low_price, close_price, volume)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			open_price = excluded.open_price,
			high_price = excluded.high_price,
			low_price = excluded.low_price,
			close_price = excluded.close_price,
			volume = excluded.volume
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(p.Date, p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert price %s %s: %w", symbol, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache transaction: %w", err)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("count", len(points)).
		Msg("Cached daily prices")

	return nil
}

// Coverage reports the first and last cached date for a symbol
func (c *Cache) Coverage(symbol string) (string, string, error) {
	db, err := c.openDB(symbol, false)
	if err != nil {
		return "", "", err
	}
	defer db.Close()

	var first, last sql.NullString
	err = db.QueryRow(`SELECT MIN(date), MAX(date) FROM daily_prices`).Scan(&first, &last)
	if err != nil {
		return "", "", fmt.Errorf("failed to query coverage for %s: %w", symbol, err)
	}

	if !first.Valid || !last.Valid {
		return "", "", fmt.Errorf("cache for %s is empty", symbol)
	}

	return first.String, last.String, nil
}

// Closes returns the most recent cached closing prices for a symbol in
// ascending date order, up to limit rows. Used for indicator snapshots.
func (c *Cache) Closes(symbol string, limit int) ([]float64, error) {
	db, err := c.openDB(symbol, false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT close_price FROM (
			SELECT date, close_price
			FROM daily_prices
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closes for %s: %w", symbol, err)
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var close float64
		if err := rows.Scan(&close); err != nil {
			return nil, fmt.Errorf("failed to scan close: %w", err)
		}
		closes = append(closes, close)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closes: %w", err)
	}

	return closes, nil
}

// openDB opens the per-symbol cache database. When create is false, a
// missing cache file is an error rather than an implicitly created empty DB.
func (c *Cache) openDB(symbol string, create bool) (*sql.DB, error) {
	// Convert symbol format: BRK.B -> BRK_B
	fileSymbol := strings.ReplaceAll(symbol, ".", "_")
	dbPath := filepath.Join(c.cacheDir, fileSymbol+".db")

	if !create {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("no cache file for %s: %w", symbol, err)
		}
	} else {
		if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache for %s: %w", symbol, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache for %s: %w", symbol, err)
	}

	if create {
		if _, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS daily_prices (
				date TEXT PRIMARY KEY,
				open_price REAL NOT NULL,
				high_price REAL NOT NULL,
				low_price REAL NOT NULL,
				close_price REAL NOT NULL,
				volume INTEGER
			)
		`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create cache schema for %s: %w", symbol, err)
		}
	}

	return db, nil
}
