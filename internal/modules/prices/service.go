package prices

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/alphaagents/backtester/internal/clients/findata"
)

// APIClient fetches daily bars from the remote prices API
type APIClient interface {
	GetDailyPrices(ticker, startDate, endDate string) ([]findata.Bar, error)
}

// Service loads daily price data, trying the API first and falling back to
// the local cache per symbol. A symbol only fails when both sources fail,
// and the load as a whole only fails when every requested symbol failed.
type Service struct {
	client APIClient
	cache  *Cache
	log    zerolog.Logger
}

// NewService creates a new price data service
func NewService(client APIClient, cache *Cache, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		log:    log.With().Str("service", "prices").Logger(),
	}
}

// GetPriceData returns the combined long-format price table for the given
// symbols within [startDate, endDate], sorted by (symbol, date).
func (s *Service) GetPriceData(symbols []string, startDate, endDate string) ([]PricePoint, error) {
	var table []PricePoint
	loaded := 0

	for _, symbol := range symbols {
		points, err := s.loadSymbol(symbol, startDate, endDate)
		if err != nil {
			s.log.Error().
				Err(err).
				Str("symbol", symbol).
				Msg("Failed to load price data from API and cache")
			continue
		}

		table = append(table, points...)
		loaded++
	}

	if loaded == 0 {
		return nil, fmt.Errorf("failed to load price data for any symbol")
	}

	sort.Slice(table, func(i, j int) bool {
		if table[i].Symbol != table[j].Symbol {
			return table[i].Symbol < table[j].Symbol
		}
		return table[i].Date < table[j].Date
	})

	s.log.Info().
		Int("rows", len(table)).
		Int("symbols", loaded).
		Str("start", startDate).
		Str("end", endDate).
		Msg("Loaded price table")

	return table, nil
}

// loadSymbol loads one symbol's rows, API first, cache as fallback
func (s *Service) loadSymbol(symbol, startDate, endDate string) ([]PricePoint, error) {
	bars, apiErr := s.client.GetDailyPrices(symbol, startDate, endDate)
	if apiErr == nil {
		points := barsToPoints(symbol, bars)

		// Keep the fallback cache current while the API is healthy
		if err := s.cache.Save(symbol, points); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to refresh price cache")
		}

		return points, nil
	}

	s.log.Warn().
		Err(apiErr).
		Str("symbol", symbol).
		Msg("API fetch failed, falling back to cache")

	points, cacheErr := s.cache.GetRange(symbol, startDate, endDate)
	if cacheErr != nil {
		return nil, fmt.Errorf("api: %v; cache: %w", apiErr, cacheErr)
	}

	return points, nil
}

// RefreshCache fetches the given range from the API and stores it in the
// cache for every symbol. Used by the scheduled sync job.
func (s *Service) RefreshCache(symbols []string, startDate, endDate string) error {
	var failed []string

	for _, symbol := range symbols {
		bars, err := s.client.GetDailyPrices(symbol, startDate, endDate)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache refresh fetch failed")
			failed = append(failed, symbol)
			continue
		}

		if err := s.cache.Save(symbol, barsToPoints(symbol, bars)); err != nil {
			s.log.Error().Err(err).Str("symbol", symbol).Msg("Cache refresh save failed")
			failed = append(failed, symbol)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("cache refresh failed for %d of %d symbols: %v", len(failed), len(symbols), failed)
	}

	return nil
}

// IndicatorCloses returns recent cached closes for a symbol, oldest first
func (s *Service) IndicatorCloses(symbol string, lookback int) ([]float64, error) {
	return s.cache.Closes(symbol, lookback)
}

func barsToPoints(symbol string, bars []findata.Bar) []PricePoint {
	points := make([]PricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, PricePoint{
			Date:   b.Date,
			Symbol: symbol,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return points
}
