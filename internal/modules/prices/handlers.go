package prices

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler exposes the local price cache over HTTP
type Handler struct {
	cache *Cache
	log   zerolog.Logger
}

// NewHandler creates a new prices handler
func NewHandler(cache *Cache, log zerolog.Logger) *Handler {
	return &Handler{
		cache: cache,
		log:   log.With().Str("handler", "prices").Logger(),
	}
}

// HandleHistory returns cached daily rows for one symbol.
// GET /api/prices/history?symbol=AAPL&start=2024-08-20&end=2024-09-03
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	start := q.Get("start")
	end := q.Get("end")

	if symbol == "" || start == "" || end == "" {
		http.Error(w, "symbol, start and end query parameters are required", http.StatusBadRequest)
		return
	}

	points, err := h.cache.GetRange(symbol, start, end)
	if err != nil {
		h.log.Debug().Err(err).Str("symbol", symbol).Msg("No cached prices for request")
		http.Error(w, "no cached price data for symbol", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(points)
}

// HandleCoverage reports the cached date range for one symbol.
// GET /api/prices/coverage?symbol=AAPL
func (h *Handler) HandleCoverage(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol query parameter is required", http.StatusBadRequest)
		return
	}

	first, last, err := h.cache.Coverage(symbol)
	if err != nil {
		http.Error(w, "no cached price data for symbol", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"symbol":     symbol,
		"first_date": first,
		"last_date":  last,
	})
}
