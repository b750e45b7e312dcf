package reports

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler exposes stored results and report generation over HTTP
type Handler struct {
	repo    *Repository
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(repo *Repository, service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

// HandleListResults returns recent stored backtest results.
// GET /api/reports/results?limit=N
func (h *Handler) HandleListResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	results, err := h.repo.ListRecent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list results")
		http.Error(w, "failed to list results", http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []StoredResult{}
	}

	writeJSON(w, http.StatusOK, results)
}

// HandleGetResult returns one stored result by ID.
// GET /api/reports/results/{id}
func (h *Handler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid result ID", http.StatusBadRequest)
		return
	}

	stored, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int("id", id).Msg("Failed to get result")
		http.Error(w, "failed to get result", http.StatusInternalServerError)
		return
	}
	if stored == nil {
		http.Error(w, "result not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// HandleExportCSV writes the performance CSV for a stored result and
// returns the file path.
// POST /api/reports/results/{id}/csv
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid result ID", http.StatusBadRequest)
		return
	}

	stored, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int("id", id).Msg("Failed to get result")
		http.Error(w, "failed to get result", http.StatusInternalServerError)
		return
	}
	if stored == nil {
		http.Error(w, "result not found", http.StatusNotFound)
		return
	}

	path, err := h.service.WritePerformanceCSV(&stored.Result)
	if err != nil {
		h.log.Error().Err(err).Int("id", id).Msg("Failed to write CSV")
		http.Error(w, "failed to write report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// HandleIndicators returns the RSI snapshot for the given symbols.
// GET /api/reports/indicators?symbols=AAPL,MSFT
func (h *Handler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	symbols := splitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		http.Error(w, "symbols query parameter is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.service.IndicatorSnapshot(symbols))
}

func splitSymbols(raw string) []string {
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
