package backtest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// ResultStore persists completed backtest results. The engine itself never
// persists anything; storage is wired in at the handler boundary.
type ResultStore interface {
	Create(result *Result) (int64, error)
}

// Handler exposes the backtest engine over HTTP
type Handler struct {
	engine *Engine
	store  ResultStore
	log    zerolog.Logger
}

// NewHandler creates a new backtest handler. store may be nil to disable
// persistence.
func NewHandler(engine *Engine, store ResultStore, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		log:    log.With().Str("handler", "backtest").Logger(),
	}
}

// HandleRun runs a backtest for a decision record.
// POST /api/backtest/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var decision Decision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if decision.AsOfDate == "" {
		http.Error(w, "as_of_date is required", http.StatusBadRequest)
		return
	}

	forwardDays := decision.ForwardDays
	if forwardDays <= 0 {
		forwardDays = 63 // ~3 months of trading days
	}

	result := h.engine.Run(decision.AsOfDate, decision.Weights, forwardDays)

	if h.store != nil {
		if _, err := h.store.Create(&result); err != nil {
			// Persistence is best-effort; the computed result still goes out
			h.log.Error().Err(err).Str("as_of_date", result.AsOfDate).Msg("Failed to store backtest result")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGrowth returns the growth-of-$1 series for a decision record.
// POST /api/backtest/growth
func (h *Handler) HandleGrowth(w http.ResponseWriter, r *http.Request) {
	var decision Decision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if decision.AsOfDate == "" {
		http.Error(w, "as_of_date is required", http.StatusBadRequest)
		return
	}

	forwardDays := decision.ForwardDays
	if forwardDays <= 0 {
		forwardDays = 63
	}

	growth, err := h.engine.Growth(decision.AsOfDate, decision.Weights, forwardDays)
	if err != nil {
		h.log.Warn().Err(err).Str("as_of_date", decision.AsOfDate).Msg("Growth series unavailable")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, growth)
}

// HandleUniverse returns the configured instrument universe.
// GET /api/backtest/universe
func (h *Handler) HandleUniverse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"universe":  h.engine.Universe(),
		"benchmark": BenchmarkComposition(h.engine.Universe()),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
