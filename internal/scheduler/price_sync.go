package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alphaagents/backtester/internal/modules/prices"
)

// priceSyncLookbackDays covers enough look-back for indicators plus the
// longest forward test window, with margin for cache reuse across runs.
const priceSyncLookbackDays = 365

// PriceSync keeps the local price cache fresh so backtests keep working
// when the prices API is down
type PriceSync struct {
	service  *prices.Service
	universe []string
	log      zerolog.Logger
}

// NewPriceSync creates a new price cache sync job
func NewPriceSync(service *prices.Service, universe []string, log zerolog.Logger) *PriceSync {
	return &PriceSync{
		service:  service,
		universe: universe,
		log:      log.With().Str("job", "price_sync").Logger(),
	}
}

// Name returns the job name
func (j *PriceSync) Name() string {
	return "price_sync"
}

// Run refreshes the cache for the configured universe
func (j *PriceSync) Run() error {
	end := time.Now()
	start := end.AddDate(0, 0, -priceSyncLookbackDays)

	j.log.Info().
		Int("symbols", len(j.universe)).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Msg("Refreshing price cache")

	return j.service.RefreshCache(j.universe, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
