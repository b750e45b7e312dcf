package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alphaagents/backtester/internal/clients/findata"
	"github.com/alphaagents/backtester/internal/config"
	"github.com/alphaagents/backtester/internal/database"
	"github.com/alphaagents/backtester/internal/modules/backtest"
	"github.com/alphaagents/backtester/internal/modules/prices"
	"github.com/alphaagents/backtester/internal/modules/reports"
	"github.com/alphaagents/backtester/internal/scheduler"
	"github.com/alphaagents/backtester/internal/server"
	"github.com/alphaagents/backtester/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't configured yet, so build a default one for the exit
		log := logger.New(logger.Config{Level: "info", Pretty: true})
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting backtest service")

	// Initialize results database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Price data: API client with local cache fallback
	client := findata.NewClient(cfg.FinancialDataURL, cfg.FinancialDataAPIKey, log)
	cache := prices.NewCache(cfg.PriceCacheDir, log)
	priceService := prices.NewService(client, cache, log)

	// Core backtest engine
	engine := backtest.NewEngine(priceService, backtest.Config{
		Universe:       cfg.Universe,
		RiskFreeRate:   cfg.RiskFreeRate,
		ReportDataGaps: true,
	}, log)

	// Reporting and persistence
	resultRepo := reports.NewRepository(db.Conn(), log)
	reportService := reports.NewService(cfg.ReportsDir, priceService, log)

	backtestHandler := backtest.NewHandler(engine, resultRepo, log)
	pricesHandler := prices.NewHandler(cache, log)
	reportsHandler := reports.NewHandler(resultRepo, reportService, log)

	// Background cache refresh (weekday evenings, after US close)
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	priceSync := scheduler.NewPriceSync(priceService, cfg.Universe, log)
	if err := sched.AddJob("30 22 * * MON-FRI", priceSync); err != nil {
		log.Fatal().Err(err).Msg("Failed to register price sync job")
	}

	// HTTP server
	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Backtest: backtestHandler,
		Prices:   pricesHandler,
		Reports:  reportsHandler,
		DevMode:  cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
