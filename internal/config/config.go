package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath        string
	PriceCacheDir       string
	ReportsDir          string
	FinancialDataAPIKey string
	FinancialDataURL    string
	Universe            []string
	RiskFreeRate        float64
	ForwardDays         int
	LogLevel            string
	Port                int
	DevMode             bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("PORT", 8002),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/backtests.db"),
		PriceCacheDir:       getEnv("PRICE_CACHE_DIR", "./data/prices"),
		ReportsDir:          getEnv("REPORTS_DIR", "./outputs"),
		FinancialDataAPIKey: getEnv("FINANCIAL_DATASETS_API_KEY", ""),
		FinancialDataURL:    getEnv("FINANCIAL_DATASETS_URL", "https://api.financialdatasets.ai"),
		Universe:            getEnvAsList("UNIVERSE", []string{"AAPL", "MSFT", "NVDA", "TSLA"}),
		RiskFreeRate:        getEnvAsFloat("RISK_FREE_RATE", 0.05),
		ForwardDays:         getEnvAsInt("FORWARD_DAYS", 63),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if len(c.Universe) == 0 {
		return fmt.Errorf("UNIVERSE must list at least one symbol")
	}
	if c.ForwardDays <= 0 {
		return fmt.Errorf("FORWARD_DAYS must be positive, got %d", c.ForwardDays)
	}

	// Note: API key optional - the price service falls back to the local cache

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var symbols []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return defaultValue
	}
	return symbols
}
