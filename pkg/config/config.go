package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External market data providers
	AlphaVantage AlphaVantageConfig
	Polygon      PolygonConfig
	Finnhub      FinnhubConfig
	Yahoo        YahooConfig
	Finviz       FinvizConfig

	// LLM collaborator
	LLM LLMConfig

	// Strategy configuration file (optional YAML overrides)
	StrategyFile string

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
	Enabled bool
}

// PolygonConfig holds Polygon.io API configuration
type PolygonConfig struct {
	APIKey  string
	BaseURL string
	Enabled bool
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	APIKey  string
	BaseURL string
	Enabled bool
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	Enabled bool
}

// FinvizConfig holds the screener used for symbol discovery
type FinvizConfig struct {
	BaseURL string
	Enabled bool
}

// LLMConfig holds the OpenAI-compatible chat completion endpoint
type LLMConfig struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
	Timeout      time.Duration
	MaxTokens    int
}

// SchedulerConfig holds cron scheduler configuration
type SchedulerConfig struct {
	Enabled          bool
	UniverseRefresh  string // cron spec for discovery universe refresh
	UniverseCacheTTL time.Duration
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		AlphaVantage: AlphaVantageConfig{
			APIKey:  getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL: getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			Enabled: getEnvAsBool("ALPHA_VANTAGE_ENABLED", true),
		},

		Polygon: PolygonConfig{
			APIKey:  getEnv("POLYGON_API_KEY", ""),
			BaseURL: getEnv("POLYGON_BASE_URL", "https://api.polygon.io/v2"),
			Enabled: getEnvAsBool("POLYGON_ENABLED", true),
		},

		Finnhub: FinnhubConfig{
			APIKey:  getEnv("FINNHUB_API_KEY", ""),
			BaseURL: getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
			Enabled: getEnvAsBool("FINNHUB_ENABLED", true),
		},

		Yahoo: YahooConfig{
			Enabled: getEnvAsBool("YAHOO_ENABLED", true),
		},

		Finviz: FinvizConfig{
			BaseURL: getEnv("FINVIZ_BASE_URL", "https://finviz.com/screener.ashx"),
			Enabled: getEnvAsBool("FINVIZ_ENABLED", true),
		},

		LLM: LLMConfig{
			BaseURL:      getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:       getEnv("LLM_API_KEY", ""),
			DefaultModel: getEnv("LLM_DEFAULT_MODEL", "gpt-4o"),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", "45s"),
			MaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 1000),
		},

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		Scheduler: SchedulerConfig{
			Enabled:          getEnvAsBool("SCHEDULER_ENABLED", true),
			UniverseRefresh:  getEnv("SCHEDULER_UNIVERSE_REFRESH", "0 0 * * * *"),
			UniverseCacheTTL: getEnvAsDuration("SCHEDULER_UNIVERSE_CACHE_TTL", "1h"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}

	return value
}
