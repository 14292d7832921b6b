package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Polymarket API / credentials
	PolymarketWSURL    string
	PolymarketGammaURL string
	PolyPrivateKey     string
	PolyFunder         string

	// Market Discovery
	PolyMarketSlugs      []string
	ForceDiscovery       bool
	DiscoveryCachePath   string
	DiscoveryCacheTTL    time.Duration
	DiscoveryPollInterval time.Duration

	// Arbitrage Detection
	ArbThresholdCents int

	// Execution
	DryRun       bool
	TestArb      bool
	TestArbType  string
	PriceLogging bool

	// Circuit Breaker
	CircuitEnabled              bool
	CircuitMaxPositionPerMarket int
	CircuitMaxTotalPosition     int
	CircuitMaxDailyLoss         float64
	CircuitMaxConsecutiveErrors int
	CircuitCooldownSecs         int

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		PolymarketWSURL:    getEnvOrDefault("POLYMARKET_WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/market"),
		PolymarketGammaURL: getEnvOrDefault("POLYMARKET_GAMMA_API_URL", "https://gamma-api.polymarket.com"),
		PolyPrivateKey:     os.Getenv("POLY_PRIVATE_KEY"),
		PolyFunder:         os.Getenv("POLY_FUNDER"),

		PolyMarketSlugs:       getSlugsOrDefault("POLY_MARKET_SLUGS"),
		ForceDiscovery:        getBoolOrDefault("FORCE_DISCOVERY", false),
		DiscoveryCachePath:    getEnvOrDefault("DISCOVERY_CACHE_PATH", "discovery_cache.json"),
		DiscoveryCacheTTL:     getDurationOrDefault("DISCOVERY_CACHE_TTL_SECS", 7200*time.Second),
		DiscoveryPollInterval: getDurationOrDefault("DISCOVERY_POLL_INTERVAL", 30*time.Second),

		ArbThresholdCents: getIntOrDefault("ARB_THRESHOLD_CENTS", 100),

		DryRun:       getBoolOrDefault("DRY_RUN", true),
		TestArb:      getBoolOrDefault("TEST_ARB", false),
		TestArbType:  getEnvOrDefault("TEST_ARB_TYPE", "PolyOnly"),
		PriceLogging: getBoolOrDefault("PRICE_LOGGING", false),

		CircuitEnabled:              getBoolOrDefault("CIRCUIT_ENABLED", true),
		CircuitMaxPositionPerMarket: getIntOrDefault("CIRCUIT_MAX_POSITION_PER_MARKET", 50),
		CircuitMaxTotalPosition:     getIntOrDefault("CIRCUIT_MAX_TOTAL_POSITION", 200),
		CircuitMaxDailyLoss:         getFloat64OrDefault("CIRCUIT_MAX_DAILY_LOSS", 100.0),
		CircuitMaxConsecutiveErrors: getIntOrDefault("CIRCUIT_MAX_CONSECUTIVE_ERRORS", 5),
		CircuitCooldownSecs:         getIntOrDefault("CIRCUIT_COOLDOWN_SECS", 300),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "polymarket"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "polymarket123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "polymarket_arb"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}

	if c.PolymarketWSURL == "" {
		return errors.New("POLYMARKET_WS_URL cannot be empty")
	}

	if c.PolymarketGammaURL == "" {
		return errors.New("POLYMARKET_GAMMA_API_URL cannot be empty")
	}

	if !c.DryRun && (c.PolyPrivateKey == "" || c.PolyFunder == "") {
		return errors.New("POLY_PRIVATE_KEY and POLY_FUNDER are required when DRY_RUN is false")
	}

	if c.ArbThresholdCents <= 0 || c.ArbThresholdCents > 100 {
		return fmt.Errorf("ARB_THRESHOLD_CENTS must be in (0, 100], got %d", c.ArbThresholdCents)
	}

	if c.CircuitMaxPositionPerMarket <= 0 {
		return fmt.Errorf("CIRCUIT_MAX_POSITION_PER_MARKET must be positive, got %d", c.CircuitMaxPositionPerMarket)
	}

	if c.CircuitMaxTotalPosition < c.CircuitMaxPositionPerMarket {
		return fmt.Errorf("CIRCUIT_MAX_TOTAL_POSITION (%d) must be >= CIRCUIT_MAX_POSITION_PER_MARKET (%d)",
			c.CircuitMaxTotalPosition, c.CircuitMaxPositionPerMarket)
	}

	if c.CircuitMaxDailyLoss <= 0 {
		return fmt.Errorf("CIRCUIT_MAX_DAILY_LOSS must be positive, got %f", c.CircuitMaxDailyLoss)
	}

	if c.CircuitMaxConsecutiveErrors <= 0 {
		return fmt.Errorf("CIRCUIT_MAX_CONSECUTIVE_ERRORS must be positive, got %d", c.CircuitMaxConsecutiveErrors)
	}

	if c.CircuitCooldownSecs <= 0 {
		return fmt.Errorf("CIRCUIT_COOLDOWN_SECS must be positive, got %d", c.CircuitCooldownSecs)
	}

	if c.DiscoveryCacheTTL <= 0 {
		return fmt.Errorf("DISCOVERY_CACHE_TTL_SECS must be positive, got %s", c.DiscoveryCacheTTL)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getSlugsOrDefault(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	slugs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			slugs = append(slugs, p)
		}
	}
	return slugs
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept either a Go duration string ("7200s") or a bare integer
	// number of seconds, matching the env vars that are named *_SECS.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}
