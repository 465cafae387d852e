package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"clanhall/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Ledger configuration
	StartingBalance int64

	// Auction configuration
	LotDuration         time.Duration // how long each lot stays open once activated
	AntiSniperThreshold time.Duration // default last-moment window that triggers an extension
	AntiSniperExtension time.Duration // default extension applied inside the window

	// Randomizer configuration
	MinWeightBonus float64 // bonus granted to the strongest eligible member
	MaxWeightBonus float64 // bonus granted to the weakest eligible member

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Defaults
		StartingBalance:     0,
		LotDuration:         10 * time.Minute,
		AntiSniperThreshold: 30 * time.Second,
		AntiSniperExtension: 30 * time.Second,
		MinWeightBonus:      0.0,
		MaxWeightBonus:      1.0,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if duration := os.Getenv("LOT_DURATION"); duration != "" {
		if parsed, err := time.ParseDuration(duration); err == nil {
			config.LotDuration = parsed
		}
	}
	if threshold := os.Getenv("ANTI_SNIPER_THRESHOLD"); threshold != "" {
		if parsed, err := time.ParseDuration(threshold); err == nil {
			config.AntiSniperThreshold = parsed
		}
	}
	if extension := os.Getenv("ANTI_SNIPER_EXTENSION"); extension != "" {
		if parsed, err := time.ParseDuration(extension); err == nil {
			config.AntiSniperExtension = parsed
		}
	}
	if bonus := os.Getenv("MIN_WEIGHT_BONUS"); bonus != "" {
		if parsed, err := strconv.ParseFloat(bonus, 64); err == nil {
			config.MinWeightBonus = parsed
		}
	}
	if bonus := os.Getenv("MAX_WEIGHT_BONUS"); bonus != "" {
		if parsed, err := strconv.ParseFloat(bonus, 64); err == nil {
			config.MaxWeightBonus = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		StartingBalance:     0,
		LotDuration:         10 * time.Minute,
		AntiSniperThreshold: 30 * time.Second,
		AntiSniperExtension: 30 * time.Second,
		MinWeightBonus:      0.0,
		MaxWeightBonus:      1.0,
	}
}
