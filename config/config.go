package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"yinbot/database"
	"yinbot/models"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Optional guild for command registration, global when empty

	// Database configuration
	DatabaseURL          string
	DatabaseName         string
	StoreTimeout         time.Duration // Upper bound on every store call
	ConnectRetryInterval time.Duration // Fixed wait between startup connection attempts

	// Bot configuration
	DefaultPrefix string

	// Ledger recency windows
	WarningRecencyMonths    int
	ModerationRecencyMonths int

	// NATS configuration
	NATSServers string // Empty disables event mirroring

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
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

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
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

// load loads configuration from the environment, reading .env first when present
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using process environment")
	}

	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		DefaultPrefix: getEnvWithDefault("DEFAULT_PREFIX", models.DefaultPrefix),
		NATSServers:   os.Getenv("NATS_SERVERS"),
		LogLevel:      getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:   os.Getenv("ENVIRONMENT"),
	}

	var err error
	if config.StoreTimeout, err = getDurationWithDefault("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if config.ConnectRetryInterval, err = getDurationWithDefault("CONNECT_RETRY_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if config.WarningRecencyMonths, err = getIntWithDefault("WARNING_RECENCY_MONTHS", 6); err != nil {
		return nil, err
	}
	if config.ModerationRecencyMonths, err = getIntWithDefault("MODERATION_RECENCY_MONTHS", 3); err != nil {
		return nil, err
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if len([]rune(c.DefaultPrefix)) == 0 || len([]rune(c.DefaultPrefix)) > models.MaxPrefixLength {
		return fmt.Errorf("DEFAULT_PREFIX must be 1 to %d characters", models.MaxPrefixLength)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.ConnectRetryInterval <= 0 {
		return fmt.Errorf("CONNECT_RETRY_INTERVAL must be positive")
	}
	if c.WarningRecencyMonths <= 0 || c.ModerationRecencyMonths <= 0 {
		return fmt.Errorf("recency windows must be at least one month")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if c.Environment == "test" {
		return nil
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

// RecencyWindow returns the trailing window used for recent listings of a ledger
func (c *Config) RecencyWindow(kind models.LedgerKind) (months int) {
	if kind == models.LedgerModeration {
		return c.ModerationRecencyMonths
	}
	return c.WarningRecencyMonths
}

// ConfigureLogging applies the configured level and picks a formatter for the environment
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// NATSServerList splits NATSServers on commas, dropping blanks
func (c *Config) NATSServerList() []string {
	var servers []string
	for _, s := range strings.Split(c.NATSServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:            "test-token",
		DefaultPrefix:           models.DefaultPrefix,
		StoreTimeout:            5 * time.Second,
		ConnectRetryInterval:    100 * time.Millisecond,
		WarningRecencyMonths:    6,
		ModerationRecencyMonths: 3,
		LogLevel:                "debug",
		Environment:             "test",
	}
}
