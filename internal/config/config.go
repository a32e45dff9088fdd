package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// MinGoogleCacheTTL keeps every sheet read from downloading the whole sheet.
const MinGoogleCacheTTL = time.Second

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Stores
	SQLiteDBPath   string
	MemorySeedFile string

	// Dashboard registry override; empty uses the built-in registry
	DashboardRegistryFile string

	// AMQP (optional; empty URL disables tab-change events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets. GoogleCacheTTL is how long one fetched sheet snapshot
	// serves reads; it is independent of the HTTP result cache.
	GoogleSpreadsheetID string
	GoogleStoreSheet    string
	GoogleCacheTTL      time.Duration

	// Worker. A non-empty SyncSchedule (cron spec) replaces SyncInterval.
	SyncInterval time.Duration
	SyncSchedule string
	SyncTimezone string

	// Aggregation and caching
	CacheTTL    time.Duration
	CacheSize   int
	FanoutLimit int

	// Requests per minute per client IP; 0 disables rate limiting
	RateLimitPerMinute int

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", BackendMemory)),

		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/gemdash.db"),
		MemorySeedFile: getEnv("MEMORY_SEED_FILE", "./data/seed.json"),

		DashboardRegistryFile: getEnv("DASHBOARD_REGISTRY_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gemdash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", ""),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleStoreSheet:    getEnv("GOOGLE_STORE_SHEET", "Store"),
		GoogleCacheTTL:      getEnvDuration("GOOGLE_CACHE_TTL", 30*time.Second),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 5*time.Minute),
		SyncSchedule: getEnv("SYNC_SCHEDULE", ""),
		SyncTimezone: getEnv("SYNC_TIMEZONE", "Asia/Colombo"),

		CacheTTL:    getEnvDuration("CACHE_TTL", time.Minute),
		CacheSize:   getEnvInt("CACHE_SIZE", 128),
		FanoutLimit: getEnvInt("FANOUT_LIMIT", 8),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the settings the dashboard API needs and reports every
// problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			problems = append(problems, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleCacheTTL < MinGoogleCacheTTL {
			problems = append(problems, fmt.Sprintf("invalid Google cache TTL %v: must be at least %v", c.GoogleCacheTTL, MinGoogleCacheTTL))
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [memory sheets sqlite]", c.DataBackend))
	}

	problems = append(problems, c.amqpProblems()...)

	if c.CacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.CacheSize < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}
	if c.FanoutLimit < 1 || c.FanoutLimit > 64 {
		problems = append(problems, fmt.Sprintf("invalid fanout limit %d: must be between 1 and 64", c.FanoutLimit))
	}
	if c.RateLimitPerMinute < 0 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimitPerMinute))
	}

	return combine(problems)
}

// ValidateWorker checks the settings of the sheets-to-sqlite mirror worker.
func (c *Config) ValidateWorker() error {
	var problems []string
	if c.GoogleSpreadsheetID == "" {
		problems = append(problems, "Google Spreadsheet ID is required by the sync worker")
	}
	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path is required by the sync worker")
	}
	if c.SyncSchedule != "" {
		if _, err := cron.ParseStandard(c.SyncSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid sync schedule '%s': %v", c.SyncSchedule, err))
		}
		if _, err := time.LoadLocation(c.SyncTimezone); err != nil {
			problems = append(problems, fmt.Sprintf("invalid sync timezone '%s': %v", c.SyncTimezone, err))
		}
	} else if c.SyncInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}
	problems = append(problems, c.amqpProblems()...)
	return combine(problems)
}

func (c *Config) amqpProblems() []string {
	if c.AMQPURL == "" {
		return nil
	}
	var problems []string
	if u, err := url.Parse(c.AMQPURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
		problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
	}
	if c.AMQPExchange == "" {
		problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	return problems
}

func combine(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
