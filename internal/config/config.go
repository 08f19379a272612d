package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend string
	DataDir     string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleProjectionSheet   string
	GoogleAccountsSheet     string

	// Forecast
	StartingBalance     decimal.Decimal
	WindowDays          int
	HorizonDays         int
	InsightCategory     string
	InsightRecentDays   int
	InsightBaselineDays int
	CategoriesFile      string
	CurrencySymbol      string
	CurrencyDecimals    int

	// Worker
	RefreshInterval   time.Duration
	SnapshotCacheSize int
	SnapshotCacheTTL  time.Duration
	SyncBatchSize     int
	SyncInterval      time.Duration
	SyncMaxRetries    int

	// Demo data
	DemoSeed int64
}

func Load() *Config {
	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend: getEnv("DATA_BACKEND", BackendMemory),
		DataDir:     getEnv("DATA_DIR", "./data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_refresh"),

		GoogleSpreadsheetID:     getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleTransactionsSheet: getEnv("GOOGLE_TRANSACTIONS_SHEET", "Transactions"),
		GoogleProjectionSheet:   getEnv("GOOGLE_PROJECTION_SHEET", "Projection"),
		GoogleAccountsSheet:     getEnv("GOOGLE_ACCOUNTS_SHEET", "Accounts"),

		StartingBalance:     getEnvDecimal("STARTING_BALANCE", decimal.NewFromInt(20000)),
		WindowDays:          getEnvInt("WINDOW_DAYS", 30),
		HorizonDays:         getEnvInt("HORIZON_DAYS", 30),
		InsightCategory:     getEnv("INSIGHT_CATEGORY", "Food"),
		InsightRecentDays:   getEnvInt("INSIGHT_RECENT_DAYS", 7),
		InsightBaselineDays: getEnvInt("INSIGHT_BASELINE_DAYS", 21),
		CategoriesFile:      getEnv("CATEGORIES_FILE", ""),
		CurrencySymbol:      getEnv("CURRENCY_SYMBOL", "₹"),
		CurrencyDecimals:    getEnvInt("CURRENCY_DECIMALS", 0),

		RefreshInterval:   getEnvDuration("REFRESH_INTERVAL", 15*time.Minute),
		SnapshotCacheSize: getEnvInt("SNAPSHOT_CACHE_SIZE", 16),
		SnapshotCacheTTL:  getEnvDuration("SNAPSHOT_CACHE_TTL", time.Hour),
		SyncBatchSize:     getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:      getEnvDuration("SYNC_INTERVAL", 30*time.Second),
		SyncMaxRetries:    getEnvInt("SYNC_MAX_RETRIES", 3),

		DemoSeed: int64(getEnvInt("DEMO_SEED", 42)),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if _, err := c.SlogLevel(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	validBackends := []string{BackendMemory, BackendSQLite, BackendSheets}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DataBackend == BackendSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleTransactionsSheet == "" {
			errors = append(errors, "Google transactions sheet name is required when using sheets backend")
		}
	}

	for _, w := range []struct {
		key  string
		days int
	}{
		{"WINDOW_DAYS", c.WindowDays},
		{"HORIZON_DAYS", c.HorizonDays},
		{"INSIGHT_RECENT_DAYS", c.InsightRecentDays},
		{"INSIGHT_BASELINE_DAYS", c.InsightBaselineDays},
	} {
		if w.days < 1 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be at least 1", w.key, w.days))
		} else if w.days > 3660 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be at most 3660", w.key, w.days))
		}
	}
	if strings.TrimSpace(c.InsightCategory) == "" {
		errors = append(errors, "insight category cannot be empty")
	}
	if c.CategoriesFile != "" {
		if _, err := os.Stat(c.CategoriesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("categories file does not exist: %s", c.CategoriesFile))
		}
	}
	if c.CurrencyDecimals < 0 || c.CurrencyDecimals > 8 {
		errors = append(errors, fmt.Sprintf("invalid currency decimals %d: must be between 0 and 8", c.CurrencyDecimals))
	}

	if c.RefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	}
	if c.SnapshotCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid snapshot cache size %d: must be at least 1", c.SnapshotCacheSize))
	}
	if c.SnapshotCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid snapshot cache TTL %v: must be positive", c.SnapshotCacheTTL))
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}
	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}
	if c.SyncMaxRetries < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync max retries %d: must be at least 1", c.SyncMaxRetries))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// MirrorEnabled reports whether SQLite writes are mirrored to Google Sheets.
func (c *Config) MirrorEnabled() bool {
	return c.DataBackend == BackendSQLite && c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
