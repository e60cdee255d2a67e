package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mealplan/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection: memory or sqlite
	DataBackend  string
	SQLiteDBPath string
	// SeedSample loads the bundled sample plan into an empty memory store.
	SeedSample bool

	// AMQP, optional for the API server
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleGrocerySheetName   string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Grocery list
	WeekStartsOn     string
	GroceryCacheTTL  time.Duration
	GroceryCacheSize int

	// Worker
	ExportInterval time.Duration
	// ExportDryRun logs the grocery sheet instead of writing it to Google.
	ExportDryRun bool

	// Rate limiting for the API
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/mealplan.db"),
		SeedSample:   getEnvBool("SEED_SAMPLE", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "mealplan"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "grocery_export"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleGrocerySheetName:   getEnv("GOOGLE_GROCERY_SHEET_NAME", "Grocery"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		WeekStartsOn:     getEnv("WEEK_STARTS_ON", "sunday"),
		GroceryCacheTTL:  getEnvDuration("GROCERY_CACHE_TTL", 5*time.Minute),
		GroceryCacheSize: getEnvInt("GROCERY_CACHE_SIZE", 32),

		ExportInterval: getEnvDuration("EXPORT_INTERVAL", 15*time.Minute),
		ExportDryRun:   getEnvBool("EXPORT_DRY_RUN", false),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

// WeekStart returns the parsed WEEK_STARTS_ON value. Validate reports an
// unparseable value; here it falls back to Sunday.
func (c *Config) WeekStart() core.WeekStart {
	ws, err := core.ParseWeekStart(c.WeekStartsOn)
	if err != nil {
		return core.WeekStartsSunday
	}
	return ws
}

// AMQPEnabled reports whether plan changes should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether grocery export to Google Sheets is set up.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate checks the settings shared by every binary and returns all
// problems at once.
func (c *Config) Validate() error {
	return joinErrors(c.validate())
}

// ValidateWorker additionally requires what the export worker needs.
func (c *Config) ValidateWorker() error {
	errs := c.validate()
	if c.DataBackend != "sqlite" {
		errs = append(errs, "the grocery worker reads the plan from SQLite: set DATA_BACKEND=sqlite")
	}
	if !c.ExportDryRun {
		errs = append(errs, c.validateSheets()...)
	}
	if c.ExportInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid export interval %v: must be at least 1 minute", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}
	return joinErrors(errs)
}

func (c *Config) validateSheets() []string {
	var errs []string
	if !c.SheetsEnabled() {
		errs = append(errs, "GOOGLE_SPREADSHEET_ID is required for the grocery worker")
	}
	if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided")
	}
	if c.GoogleServiceAccountFile != "" && c.GoogleServiceAccountJSON == "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errs
}

func (c *Config) validate() []string {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
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

	if _, err := core.ParseWeekStart(c.WeekStartsOn); err != nil {
		errors = append(errors, fmt.Sprintf("invalid week start '%s': must be 'sunday' or 'monday'", c.WeekStartsOn))
	}
	if c.GroceryCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid grocery cache TTL %v: must be positive", c.GroceryCacheTTL))
	}
	if c.GroceryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid grocery cache size %d: must be at least 1", c.GroceryCacheSize))
	}
	if c.RateLimitRequests < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitRequests))
	}
	if c.RateLimitWindow < time.Second {
		errors = append(errors, fmt.Sprintf("invalid rate limit window %v: must be at least 1 second", c.RateLimitWindow))
	}

	return errors
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
