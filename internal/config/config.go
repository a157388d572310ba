package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"compras/internal/core"
)

// Data sources accepted by DATA_SOURCE.
const (
	SourceFile   = "file"
	SourceSheets = "sheets"
	SourceMemory = "memory"
)

var validSources = []string{SourceFile, SourceSheets, SourceMemory}

const maxUploadLimit = 100 << 20

type Config struct {
	// HTTP Server
	Port           string
	UploadMaxBytes int64

	// Data source
	DataSource    string
	DataFile      string
	DataDirectory string
	WatchDataFile bool

	// Session store
	SQLiteDBPath string

	// AMQP alerts, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Presentation
	CurrencySymbol string
	Locale         string
	TopN           int
	InsightsFile   string

	// Parse memo
	CacheSize int
	CacheTTL  time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),

		DataSource:    getEnv("DATA_SOURCE", SourceFile),
		DataFile:      getEnv("DATA_FILE", "compras.json"),
		DataDirectory: getEnv("DATA_DIR", "data"),
		WatchDataFile: getEnvBool("WATCH_DATA_FILE", true),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "file:compras?mode=memory&cache=shared"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "compras"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "purchase_alerts"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Compras"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),
		Locale:         getEnv("LOCALE", string(core.LocaleES)),
		TopN:           getEnvInt("TOP_N", 10),
		InsightsFile:   getEnv("INSIGHTS_FILE", ""),

		CacheSize: getEnvInt("CACHE_SIZE", 32),
		CacheTTL:  getEnvDuration("CACHE_TTL", 10*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.UploadMaxBytes < 1 || c.UploadMaxBytes > maxUploadLimit {
		errors = append(errors, fmt.Sprintf("invalid upload limit %d: must be between 1 and %d bytes", c.UploadMaxBytes, maxUploadLimit))
	}

	isValidSource := false
	for _, s := range validSources {
		if c.DataSource == s {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, validSources))
	}

	if c.DataSource == SourceFile && strings.TrimSpace(c.DataFile) == "" {
		errors = append(errors, "data file cannot be empty when using file source")
	}

	if c.DataSource == SourceSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets source")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets source")
		}
		if hasFile && !hasJSON {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
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

	if strings.TrimSpace(c.CurrencySymbol) == "" {
		errors = append(errors, "currency symbol cannot be empty")
	}
	if _, ok := core.ParseLocale(c.Locale); !ok {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': must be 'es' or 'en'", c.Locale))
	}
	if c.TopN < 1 || c.TopN > 100 {
		errors = append(errors, fmt.Sprintf("invalid top N %d: must be between 1 and 100", c.TopN))
	}
	if c.InsightsFile != "" {
		if _, err := os.Stat(c.InsightsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("insights file does not exist: %s", c.InsightsFile))
		}
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ResolvedLocale returns the configured locale, Spanish when invalid.
func (c *Config) ResolvedLocale() core.Locale {
	l, _ := core.ParseLocale(c.Locale)
	return l
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
