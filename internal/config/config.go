package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	DataBackends  = []string{"memory", "sqlite"}
	ViewStores    = []string{"memory", "file", "sqlite"}
	ExportSources = []string{"json", "sheets"}
	LogLevels     = []string{"debug", "info", "warn", "error"}
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	LogLevel string

	// Records
	DataBackend  string
	SQLiteDBPath string
	SeedDir      string

	// Board views
	ViewStore     string
	ViewStorePath string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Finance exports
	ExportsSource            string
	ExportsDir               string
	ExportsCacheTTL          time.Duration
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientJSON    string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/opsboard.db"),
		SeedDir:      getEnv("SEED_DIR", ""),

		ViewStore:     getEnv("VIEW_STORE", "memory"),
		ViewStorePath: getEnv("VIEW_STORE_PATH", "./data/views.json"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "opsboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "automation_notifications"),

		ExportsSource:            getEnv("EXPORTS_SOURCE", "json"),
		ExportsDir:               getEnv("EXPORTS_DIR", "./data/exports"),
		ExportsCacheTTL:          getEnvDuration("EXPORTS_CACHE_TTL", 5*time.Minute),
		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleOAuthClientJSON:    getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthClientFile:    getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:     getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(LogLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, LogLevels))
	}

	if !slices.Contains(DataBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, DataBackends))
	}
	if !slices.Contains(ViewStores, c.ViewStore) {
		errs = append(errs, fmt.Sprintf("invalid view store '%s': must be one of %v", c.ViewStore, ViewStores))
	}
	if (c.DataBackend == "sqlite" || c.ViewStore == "sqlite") && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when sqlite is used")
	}
	if c.ViewStore == "sqlite" && c.DataBackend != "sqlite" {
		errs = append(errs, "sqlite view store requires the sqlite data backend")
	}
	if c.ViewStore == "file" && c.ViewStorePath == "" {
		errs = append(errs, "view store path cannot be empty when using the file view store")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.ExportsSource {
	case "json":
		if c.ExportsDir == "" {
			errs = append(errs, "exports directory cannot be empty when using the json exports source")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using the sheets exports source")
		}
		serviceAccount := c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != ""
		userOAuth := (c.GoogleOAuthClientJSON != "" || c.GoogleOAuthClientFile != "") && c.GoogleOAuthTokenFile != ""
		if !serviceAccount && !userOAuth {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE, or an OAuth client with GOOGLE_OAUTH_TOKEN_FILE, must be provided for the sheets exports source")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
		if !serviceAccount && c.GoogleOAuthTokenFile != "" {
			if _, err := os.Stat(c.GoogleOAuthTokenFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google OAuth token file does not exist: %s (run opsctl sheets-auth)", c.GoogleOAuthTokenFile))
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid exports source '%s': must be one of %v", c.ExportsSource, ExportSources))
	}

	if c.ExportsCacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid exports cache TTL %v: must not be negative", c.ExportsCacheTTL))
	} else if c.ExportsCacheTTL > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid exports cache TTL %v: must be at most 24 hours", c.ExportsCacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
