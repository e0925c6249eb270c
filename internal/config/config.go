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

// DefaultBaseURL is the public transactions endpoint; pages live at {base}{n}.json.
const DefaultBaseURL = "https://resttest.bench.co/transactions/"

type Config struct {
	// Transactions source
	Source      string
	BaseURL     string
	DataDir     string
	HTTPTimeout time.Duration
	MaxPages    int
	RateLimit   int

	// Presentation
	OutputFormat       string
	Port               string
	LogLevel           string
	ServerRateLimitRPM int

	// Export sinks (all optional)
	ExportSQLitePath string

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

var (
	validSources = []string{"rest", "memory"}
	validFormats = []string{"table", "json", "html"}
)

func Load() *Config {
	cfg := &Config{
		Source:      getEnv("LEDGER_SOURCE", "rest"),
		BaseURL:     getEnv("LEDGER_BASE_URL", DefaultBaseURL),
		DataDir:     getEnv("LEDGER_DATA_DIR", "./data"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		MaxPages:    getEnvInt("MAX_PAGES", 1000),
		RateLimit:   getEnvInt("RATE_LIMIT_RPS", 0),

		OutputFormat: getEnv("OUTPUT_FORMAT", "table"),
		Port:         getEnv("PORT", "8081"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		ServerRateLimitRPM: getEnvInt("SERVER_RATE_LIMIT_RPM", 30),

		ExportSQLitePath: getEnv("EXPORT_SQLITE_PATH", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "ledger.collected"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
	}

	return cfg
}

// Validate validates the settings shared by the CLI and the server. It has
// no side effects; directories are created by the components that write them.
func (c *Config) Validate() error {
	return joinProblems(c.problems())
}

// ValidateServer checks Validate plus the settings only ledger-server reads.
func (c *Config) ValidateServer() error {
	errors := c.problems()

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ServerRateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid server rate limit %d: must be at least 1 request per minute", c.ServerRateLimitRPM))
	}

	return joinProblems(errors)
}

func (c *Config) problems() []string {
	var errors []string

	if !slices.Contains(validSources, c.Source) {
		errors = append(errors, fmt.Sprintf("invalid source '%s': must be one of %v", c.Source, validSources))
	}

	// Validate base URL when fetching over HTTP
	if c.Source == "rest" {
		if c.BaseURL == "" {
			errors = append(errors, "base URL cannot be empty when using rest source")
		} else if parsedURL, err := url.Parse(c.BaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid base URL '%s': %v", c.BaseURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		} else if !strings.HasSuffix(parsedURL.Path, "/") {
			errors = append(errors, fmt.Sprintf("invalid base URL '%s': must end with '/'", c.BaseURL))
		}
	}

	if c.Source == "memory" && c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty when using memory source")
	}

	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	} else if c.HTTPTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at most 5 minutes", c.HTTPTimeout))
	}

	if c.MaxPages < 1 {
		errors = append(errors, fmt.Sprintf("invalid max pages %d: must be at least 1", c.MaxPages))
	}

	if c.RateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimit))
	}

	if !slices.Contains(validFormats, c.OutputFormat) {
		errors = append(errors, fmt.Sprintf("invalid output format '%s': must be one of %v", c.OutputFormat, validFormats))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	// Google Sheets export needs a sheet name and credentials
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	return errors
}

func joinProblems(errors []string) error {
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
