package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Session   SessionConfig
	Reporting ReportingConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// BackendConfig locates the remote bookkeeping backend. The request timeout
// is mandatory; the original client had none and hung on dead connections.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls where the session blob is persisted and how often
// token expiry is re-checked.
type SessionConfig struct {
	FilePath      string
	CheckInterval time.Duration
}

// ReportingConfig holds scheduler-related settings for the weekly report.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig configures the optional spreadsheet export of reports.
// Export is disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig holds settings for the optional report archive. Archiving
// is disabled when the URI is empty.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	backendTimeout, err := getenvSeconds("BACKEND_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}

	checkInterval, err := getenvSeconds("SESSION_CHECK_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Backend: BackendConfig{
			BaseURL: getenvWithDefault("BACKEND_BASE_URL", "http://localhost:5055"),
			Timeout: backendTimeout,
		},
		Session: SessionConfig{
			FilePath:      getenvWithDefault("SESSION_FILE", "kuku_session.json"),
			CheckInterval: checkInterval,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "kukutrack"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL must be provided")
	}

	if c.Backend.Timeout <= 0 {
		return errors.New("BACKEND_TIMEOUT_SECONDS must be positive")
	}

	if c.Session.FilePath == "" {
		return errors.New("SESSION_FILE must be provided")
	}

	if c.Session.CheckInterval <= 0 {
		return errors.New("SESSION_CHECK_INTERVAL_SECONDS must be positive")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_REPORT_ID is set")
	}

	return nil
}

// SheetsEnabled reports whether spreadsheet export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

// MongoEnabled reports whether report archiving is configured.
func (c *Config) MongoEnabled() bool {
	return c.MongoDB.URI != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvSeconds(key string, fallback int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer number of seconds: %w", key, err)
	}
	return time.Duration(seconds) * time.Second, nil
}
