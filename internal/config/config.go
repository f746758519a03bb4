package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the process-wide workspace configuration. It is read once at
// startup from the environment (plus an optional .env file) and handed to
// components as a value; the API client keeps its own copy and swaps it
// atomically on runtime updates.
type Config struct {
	APIBaseURL            string `mapstructure:"API_BASE_URL"`
	Env                   string `mapstructure:"ENV"`
	RequestTimeoutMS      int    `mapstructure:"REQUEST_TIMEOUT_MS"`
	RetryAttempts         int    `mapstructure:"RETRY_ATTEMPTS"`
	RetryDelayMS          int    `mapstructure:"RETRY_DELAY_MS"`
	MockFallbackEnabled   bool   `mapstructure:"MOCK_FALLBACK_ENABLED"`
	LoggingEnabled        bool   `mapstructure:"LOGGING_ENABLED"`
	ErrorReportingEnabled bool   `mapstructure:"ERROR_REPORTING_ENABLED"`
	ErrorReportURL        string `mapstructure:"ERROR_REPORT_URL"`
	CacheTTLPatientMS     int    `mapstructure:"CACHE_TTL_PATIENT_MS"`
	CacheTTLPatientListMS int    `mapstructure:"CACHE_TTL_PATIENT_LIST_MS"`
	CacheTTLNotesMS       int    `mapstructure:"CACHE_TTL_NOTES_MS"`
	AuthToken             string `mapstructure:"AUTH_TOKEN"`
	DefaultRole           string `mapstructure:"DEFAULT_ROLE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("REQUEST_TIMEOUT_MS", 30000)
	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_DELAY_MS", 1000)
	v.SetDefault("MOCK_FALLBACK_ENABLED", true)
	v.SetDefault("LOGGING_ENABLED", true)
	v.SetDefault("ERROR_REPORTING_ENABLED", false)
	v.SetDefault("CACHE_TTL_PATIENT_MS", 300000)
	v.SetDefault("CACHE_TTL_PATIENT_LIST_MS", 600000)
	v.SetDefault("CACHE_TTL_NOTES_MS", 60000)
	v.SetDefault("DEFAULT_ROLE", "clinician")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_BASE_URL")
	v.BindEnv("ENV")
	v.BindEnv("REQUEST_TIMEOUT_MS")
	v.BindEnv("RETRY_ATTEMPTS")
	v.BindEnv("RETRY_DELAY_MS")
	v.BindEnv("MOCK_FALLBACK_ENABLED")
	v.BindEnv("LOGGING_ENABLED")
	v.BindEnv("ERROR_REPORTING_ENABLED")
	v.BindEnv("ERROR_REPORT_URL")
	v.BindEnv("CACHE_TTL_PATIENT_MS")
	v.BindEnv("CACHE_TTL_PATIENT_LIST_MS")
	v.BindEnv("CACHE_TTL_NOTES_MS")
	v.BindEnv("AUTH_TOKEN")
	v.BindEnv("DEFAULT_ROLE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RequestTimeout returns the per-attempt timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// RetryDelay returns the base backoff delay as a duration. The effective
// delay before retrying attempt n is RetryDelay * n.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

func (c *Config) CacheTTLPatient() time.Duration {
	return time.Duration(c.CacheTTLPatientMS) * time.Millisecond
}

func (c *Config) CacheTTLPatientList() time.Duration {
	return time.Duration(c.CacheTTLPatientListMS) * time.Millisecond
}

func (c *Config) CacheTTLNotes() time.Duration {
	return time.Duration(c.CacheTTLNotesMS) * time.Millisecond
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http or https URL, got %q", c.APIBaseURL)
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_MS must be positive, got %d", c.RequestTimeoutMS)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryDelayMS < 0 {
		return fmt.Errorf("RETRY_DELAY_MS must not be negative, got %d", c.RetryDelayMS)
	}
	if c.ErrorReportingEnabled && c.ErrorReportURL == "" {
		return fmt.Errorf("ERROR_REPORT_URL is required when ERROR_REPORTING_ENABLED is true")
	}
	return nil
}
