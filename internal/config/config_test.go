package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"API_BASE_URL", "ENV", "REQUEST_TIMEOUT_MS", "RETRY_ATTEMPTS",
		"RETRY_DELAY_MS", "MOCK_FALLBACK_ENABLED", "LOGGING_ENABLED",
		"ERROR_REPORTING_ENABLED", "ERROR_REPORT_URL",
		"CACHE_TTL_PATIENT_MS", "CACHE_TTL_PATIENT_LIST_MS", "CACHE_TTL_NOTES_MS",
		"AUTH_TOKEN", "DEFAULT_ROLE",
	} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		if had {
			t.Cleanup(func() { os.Setenv(k, old) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url: %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeoutMS != 30000 {
		t.Errorf("expected 30000ms timeout, got %d", cfg.RequestTimeoutMS)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.RetryAttempts)
	}
	if !cfg.MockFallbackEnabled {
		t.Error("expected mock fallback enabled by default")
	}
	if cfg.DefaultRole != "clinician" {
		t.Errorf("expected default role clinician, got %q", cfg.DefaultRole)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	clearEnv(t)
	os.Setenv("API_BASE_URL", "https://canvas.example.com/api")
	os.Setenv("RETRY_ATTEMPTS", "5")
	defer os.Unsetenv("API_BASE_URL")
	defer os.Unsetenv("RETRY_ATTEMPTS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://canvas.example.com/api" {
		t.Errorf("env override not applied: %q", cfg.APIBaseURL)
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.RetryAttempts)
	}
}

func TestValidate_BadScheme(t *testing.T) {
	cfg := &Config{APIBaseURL: "ftp://example.com", RequestTimeoutMS: 1000, RetryAttempts: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http base url")
	}
}

func TestValidate_ZeroTimeout(t *testing.T) {
	cfg := &Config{APIBaseURL: "http://x", RequestTimeoutMS: 0, RetryAttempts: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestValidate_ReportingNeedsURL(t *testing.T) {
	cfg := &Config{
		APIBaseURL: "http://x", RequestTimeoutMS: 1000, RetryAttempts: 1,
		ErrorReportingEnabled: true,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when reporting enabled without url")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{RequestTimeoutMS: 1500, RetryDelayMS: 250, CacheTTLNotesMS: 60000}
	if cfg.RequestTimeout().Milliseconds() != 1500 {
		t.Errorf("unexpected timeout: %v", cfg.RequestTimeout())
	}
	if cfg.RetryDelay().Milliseconds() != 250 {
		t.Errorf("unexpected delay: %v", cfg.RetryDelay())
	}
	if cfg.CacheTTLNotes().Milliseconds() != 60000 {
		t.Errorf("unexpected notes ttl: %v", cfg.CacheTTLNotes())
	}
}
