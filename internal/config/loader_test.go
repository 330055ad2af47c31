package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var managedVariables = []string{
	"HTTP_PORT", "SQLITE_DSN", "JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL", "LOG_FORMAT",
	"DEFAULT_RATE", "CALENDAR_ENABLED", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
	"GOOGLE_REDIRECT_URL", "TOKEN_SEAL_KEY", "CALENDAR_TIMEOUT",
	"CALENDAR_SWEEP_SCHEDULE", "RECALCULATE_SCHEDULE",
}

// clearEnvironment unsets every variable for the duration of the test.
// t.Setenv registers the restore, Unsetenv then removes the value.
func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, name := range managedVariables {
		for _, key := range []string{env(name), name} {
			t.Setenv(key, os.Getenv(key))
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("LEGALTIME_JWT_SECRET", "super-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:legaltime.db?_pragma=foreign_keys(1)" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.TokenTTL != 24*time.Hour || cfg.CalendarTimeout != 10*time.Second {
			t.Fatalf("unexpected durations: ttl=%s timeout=%s", cfg.TokenTTL, cfg.CalendarTimeout)
		}
		if cfg.DefaultRate != 3000 {
			t.Fatalf("expected default rate 3000, got %v", cfg.DefaultRate)
		}
		if cfg.CalendarEnabled || cfg.CalendarSweepSchedule != "" {
			t.Fatalf("calendar must be disabled by default")
		}
		if cfg.HTTPAddr() != ":8080" {
			t.Fatalf("unexpected addr %q", cfg.HTTPAddr())
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnvironment(t)

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: LEGALTIME_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("calendar requires credentials", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("LEGALTIME_JWT_SECRET", "super-secret")
		t.Setenv("LEGALTIME_CALENDAR_ENABLED", "true")
		t.Setenv("LEGALTIME_GOOGLE_CLIENT_ID", "client")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for incomplete calendar configuration")
		}
		for _, name := range []string{"LEGALTIME_GOOGLE_CLIENT_SECRET", "LEGALTIME_GOOGLE_REDIRECT_URL", "LEGALTIME_TOKEN_SEAL_KEY"} {
			if !strings.Contains(err.Error(), name) {
				t.Fatalf("expected %s in %q", name, err.Error())
			}
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("LEGALTIME_JWT_SECRET", "super-secret")
		t.Setenv("LEGALTIME_LOG_FORMAT", "xml")
		t.Setenv("LEGALTIME_TOKEN_TTL", "-1h")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		if !strings.Contains(err.Error(), "LEGALTIME_LOG_FORMAT") || !strings.Contains(err.Error(), "LEGALTIME_TOKEN_TTL") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects unparsable values", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("LEGALTIME_JWT_SECRET", "super-secret")
		t.Setenv("LEGALTIME_HTTP_PORT", "eighty")

		if _, err := Load(); err == nil {
			t.Fatalf("expected parse error for non numeric port")
		}
	})
}
