package config

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "LEGALTIME"

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort  int    `envconfig:"HTTP_PORT" default:"8080"`
	SQLiteDSN string `envconfig:"SQLITE_DSN" default:"file:legaltime.db?_pragma=foreign_keys(1)"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DefaultRate float64 `envconfig:"DEFAULT_RATE" default:"3000"`

	CalendarEnabled    bool          `envconfig:"CALENDAR_ENABLED" default:"false"`
	GoogleClientID     string        `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string        `envconfig:"GOOGLE_REDIRECT_URL"`
	TokenSealKey       string        `envconfig:"TOKEN_SEAL_KEY"`
	CalendarTimeout    time.Duration `envconfig:"CALENDAR_TIMEOUT" default:"10s"`

	CalendarSweepSchedule string `envconfig:"CALENDAR_SWEEP_SCHEDULE"`
	RecalculateSchedule   string `envconfig:"RECALCULATE_SCHEDULE"`
}

// Load parses configuration values from the current process environment.
//
// Defaults come from the struct tags; required values and value ranges are
// validated afterwards so that every offending variable is reported at once.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c Config) Validate() error {
	var missing, invalid []string

	if strings.TrimSpace(c.JWTSecret) == "" {
		missing = append(missing, env("JWT_SECRET"))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, env("HTTP_PORT"))
	}
	if c.TokenTTL <= 0 {
		invalid = append(invalid, env("TOKEN_TTL"))
	}
	if c.DefaultRate < 0 {
		invalid = append(invalid, env("DEFAULT_RATE"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		invalid = append(invalid, env("LOG_FORMAT"))
	}
	if c.CalendarTimeout <= 0 {
		invalid = append(invalid, env("CALENDAR_TIMEOUT"))
	}

	if c.CalendarEnabled {
		for name, value := range map[string]string{
			"GOOGLE_CLIENT_ID":     c.GoogleClientID,
			"GOOGLE_CLIENT_SECRET": c.GoogleClientSecret,
			"GOOGLE_REDIRECT_URL":  c.GoogleRedirectURL,
			"TOKEN_SEAL_KEY":       c.TokenSealKey,
		} {
			if strings.TrimSpace(value) == "" {
				missing = append(missing, env(name))
			}
		}
		if c.TokenSealKey != "" {
			if key, err := hex.DecodeString(c.TokenSealKey); err != nil || len(key) != 32 {
				invalid = append(invalid, env("TOKEN_SEAL_KEY"))
			}
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// HTTPAddr returns the listen address.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func env(name string) string {
	return Prefix + "_" + name
}
