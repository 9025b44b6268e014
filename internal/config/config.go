package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// SheetConfig describes where the directory spreadsheet is read from. A
// spreadsheet ID selects the Sheets API, otherwise CSVURL is fetched directly
// or through ProxyURL.
type SheetConfig struct {
	CSVURL        string
	ProxyURL      string
	SpreadsheetID string
	Range         string
	APIKey        string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL       string
	DatabaseMaxConns  int32
	DataFile          string
	JWTSecret         string
	Port              string
	AdminPasswordHash string
	PhoneRegion       string
	SettingsDir       string
	Sheet             SheetConfig
	SyncInterval      time.Duration
	RateLimitRefresh  RateLimitConfig
	TokenTTL          time.Duration
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DataFile:          getEnv("DATA_FILE", "data/businesses.json"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		Port:              getEnv("PORT", "8080"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		PhoneRegion:       getEnv("PHONE_REGION", "US"),
		SettingsDir:       getEnv("SETTINGS_DIR", "."),
		Sheet: SheetConfig{
			CSVURL:        os.Getenv("SHEET_CSV_URL"),
			ProxyURL:      os.Getenv("SHEET_PROXY_URL"),
			SpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
			Range:         getEnv("SHEETS_RANGE", "A:Z"),
			APIKey:        os.Getenv("GOOGLE_API_KEY"),
		},
		TokenTTL: parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "4"))
	if err != nil || maxConns < 0 {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS value: %q", os.Getenv("DB_MAX_CONNS"))
	}
	cfg.DatabaseMaxConns = int32(maxConns)

	interval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL value: %w", err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL value: must not be negative")
	}
	cfg.SyncInterval = interval

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_REFRESH", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFRESH value: %w", err)
	}
	cfg.RateLimitRefresh = rl

	return cfg, nil
}

// HasSheetSource reports whether any upstream spreadsheet is configured.
func (c *Config) HasSheetSource() bool {
	return c.Sheet.SpreadsheetID != "" || c.Sheet.CSVURL != ""
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}
