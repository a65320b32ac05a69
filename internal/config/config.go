package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultAITimeout   = 30 * time.Second
	defaultAIRateLimit = 2
	defaultGridColumns = 6
	maxGridColumns     = 12

	defaultVisitRetention     = 90 * 24 * time.Hour
	defaultVisitPruneInterval = 6 * time.Hour
)

type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	MetricsAddr      string
	AuthCookieSecure bool

	AIBaseURL   string
	AIAPIKey    string
	AITimeout   time.Duration
	AIRateLimit float64

	GridColumns     int
	TrackingBaseURL string

	// VisitRetention is how long visit rows are kept. Zero keeps them forever.
	VisitRetention     time.Duration
	VisitPruneInterval time.Duration
}

// AIEnabled reports whether an AI backend is configured.
func (c Config) AIEnabled() bool {
	return c.AIBaseURL != ""
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadOptionalDB() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: false})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HTTPAddr:         getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:      strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		AuthCookieSecure: getenvBoolDefault("AUTH_COOKIE_SECURE", false),
		AIBaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("AI_BASE_URL")), "/"),
		AIAPIKey:         strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AITimeout:        getenvDurationDefault("AI_TIMEOUT", defaultAITimeout, false),
		AIRateLimit:      defaultAIRateLimit,
		GridColumns:      getenvIntDefault("GRID_COLUMNS", defaultGridColumns),
		TrackingBaseURL:  strings.TrimRight(strings.TrimSpace(os.Getenv("TRACKING_BASE_URL")), "/"),

		VisitRetention:     getenvDurationDefault("VISIT_RETENTION", defaultVisitRetention, true),
		VisitPruneInterval: getenvDurationDefault("VISIT_PRUNE_INTERVAL", defaultVisitPruneInterval, false),
	}

	if v := strings.TrimSpace(os.Getenv("AI_RATE_LIMIT")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.AIRateLimit = f
		}
	}
	if cfg.GridColumns > maxGridColumns {
		cfg.GridColumns = maxGridColumns
	}

	for key, raw := range map[string]string{"AI_BASE_URL": cfg.AIBaseURL, "TRACKING_BASE_URL": cfg.TrackingBaseURL} {
		if raw == "" {
			continue
		}
		if err := validateBaseURL(raw); err != nil {
			return cfg, fmt.Errorf("%s: %w", key, err)
		}
	}

	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// getenvDurationDefault parses a Go duration. "0" is accepted only when
// allowZero is set; anything unparseable falls back to def.
func getenvDurationDefault(key string, def time.Duration, allowZero bool) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return def
	}
	return d
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
