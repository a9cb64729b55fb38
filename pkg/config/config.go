package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DefaultDepositPercent is the share of the booking total collected after the
// contract is signed.
const DefaultDepositPercent = 30

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Supabase/hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// AuditEnabled turns on the Postgres mutation audit log. Without it the
	// service needs no database at all.
	AuditEnabled bool

	Backend BackendConfig

	// SessionSecret is the HS256 key shared with the auth provider.
	SessionSecret string

	// RedisURL selects the shared query cache; empty means in-process memory.
	// Example: redis://localhost:6379/0
	RedisURL string
	CacheTTL time.Duration

	// TrackingCacheTTL bounds how stale a booking's tracking entries can be.
	// Providers append them outside this service, so no mutation drops them.
	TrackingCacheTTL time.Duration

	DepositPercent decimal.Decimal
	CurrencyScale  int32

	// WebAllowedOrigins is a comma-separated allowlist of origins allowed to call
	// the API from the browser. Example:
	//   https://app.decor.example,http://localhost:5173
	WebAllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type BackendConfig struct {
	// BaseURL is the REST backend root; requests go to {BaseURL}/api/{Resource}.
	BaseURL string
	Timeout time.Duration
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "bookingflow"),
			User:     env("DB_USER", "bookingflow"),
			Password: env("DB_PASSWORD", "bookingflow"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		AuditEnabled: envBool("AUDIT_ENABLED", true),
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(env("BACKEND_BASE_URL", "http://localhost:5000"), "/"),
			Timeout: envDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		RedisURL:          os.Getenv("REDIS_URL"),
		CacheTTL:          envDuration("CACHE_TTL", 30*time.Second),
		TrackingCacheTTL:  envDuration("TRACKING_CACHE_TTL", 5*time.Second),
		DepositPercent:    envDecimal("DEPOSIT_PERCENT", decimal.NewFromInt(DefaultDepositPercent)),
		CurrencyScale:     int32(envInt("CURRENCY_SCALE", 0)),
		WebAllowedOrigins: envList("WEB_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a bool, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] %s=%q is not a positive duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func envDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a number, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
