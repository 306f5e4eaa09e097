package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string
	EmailDevMode bool // log emails instead of sending

	// Observability (optional)
	SentryDSN string

	// Mentee cache (optional, no-op without REDIS_URL)
	RedisURL           string
	AssignmentCacheTTL time.Duration

	// Attachments (S3-compatible; disabled when S3_BUCKET is empty)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PresignExpiry time.Duration

	// Jobs
	HelpDigestSchedule string

	// HTTP
	RateLimitWrites int
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "MentorConnect"),
		AppEnv:  envRequired("APP_ENV"), // 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // base URL for email links
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/mentorconnect.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),
		EmailDevMode: envBool("EMAIL_DEV_MODE", envString("APP_ENV", "development") == "development"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Cache
		RedisURL:           envString("REDIS_URL", ""),
		AssignmentCacheTTL: envDuration("ASSIGNMENT_CACHE_TTL", 5*time.Minute),

		// Storage
		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // MinIO, R2, Spaces
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", time.Hour),

		// Jobs
		HelpDigestSchedule: envString("HELP_DIGEST_SCHEDULE", "0 8 * * *"),

		// HTTP
		RateLimitWrites: envInt("RATE_LIMIT_WRITES", 60),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", time.Minute),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction stops the process when a service production cannot
// run without is missing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) AttachmentsEnabled() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy without secrets, safe to log.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:            c.AppName,
		AppEnv:             c.AppEnv,
		AppURL:             c.AppURL,
		Port:               c.Port,
		DBDriver:           c.DBDriver,
		EmailFrom:          c.EmailFrom,
		EmailDevMode:       c.EmailDevMode,
		AssignmentCacheTTL: c.AssignmentCacheTTL,
		S3Region:           c.S3Region,
		S3Bucket:           c.S3Bucket,
		S3Endpoint:         c.S3Endpoint,
		S3PresignExpiry:    c.S3PresignExpiry,
		HelpDigestSchedule: c.HelpDigestSchedule,
		RateLimitWrites:    c.RateLimitWrites,
		RateLimitWindow:    c.RateLimitWindow,
		ShutdownTimeout:    c.ShutdownTimeout,
	}
}
