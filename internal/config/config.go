package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	APIURL  string

	// Session store (sqlite, pgx, mysql, redis or memory)
	SessionDriver     string
	SessionConnection string
	SessionProfile    string // Namespace for stored keys, defaults to APIURL

	// Redis session backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel string

	// Observability (optional)
	SentryDSN    string
	OTelEndpoint string

	// Downloads (local directory, or S3-compatible bucket when DownloadS3Bucket is set)
	DownloadDir             string
	DownloadS3Region        string
	DownloadS3Bucket        string
	DownloadS3AccessKey     string
	DownloadS3SecretKey     string
	DownloadS3Endpoint      string        // Optional: MinIO, R2, DO Spaces, etc.
	DownloadS3PresignExpiry time.Duration // Expiry for links printed after a download

	// Uploads
	MaxUploadSize int64 // 0 = no client-side limit
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "securefiles"),
		AppEnv:  envString("APP_ENV", "development"),
		APIURL:  envString("API_URL", "http://localhost:5000/api"),

		// Session store
		SessionDriver:     envString("SESSION_DRIVER", "sqlite"),
		SessionConnection: envString("SESSION_CONNECTION", defaultSessionPath()),
		SessionProfile:    envString("SESSION_PROFILE", ""),

		// Redis
		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		// Logging
		LogLevel: envString("LOG_LEVEL", "warn"),

		// Observability
		SentryDSN:    envString("SENTRY_DSN", ""),
		OTelEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		// Downloads
		DownloadDir:             envString("DOWNLOAD_DIR", "."),
		DownloadS3Region:        envString("DOWNLOAD_S3_REGION", "us-east-1"),
		DownloadS3Bucket:        envString("DOWNLOAD_S3_BUCKET", ""),
		DownloadS3AccessKey:     envString("DOWNLOAD_S3_ACCESS_KEY", ""),
		DownloadS3SecretKey:     envString("DOWNLOAD_S3_SECRET_KEY", ""),
		DownloadS3Endpoint:      envString("DOWNLOAD_S3_ENDPOINT", ""),
		DownloadS3PresignExpiry: envDuration("DOWNLOAD_S3_PRESIGN_EXPIRY", 1*time.Hour),

		// Uploads
		MaxUploadSize: envInt64("MAX_UPLOAD_SIZE", 0),
	}

	if cfg.SessionProfile == "" {
		cfg.SessionProfile = cfg.APIURL
	}

	return cfg
}

// Validate reports configuration the client cannot start with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}

	switch c.SessionDriver {
	case "sqlite", "pgx", "mysql":
		if c.SessionConnection == "" {
			return fmt.Errorf("SESSION_CONNECTION is required for driver %q", c.SessionDriver)
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", c.SessionDriver)
	}

	if c.MaxUploadSize < 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must not be negative")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Sanitized returns a copy of the config with credentials removed.
// Safe to log.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:            c.AppName,
		AppEnv:             c.AppEnv,
		APIURL:             c.APIURL,
		SessionDriver:      c.SessionDriver,
		SessionProfile:     c.SessionProfile,
		RedisAddr:          c.RedisAddr,
		RedisDB:            c.RedisDB,
		LogLevel:           c.LogLevel,
		OTelEndpoint:       c.OTelEndpoint,
		DownloadDir:        c.DownloadDir,
		DownloadS3Region:   c.DownloadS3Region,
		DownloadS3Bucket:   c.DownloadS3Bucket,
		DownloadS3Endpoint: c.DownloadS3Endpoint,
		MaxUploadSize:      c.MaxUploadSize,
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "securefiles", "session.db") + "?_pragma=busy_timeout(5000)"
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
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int64, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
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
