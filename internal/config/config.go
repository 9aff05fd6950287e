package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported storage backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	ServerPort      string
	GinMode         string
	LogLevel        string
	LogFormat       string
	DBDriver        string
	DatabaseURL     string
	SQLitePath      string
	MaxDBConns      int32
	RedisURL        string
	CatalogCacheTTL time.Duration
	UploadDir       string
	MaxUploadBytes  int64
	AssetsDir       string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins     []string
	RateLimitPerMinute int
	SeedOnBoot         bool
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	driver := DriverSQLite
	if databaseURL != "" {
		driver = DriverPostgres
	}
	driver = strings.ToLower(getEnv("DB_DRIVER", driver))

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "auto"),
		DBDriver:           driver,
		DatabaseURL:        databaseURL,
		SQLitePath:         getEnv("SQLITE_PATH", "file:assessment.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"),
		MaxDBConns:         int32(getEnvInt("MAX_DB_CONNS", 16)),
		RedisURL:           getEnv("REDIS_URL", ""),
		CatalogCacheTTL:    time.Duration(getEnvInt("CATALOG_CACHE_TTL_MINUTES", 60)) * time.Minute,
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		AssetsDir:          getEnv("ASSETS_DIR", "./assets"),
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		SeedOnBoot:         getEnvBool("SEED_ON_BOOT", driver == DriverSQLite),
	}
}

// RedisEnabled reports whether a Redis URL is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
