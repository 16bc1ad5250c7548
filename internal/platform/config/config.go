package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config drives the intake server.
type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	DataEncryptionKey  string
	Environment        string
	SeedTenantName     string
	SeedAdminEmail     string
	SeedAdminPassword  string
	RunMigrations      bool
	RunSeed            bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration
	MetricsEnabled     bool
}

// ClientConfig drives the hrmsync command line client.
type ClientConfig struct {
	StoreKind      string
	StorePath      string
	QuotaBytes     int64
	MaxFileBytes   int64
	ServerURL      string
	Token          string
	Workers        int
	RatePerSecond  float64
	PreservedKeys  []string
	RequestTimeout time.Duration
}

// LoadDotEnv reads .env style files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			slog.Warn("load env file failed", "file", file, "err", err)
		}
	}
}

func Load() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 8*time.Hour),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:        getEnv("APP_ENV", "development"),
		SeedTenantName:     getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 8*1024*1024)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

func LoadClient() ClientConfig {
	return ClientConfig{
		StoreKind:      getEnv("HRMSYNC_STORE", "sqlite"),
		StorePath:      getEnv("HRMSYNC_STORE_PATH", "hrmsync.db"),
		QuotaBytes:     getEnvInt64("HRMSYNC_QUOTA_BYTES", 5*1024*1024),
		MaxFileBytes:   getEnvInt64("HRMSYNC_MAX_FILE_BYTES", 500*1024),
		ServerURL:      getEnv("HRMSYNC_SERVER_URL", "http://localhost:8080"),
		Token:          getEnv("HRMSYNC_TOKEN", ""),
		Workers:        getEnvInt("HRMSYNC_WORKERS", 1),
		RatePerSecond:  getEnvFloat("HRMSYNC_RATE_PER_SECOND", 0),
		PreservedKeys:  getEnvList("HRMSYNC_PRESERVED_KEYS", []string{"token", "user"}),
		RequestTimeout: getEnvDuration("HRMSYNC_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func (c ClientConfig) Validate() error {
	switch c.StoreKind {
	case "memory", "sqlite", "leveldb":
	default:
		return fmt.Errorf("HRMSYNC_STORE must be one of memory, sqlite, leveldb")
	}
	if c.StoreKind != "memory" && strings.TrimSpace(c.StorePath) == "" {
		return fmt.Errorf("HRMSYNC_STORE_PATH is required for the %s store", c.StoreKind)
	}
	if c.QuotaBytes < 0 {
		return fmt.Errorf("HRMSYNC_QUOTA_BYTES must not be negative")
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("HRMSYNC_MAX_FILE_BYTES must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("HRMSYNC_WORKERS must be positive")
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("HRMSYNC_RATE_PER_SECOND must not be negative")
	}
	return nil
}
