package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	Build       BuildConfig
	Calculation CalculationConfig
	Kafka       KafkaConfig
	Log         LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// BuildConfig controls time-series builds.
type BuildConfig struct {
	Concurrency         int // max assets computed at once within a period
	DefaultHorizonYears int
}

// CalculationConfig controls stored calculations and their exports.
type CalculationConfig struct {
	Retention       time.Duration
	CleanupSchedule string // cron spec
	ExportTokenKey  string // base64 fernet key; empty generates one per process
	ExportTokenTTL  time.Duration
}

// KafkaConfig holds event publishing configuration. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	concurrency, err := getEnvInt("BUILD_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	horizon, err := getEnvInt("DEFAULT_HORIZON_YEARS", 25)
	if err != nil {
		return nil, err
	}
	retentionDays, err := getEnvInt("CALCULATION_RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("EXPORT_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_TOKEN_TTL: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/energy_portfolio.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Build: BuildConfig{
			Concurrency:         concurrency,
			DefaultHorizonYears: horizon,
		},
		Calculation: CalculationConfig{
			Retention:       time.Duration(retentionDays) * 24 * time.Hour,
			CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@daily"),
			ExportTokenKey:  os.Getenv("EXPORT_TOKEN_KEY"),
			ExportTokenTTL:  ttl,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "portfolio.calculations"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if config.Build.Concurrency < 1 {
		return nil, fmt.Errorf("BUILD_CONCURRENCY must be at least 1, got %d", config.Build.Concurrency)
	}
	if config.Build.DefaultHorizonYears < 1 {
		return nil, fmt.Errorf("DEFAULT_HORIZON_YEARS must be at least 1, got %d", config.Build.DefaultHorizonYears)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
