package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	Environment           string
	RunMigrations         bool
	RunSeed               bool
	SeedFile              string
	MigrationsDir         string
	MaxBodyBytes          int64
	IntegrityScanInterval time.Duration
	MetricsEnabled        bool
	OTelEnabled           bool
	OTelExporter          string
	OTelEndpoint          string
	OTelSamplerRatio      float64
}

// Load reads a .env file when present and then the process environment.
// Variables already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		Environment:           getEnv("APP_ENV", "development"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:               getEnvBool("RUN_SEED", true),
		SeedFile:              getEnv("SEED_FILE", "configs/seed.yaml"),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		IntegrityScanInterval: getEnvDuration("INTEGRITY_SCAN_INTERVAL", 6*time.Hour),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		OTelEnabled:           getEnvBool("OTEL_ENABLED", false),
		OTelExporter:          strings.ToLower(getEnv("OTEL_EXPORTER", "stdout")),
		OTelEndpoint:          getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelSamplerRatio:      getEnvFloat("OTEL_SAMPLER_RATIO", 1.0),
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

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.IntegrityScanInterval < 0 {
		return fmt.Errorf("INTEGRITY_SCAN_INTERVAL must not be negative")
	}
	if c.OTelEnabled {
		switch c.OTelExporter {
		case "stdout":
		case "otlp":
			if strings.TrimSpace(c.OTelEndpoint) == "" {
				return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT must be set when OTEL_EXPORTER is otlp")
			}
		default:
			return fmt.Errorf("OTEL_EXPORTER must be stdout or otlp")
		}
		if c.OTelSamplerRatio < 0 || c.OTelSamplerRatio > 1 {
			return fmt.Errorf("OTEL_SAMPLER_RATIO must be within [0,1]")
		}
	}
	return nil
}
