package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis     RedisConfig
	DB        DBConfig
	Auth      AuthConfig
	Server    ServerConfig
	POS       POSConfig
	Telemetry TelemetryConfig
	LogLevel  string
}

type DBConfig struct {
	DSN            string
	MigrateOnStart bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type ServerConfig struct {
	HTTPPort  string
	GRPCPort  string
	RateLimit string
}

type POSConfig struct {
	// StrictRelease rejects freeing a table while an unpaid order is bound to it.
	StrictRelease bool
}

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// LoadConfig reads a .env file when present and falls back to process
// environment variables.
func LoadConfig() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN:            getEnv("POS_DSN", ""),
			MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 12*time.Hour),
		},
		Server: ServerConfig{
			HTTPPort:  getEnv("HTTP_PORT", "8080"),
			GRPCPort:  getEnv("GRPC_PORT", "50053"),
			RateLimit: getEnv("RATE_LIMIT", "120-M"),
		},
		POS: POSConfig{
			StrictRelease: getEnvBool("POS_STRICT_RELEASE", true),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "resto-pos"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
