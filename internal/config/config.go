package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	ShopifyDomain     string
	ShopifyToken      string
	ShopifyAPIVersion string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	SessionStore  string
	RedisAddr     string
	RedisPassword string
	SQLitePath    string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment. A .env file in the working directory is
// applied first when present; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		ShopifyDomain:     getEnv("SHOPIFY_DOMAIN", "connoisseurcustoms.myshopify.com"),
		ShopifyToken:      getEnv("SHOPIFY_STOREFRONT_TOKEN", ""),
		ShopifyAPIVersion: getEnv("SHOPIFY_API_VERSION", "2024-04"),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		BreakerMaxFailures: getEnvUint32("BREAKER_MAX_FAILURES", 5),
		BreakerOpenTimeout: getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		SessionStore:  getEnv("SESSION_STORE", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "./storefront.db"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-cart-events"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvUint32 falls back to def for missing, malformed, negative or zero values.
func getEnvUint32(key string, def uint32) uint32 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil || n == 0 {
		return def
	}
	return uint32(n)
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
