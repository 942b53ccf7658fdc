// Package config loads runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	AdminToken string
	LogLevel   string

	DatabaseURL string

	Redis    RedisConfig
	Kafka    KafkaConfig
	Registry RegistryConfig
}

// RedisConfig captures connection settings for the registry cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the audit event sink settings.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// RegistryConfig captures IATI Registry lookup settings.
type RegistryConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:        envOr("AIMS_ADDR", ":8080"),
		AdminToken:  os.Getenv("AIMS_ADMIN_TOKEN"),
		LogLevel:    envOr("AIMS_LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("AIMS_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("AIMS_REDIS_URL"),
			PoolSize:     envIntOr("AIMS_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("AIMS_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("AIMS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("AIMS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("AIMS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("AIMS_KAFKA_BROKERS")),
			AuditTopic: envOr("AIMS_AUDIT_TOPIC", "aims.import.audit"),
		},
		Registry: RegistryConfig{
			BaseURL:  os.Getenv("AIMS_REGISTRY_URL"),
			CacheTTL: envDurationOr("AIMS_REGISTRY_CACHE_TTL", 24*time.Hour),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
