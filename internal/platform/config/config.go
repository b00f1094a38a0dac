package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration sourced from the environment.
type Config struct {
	Addr          string
	PostgresDSN   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	JWTSigningKey string

	// UnreadCountTTL bounds staleness of the cached unread notification count.
	UnreadCountTTL time.Duration
}

// RedisConfig holds connection tuning for the unread-count cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the notification event stream settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:           envOr("KOLABO_ADDR", ":8080"),
		PostgresDSN:    os.Getenv("KOLABO_POSTGRES_DSN"),
		JWTSigningKey:  envOr("KOLABO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		UnreadCountTTL: envDurationOr("KOLABO_UNREAD_CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("KOLABO_REDIS_URL"),
			PoolSize:     envIntOr("KOLABO_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("KOLABO_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDurationOr("KOLABO_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("KOLABO_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("KOLABO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("KOLABO_KAFKA_TOPIC", "kolabo.notifications"),
		},
	}
	if brokers := os.Getenv("KOLABO_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	return cfg
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

