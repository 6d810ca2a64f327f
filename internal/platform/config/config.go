package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process level configuration so main stays lean.
type Config struct {
	// TokenDuration is how long a melder's possession token stays valid
	// after a melding is created.
	TokenDuration time.Duration

	PostgresDSN string

	Redis RedisConfig

	Kafka KafkaConfig
}

// RedisConfig holds connection settings for the classification name cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// LookupTTL bounds how long a cached classification name may be served.
	LookupTTL time.Duration
}

// KafkaConfig holds settings for the lifecycle event stream.
type KafkaConfig struct {
	Brokers []string
	// Topic carries melding lifecycle events consumed by the worker.
	Topic string
	// MailTopic carries queued melder notifications.
	MailTopic string
	// Group identifies the worker's consumer group.
	Group string
}

// FromEnv builds a Config from environment variables. Unset values fall back
// to development defaults.
func FromEnv() Config {
	return Config{
		TokenDuration: durationFromEnv("MELDINGEN_TOKEN_DURATION", 72*time.Hour),
		PostgresDSN:   os.Getenv("MELDINGEN_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("MELDINGEN_REDIS_URL"),
			PoolSize:     intFromEnv("MELDINGEN_REDIS_POOL_SIZE", 10),
			MinIdleConns: intFromEnv("MELDINGEN_REDIS_MIN_IDLE", 2),
			DialTimeout:  durationFromEnv("MELDINGEN_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationFromEnv("MELDINGEN_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationFromEnv("MELDINGEN_REDIS_WRITE_TIMEOUT", 3*time.Second),
			LookupTTL:    durationFromEnv("MELDINGEN_CLASSIFICATION_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:   listFromEnv("MELDINGEN_KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:     stringFromEnv("MELDINGEN_KAFKA_TOPIC", "melding-lifecycle"),
			MailTopic: stringFromEnv("MELDINGEN_KAFKA_MAIL_TOPIC", "melding-mail"),
			Group:     stringFromEnv("MELDINGEN_KAFKA_GROUP", "meldingen-worker"),
		},
	}
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
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

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func listFromEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
