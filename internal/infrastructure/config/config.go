// Package config reads service configuration from environment variables
// with sensible local-development defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pkgkafka "github.com/adhikag24/unified-pricing-layer-mvp/pkg/kafka"
	pg "github.com/adhikag24/unified-pricing-layer-mvp/pkg/postgres"
)

// Config holds all configuration for the read layer service.
type Config struct {
	// HTTP port serving the query API, health probes, and metrics.
	HTTPPort int
	// Service name for observability.
	ServiceName string
	// Database holds the fact store connection settings.
	Database pg.Config
	// MigrationsURL is the golang-migrate source, e.g. file://migrations.
	MigrationsURL string
	// Kafka holds the bus client settings.
	Kafka KafkaConfig
	// Pipeline tunes the ingestion pipeline.
	Pipeline PipelineConfig
}

// KafkaConfig holds the bus connection plus the topic layout.
type KafkaConfig struct {
	Client pkgkafka.Config
	// Topic carries every order event family.
	Topic string
}

// PipelineConfig tunes per-event handling.
type PipelineConfig struct {
	EventTimeout time.Duration
	MaxRetries   uint64
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPPort:      getEnvInt("HTTP_PORT", 8080),
		ServiceName:   getEnv("SERVICE_NAME", "uprl"),
		MigrationsURL: getEnv("MIGRATIONS_URL", "file://migrations"),
		Database: pg.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "uprl"),
			Password: getEnv("DB_PASSWORD", "uprl"),
			Database: getEnv("DB_NAME", "uprl"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Kafka: KafkaConfig{
			Topic: getEnv("KAFKA_TOPIC", "order-events"),
			Client: pkgkafka.Config{
				Brokers:            strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
				ConsumerGroup:      getEnv("KAFKA_CONSUMER_GROUP", "uprl-ingest"),
				SASLEnabled:        getEnvBool("KAFKA_SASL_ENABLED", false),
				SASLMechanism:      getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
				SASLUsername:       getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:       getEnv("KAFKA_SASL_PASSWORD", ""),
				TLS:                getEnvBool("KAFKA_TLS", false),
				CAFile:             getEnv("KAFKA_CA_FILE", ""),
				InsecureSkipVerify: getEnvBool("KAFKA_TLS_INSECURE", false),
			},
		},
		Pipeline: PipelineConfig{
			EventTimeout: time.Duration(getEnvInt("EVENT_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxRetries:   uint64(getEnvInt("COMMIT_MAX_RETRIES", 3)),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
