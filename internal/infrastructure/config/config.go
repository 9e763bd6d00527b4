// Package config loads the engine configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/daycount"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// EngineConfig holds the financial-engine options.
type EngineConfig struct {
	DayCountDefault daycount.Convention
	BusinessDayMode bizcal.Mode
	WorkerPoolSize  int
	NPATriggerDPD   int
	SMABoundaries   service.SMABoundaries
	Timezone        *time.Location
}

// Config is the full service configuration.
type Config struct {
	ServiceName string
	GRPCPort    int
	HTTPPort    int
	EODHour     int

	DB     DatabaseConfig
	Kafka  KafkaConfig
	Engine EngineConfig
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		ServiceName: getEnv("SERVICE_NAME", "lmsd"),
		GRPCPort:    getEnvInt("GRPC_PORT", 9090),
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		EODHour:     getEnvInt("EOD_HOUR", 23),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "lms"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "lms"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "lms-events"),
		},
	}

	convention, err := daycount.Parse(getEnv("DAY_COUNT_DEFAULT", "ACT/365"))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	mode, err := bizcal.ParseMode(getEnv("BUSINESS_DAY_MODE", "modified_following"))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	boundaries, err := parseSMABoundaries(getEnv("SMA_BOUNDARIES", "30,60,90"))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	tz, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return Config{}, fmt.Errorf("config: load timezone: %w", err)
	}

	cfg.Engine = EngineConfig{
		DayCountDefault: convention,
		BusinessDayMode: mode,
		WorkerPoolSize:  getEnvInt("WORKER_POOL_SIZE", 8),
		NPATriggerDPD:   getEnvInt("NPA_TRIGGER_DPD", 90),
		SMABoundaries:   boundaries,
		Timezone:        tz,
	}
	return cfg, nil
}

func parseSMABoundaries(raw string) (service.SMABoundaries, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return service.SMABoundaries{}, fmt.Errorf("SMA_BOUNDARIES must be three comma-separated integers, got %q", raw)
	}
	values := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return service.SMABoundaries{}, fmt.Errorf("parse SMA boundary %q: %w", part, err)
		}
		values[i] = v
	}
	if !(values[0] < values[1] && values[1] < values[2]) {
		return service.SMABoundaries{}, fmt.Errorf("SMA boundaries must be strictly increasing, got %q", raw)
	}
	return service.SMABoundaries{SMA0: values[0], SMA1: values[1], SMA2: values[2]}, nil
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
