package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Values come from an optional YAML file (WELDVAULT_CONFIG) overridden by
// environment variables; keep infra values here and pass typed config into
// builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// OverdueThreshold marks pending approvals as overdue in statistics.
	OverdueThreshold time.Duration

	// NotificationPollInterval drives the worker outbox relay loop.
	NotificationPollInterval time.Duration
	NotificationBatchSize    int
}

type fileConfig struct {
	ServiceName              string `yaml:"service_name"`
	HTTPPort                 string `yaml:"http_port"`
	PostgresDSN              string `yaml:"postgres_dsn"`
	OverdueThresholdHours    int    `yaml:"overdue_threshold_hours"`
	NotificationPollSeconds  int    `yaml:"notification_poll_seconds"`
	NotificationBatchSize    int    `yaml:"notification_batch_size"`
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName:              "weldvault",
		HTTPPort:                 "8080",
		OverdueThreshold:         72 * time.Hour,
		NotificationPollInterval: 5 * time.Second,
		NotificationBatchSize:    100,
	}

	if path := strings.TrimSpace(os.Getenv("WELDVAULT_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		applyFile(&cfg, file)
	}

	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		cfg.HTTPPort = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := envInt("OVERDUE_THRESHOLD_HOURS"); v > 0 {
		cfg.OverdueThreshold = time.Duration(v) * time.Hour
	}
	if v := envInt("NOTIFICATION_POLL_SECONDS"); v > 0 {
		cfg.NotificationPollInterval = time.Duration(v) * time.Second
	}
	if v := envInt("NOTIFICATION_BATCH_SIZE"); v > 0 {
		cfg.NotificationBatchSize = v
	}

	return cfg, nil
}

func applyFile(cfg *Config, file fileConfig) {
	if file.ServiceName != "" {
		cfg.ServiceName = file.ServiceName
	}
	if file.HTTPPort != "" {
		cfg.HTTPPort = file.HTTPPort
	}
	if file.PostgresDSN != "" {
		cfg.PostgresDSN = file.PostgresDSN
	}
	if file.OverdueThresholdHours > 0 {
		cfg.OverdueThreshold = time.Duration(file.OverdueThresholdHours) * time.Hour
	}
	if file.NotificationPollSeconds > 0 {
		cfg.NotificationPollInterval = time.Duration(file.NotificationPollSeconds) * time.Second
	}
	if file.NotificationBatchSize > 0 {
		cfg.NotificationBatchSize = file.NotificationBatchSize
	}
}

func envInt(name string) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
