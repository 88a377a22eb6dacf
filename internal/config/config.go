package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	CredentialsPath string

	MeasurementsDir     string
	MeasurementsPattern string
	CountriesDir        string
	CountriesPattern    string
	MeasurementTable    string
	LookupWindow        time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional publication of committed measurements. Disabled when no
	// brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string
}

// PublishEnabled reports whether committed measurements are sent to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	window, err := time.ParseDuration(sharedcfg.EnvOrDefault("LOOKUP_WINDOW", "480h"))
	if err != nil || window <= 0 {
		return nil, errors.New("invalid LOOKUP_WINDOW")
	}

	cfg := &Config{
		CredentialsPath:     sharedcfg.EnvOrDefault("CREDENTIALS_PATH", "config/database_credentials.json"),
		MeasurementsDir:     sharedcfg.EnvOrDefault("MEASUREMENTS_DIR", "data"),
		MeasurementsPattern: sharedcfg.EnvOrDefault("MEASUREMENTS_PATTERN", "*.xml"),
		CountriesDir:        sharedcfg.EnvOrDefault("COUNTRIES_DIR", "config/countries"),
		CountriesPattern:    sharedcfg.EnvOrDefault("COUNTRIES_PATTERN", "*.json"),
		MeasurementTable:    sharedcfg.EnvOrDefault("MEASUREMENT_TABLE", "measurement"),
		LookupWindow:        window,
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		KafkaBrokers:        sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-measurements"),
	}

	if cfg.MeasurementTable == "" {
		return nil, errors.New("MEASUREMENT_TABLE is required")
	}
	for _, p := range []struct{ name, pattern string }{
		{"MEASUREMENTS_PATTERN", cfg.MeasurementsPattern},
		{"COUNTRIES_PATTERN", cfg.CountriesPattern},
	} {
		if err := validPattern(p.pattern); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", p.name, err)
		}
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}
