package config

import (
	"os"
	"strconv"

	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Report  ReportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StorageConfig holds file system settings for history snapshots and
// upload staging
type StorageConfig struct {
	DataDir       string
	UploadDir     string
	MaxUploadSize int64
}

// ReportConfig holds aggregation defaults
type ReportConfig struct {
	MinEmailsAutomations int
	MinEmailsSubjects    int
	TopAutomations       int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Storage: StorageConfig{
			DataDir:       getEnvOrDefault("DATA_DIR", "data"),
			UploadDir:     getEnvOrDefault("UPLOAD_DIR", "uploads"),
			MaxUploadSize: getEnvInt64OrDefault("MAX_UPLOAD_SIZE", 50*1024*1024),
		},
		Report: ReportConfig{
			MinEmailsAutomations: getEnvIntOrDefault("MIN_EMAILS_AUTOMATIONS", 100),
			MinEmailsSubjects:    getEnvIntOrDefault("MIN_EMAILS_SUBJECTS", 100),
			TopAutomations:       getEnvIntOrDefault("TOP_AUTOMATIONS", 10),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Storage.DataDir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.Storage.MaxUploadSize <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	if config.Report.MinEmailsAutomations < 0 || config.Report.MinEmailsSubjects < 0 {
		return errors.ConfigInvalid("min emails thresholds cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
