package config

import (
	"os"
	"strings"
	"time"

	"peajes/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Artifacts ArtifactsConfig
	Data      DataConfig
	Catalog   Catalog
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ArtifactsConfig says where the precomputed JSON/CSV artifacts live. When
// BaseURL is set resources are fetched over HTTP, otherwise they are read
// from Dir.
type ArtifactsConfig struct {
	Dir          string
	BaseURL      string
	FetchTimeout time.Duration
}

// DataConfig holds inputs for the summary generator
type DataConfig struct {
	ExcelFile string
}

// Load reads configuration from environment variables and validates it.
// CATALOG_FILE, when set, overrides the built-in catalog.
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Artifacts: *loadArtifactsConfig(),
		Data:      *loadDataConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	catalog := DefaultCatalog()
	if path := os.Getenv("CATALOG_FILE"); path != "" {
		loaded, err := LoadCatalogFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load catalog")
		}
		catalog = *loaded
	}
	config.Catalog = catalog

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadArtifactsConfig() *ArtifactsConfig {
	return &ArtifactsConfig{
		Dir:          getEnvOrDefault("ARTIFACTS_DIR", "./web"),
		BaseURL:      strings.TrimRight(getEnvOrDefault("ARTIFACTS_BASE_URL", ""), "/"),
		FetchTimeout: getEnvDurationOrDefault("FETCH_TIMEOUT", 10*time.Second),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		ExcelFile: getEnvOrDefault("EXCEL_FILE", "Consolidado_TOTAL_54cols_v2_allyears.xlsx"),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Artifacts.BaseURL == "" && config.Artifacts.Dir == "" {
		return errors.ConfigInvalid("either ARTIFACTS_BASE_URL or ARTIFACTS_DIR is required")
	}
	if config.Artifacts.FetchTimeout <= 0 {
		return errors.ConfigInvalid("FETCH_TIMEOUT must be positive")
	}
	return config.Catalog.Validate()
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
