package config

import (
	"os"
	"strconv"

	"gosynth/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Synth    SynthConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// SynthConfig holds synthesis defaults
type SynthConfig struct {
	BaseSeed   int64
	BinSize    int
	MaskLength int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Synth:    loadSynthConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	// DATABASE_URL is optional: without it, pattern sets live in memory only
	return DatabaseConfig{
		URL: os.Getenv("DATABASE_URL"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", ""),
	}
}

func loadSynthConfig() SynthConfig {
	return SynthConfig{
		BaseSeed:   getEnvInt64OrDefault("SYNTH_SEED", 42),
		BinSize:    getEnvIntOrDefault("SYNTH_BIN_SIZE", 20),
		MaskLength: getEnvIntOrDefault("MASK_LENGTH", 16),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Synth.BinSize < 2 {
		return errors.ConfigInvalid("SYNTH_BIN_SIZE must be at least 2")
	}
	if config.Synth.MaskLength < 1 || config.Synth.MaskLength > 64 {
		return errors.ConfigInvalid("MASK_LENGTH must be between 1 and 64")
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
