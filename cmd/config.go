package cmd

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the CLI configuration
type Config struct {
	// Database configuration
	DBConfig string `yaml:"db_config" mapstructure:"db_config"`

	// Triplestore configuration
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	UpdateEndpoint string `yaml:"update_endpoint" mapstructure:"update_endpoint"`
	Repository     string `yaml:"repository" mapstructure:"repository"`

	// Output configuration
	OutputFormat string `yaml:"output_format" mapstructure:"output_format"`

	// Logging configuration
	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DBConfig:     "dbconfig.yaml",
		OutputFormat: "table",
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	validOutputFormats := map[string]bool{
		"table": true,
		"json":  true,
		"yaml":  true,
		"csv":   true,
	}
	if !validOutputFormats[config.OutputFormat] {
		return fmt.Errorf("invalid output format: %s", config.OutputFormat)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	return nil
}
