// Copyright 2025 Fatwa Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates the application configuration from a
// YAML file and environment variables. Environment variables take precedence
// over config file values.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Quran      QuranConfig      `mapstructure:"quran"`
	Hadith     HadithConfig     `mapstructure:"hadith"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	AskLog     AskLogConfig     `mapstructure:"asklog"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// GeminiConfig contains the generative-language API configuration
type GeminiConfig struct {
	APIKey         string `mapstructure:"apikey"`
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// QuranConfig contains the Quran verse search API configuration
type QuranConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	MaxResults     int    `mapstructure:"max_results"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// HadithConfig contains the hadith lookup API configuration
type HadithConfig struct {
	APIKey         string `mapstructure:"apikey"`
	Endpoint       string `mapstructure:"endpoint"`
	MaxResults     int    `mapstructure:"max_results"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// EnrichmentConfig controls whether answers are enriched with scripture
// references. When disabled the server falls back to the plain answer with
// key terms bolded.
type EnrichmentConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AskLogConfig contains the ask-log storage configuration
type AskLogConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	StorageType string `mapstructure:"storage_type"`
	FilePath    string `mapstructure:"file_path"`
	DBPath      string `mapstructure:"db_path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		ValidateRequired: true,
	})
}

// LoadWithOptions loads configuration with additional options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := setConfigFile(v, opts.ConfigPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("FATWA_ASSISTANT")

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")

	v.SetDefault("gemini.endpoint",
		"https://generativelanguage.googleapis.com/v1/models/gemini-1.5-flash:generateContent")
	v.SetDefault("gemini.timeout_seconds", 10)

	v.SetDefault("quran.endpoint", "https://api.alquran.cloud/v1")
	v.SetDefault("quran.max_results", 5)
	v.SetDefault("quran.timeout_seconds", 10)

	v.SetDefault("hadith.endpoint", "https://api.hadith.example.com/random")
	v.SetDefault("hadith.max_results", 10)
	v.SetDefault("hadith.timeout_seconds", 10)

	v.SetDefault("enrichment.enabled", true)

	v.SetDefault("asklog.enabled", false)
	v.SetDefault("asklog.storage_type", "file")
	v.SetDefault("asklog.file_path", "./asklog.jsonl")
	v.SetDefault("asklog.db_path", "./asklog.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// setConfigFile sets the configuration file path with fallback logic
func setConfigFile(v *viper.Viper, configPath string) error {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return fmt.Errorf("config file specified by CONFIG_PATH does not exist: %s", envPath)
		}
		v.SetConfigFile(envPath)
		return nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	return nil
}

// setEnvironmentMappings sets explicit environment variable mappings.
// These mirror the variable names the upstream APIs document.
func setEnvironmentMappings(v *viper.Viper) {
	envMappings := map[string]string{
		"GOOGLE_API_KEY":  "gemini.apikey",
		"GEMINI_ENDPOINT": "gemini.endpoint",
		"HADITH_API_KEY":  "hadith.apikey",
		"HADITH_ENDPOINT": "hadith.endpoint",
		"QURAN_ENDPOINT":  "quran.endpoint",
		"PORT":            "server.port",
		"LOG_LEVEL":       "logging.level",
		"LOG_FORMAT":      "logging.format",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the configuration for required fields and valid values
func validateConfig(config *Config) error {
	var errs []ValidationError

	if config.Gemini.APIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "gemini.apikey",
			Message: "Gemini API key is required. Set via config file or GOOGLE_API_KEY environment variable",
		})
	}

	if config.Gemini.Endpoint == "" {
		errs = append(errs, ValidationError{
			Field:   "gemini.endpoint",
			Message: "Gemini endpoint is required",
		})
	}

	if config.Enrichment.Enabled && config.Hadith.APIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "hadith.apikey",
			Message: "Hadith API key is required when enrichment is enabled. Set via config file or HADITH_API_KEY environment variable",
		})
	}

	if config.Quran.MaxResults <= 0 {
		errs = append(errs, ValidationError{
			Field:   "quran.max_results",
			Message: "max_results must be greater than 0",
		})
	}

	if config.Hadith.MaxResults <= 0 {
		errs = append(errs, ValidationError{
			Field:   "hadith.max_results",
			Message: "max_results must be greater than 0",
		})
	}

	if config.Gemini.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "gemini.timeout_seconds",
			Message: "timeout_seconds must be greater than 0",
		})
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	validStorageTypes := []string{"file", "sqlite"}
	if config.AskLog.Enabled && !contains(validStorageTypes, config.AskLog.StorageType) {
		errs = append(errs, ValidationError{
			Field:   "asklog.storage_type",
			Message: fmt.Sprintf("storage type must be one of: %s", strings.Join(validStorageTypes, ", ")),
		})
	}

	if len(errs) > 0 {
		var errorMessages []string
		for _, err := range errs {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c

	if masked.Gemini.APIKey != "" {
		masked.Gemini.APIKey = maskValue(masked.Gemini.APIKey)
	}
	if masked.Hadith.APIKey != "" {
		masked.Hadith.APIKey = maskValue(masked.Hadith.APIKey)
	}

	return &masked
}

// maskValue masks sensitive values, showing only the first 4 characters
func maskValue(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-4)
}

// contains checks if a slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// WatchConfig enables configuration hot-reloading for development
func WatchConfig(configPath string, callback func(*Config)) error {
	v := viper.New()

	if err := setConfigFile(v, configPath); err != nil {
		return err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		config, err := LoadWithOptions(LoadOptions{
			ConfigPath:       configPath,
			ValidateRequired: true,
		})
		if err != nil {
			fmt.Printf("Failed to reload config after change to %s: %v\n", e.Name, err)
			return
		}
		callback(config)
	})

	return nil
}
