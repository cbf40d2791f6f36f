package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is probed in the working directory when no path is given.
const DefaultConfigFile = "linkrelay.yaml"

// Load merges LoadBaseline() + an optional YAML file + LINKRELAY_* env overrides.
//
// path may be empty; LINKRELAY_CONFIG is consulted next, then DefaultConfigFile
// if it exists. An explicitly named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	config, err := loadBaseAndFile(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadFetcher resolves only the status fetcher settings. Relay settings are
// neither overridden from the environment nor validated, so a broken relay
// setup does not keep the fetcher from starting.
func LoadFetcher(path string) (*FetcherConfig, error) {
	config, err := loadBaseAndFile(path)
	if err != nil {
		return nil, err
	}

	applyFetcherEnvOverrides(&config.Fetcher)

	if err := ValidateFetcher(&config.Fetcher); err != nil {
		return nil, fmt.Errorf("fetcher validation failed: %w", err)
	}

	return &config.Fetcher, nil
}

func loadBaseAndFile(path string) (*Config, error) {
	config := LoadBaseline()

	if path == "" {
		path = os.Getenv("LINKRELAY_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		if err := loadFromFile(config, path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return config, nil
}

// loadFromFile decodes YAML over the current values, so keys missing from the
// file keep their defaults.
func loadFromFile(config *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies LINKRELAY_* environment variables to the config.
func applyEnvOverrides(config *Config) error {
	config.Relay.Host = GetEnvVar("LINKRELAY_HOST", config.Relay.Host)
	config.Relay.Path = GetEnvVar("LINKRELAY_PATH", config.Relay.Path)

	if val := os.Getenv("LINKRELAY_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("LINKRELAY_PORT: %w", err)
		}
		config.Relay.Port = port
	}

	if val := os.Getenv("LINKRELAY_PUSH_INTERVAL"); val != "" {
		interval, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("LINKRELAY_PUSH_INTERVAL: %w", err)
		}
		config.Relay.PushInterval = interval
	}

	// Input files
	config.Files.Topology = GetEnvVar("LINKRELAY_TOPOLOGY_FILE", config.Files.Topology)
	config.Files.Stat = GetEnvVar("LINKRELAY_STAT_FILE", config.Files.Stat)

	// Admin API. LINKRELAY_API_ADDR=off disables the server.
	if val := os.Getenv("LINKRELAY_API_ADDR"); val != "" {
		if val == "off" {
			config.API.Addr = ""
		} else {
			config.API.Addr = val
		}
	}
	config.API.StatsDir = GetEnvVar("LINKRELAY_STATS_DIR", config.API.StatsDir)
	config.API.StaticDir = GetEnvVar("LINKRELAY_STATIC_DIR", config.API.StaticDir)

	// Logging
	config.Logging.File = GetEnvVar("LINKRELAY_LOG_FILE", config.Logging.File)
	config.Logging.AuditDir = GetEnvVar("LINKRELAY_AUDIT_DIR", config.Logging.AuditDir)
	config.Logging.MaxSizeMB = GetEnvInt("LINKRELAY_LOG_MAX_SIZE_MB", config.Logging.MaxSizeMB)

	applyFetcherEnvOverrides(&config.Fetcher)

	return nil
}

func applyFetcherEnvOverrides(fetcher *FetcherConfig) {
	fetcher.PageURL = GetEnvVar("LINKRELAY_FETCH_URL", fetcher.PageURL)
	fetcher.OutputFile = GetEnvVar("LINKRELAY_FETCH_OUTPUT", fetcher.OutputFile)
	fetcher.Interval = GetEnvDuration("LINKRELAY_FETCH_INTERVAL", fetcher.Interval)
}

// GetEnvVar returns the value of an environment variable with a default.
func GetEnvVar(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvDuration returns the value of an environment variable as a duration with a default.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvInt returns the value of an environment variable as an int with a default.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
