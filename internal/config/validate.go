package config

import (
	"fmt"
	"strings"
	"time"
)

// MinPushInterval bounds how fast a session may be asked to tick.
const MinPushInterval = 10 * time.Millisecond

// Validate enforces the relay configuration rules.
func Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateRelay(&config.Relay); err != nil {
		return fmt.Errorf("relay validation failed: %w", err)
	}

	if err := validateFiles(&config.Files); err != nil {
		return fmt.Errorf("files validation failed: %w", err)
	}

	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	return nil
}

// validateRelay validates listener and push timing parameters.
func validateRelay(relay *RelayConfig) error {
	if relay.Port < 1 || relay.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", relay.Port)
	}
	if !strings.HasPrefix(relay.Path, "/") {
		return fmt.Errorf("path must start with '/', got %q", relay.Path)
	}
	if relay.PushInterval < MinPushInterval {
		return fmt.Errorf("push interval must be >= %v, got %v", MinPushInterval, relay.PushInterval)
	}
	return nil
}

// validateFiles validates the input file paths.
func validateFiles(files *FilesConfig) error {
	if strings.TrimSpace(files.Topology) == "" {
		return fmt.Errorf("topology file path is empty")
	}
	if strings.TrimSpace(files.Stat) == "" {
		return fmt.Errorf("stat file path is empty")
	}
	return nil
}

// validateLogging validates the audit directory and rotation limits.
func validateLogging(logging *LoggingConfig) error {
	if strings.TrimSpace(logging.AuditDir) == "" {
		return fmt.Errorf("audit directory is empty")
	}
	if logging.MaxSizeMB < 0 {
		return fmt.Errorf("max log size must be non-negative, got %d", logging.MaxSizeMB)
	}
	if logging.MaxBackups < 0 {
		return fmt.Errorf("max log backups must be non-negative, got %d", logging.MaxBackups)
	}
	if logging.MaxAgeDays < 0 {
		return fmt.Errorf("max log age must be non-negative, got %d", logging.MaxAgeDays)
	}
	return nil
}

// ValidateFetcher validates the status fetcher settings. The relay does not
// use them, so Validate leaves them alone.
func ValidateFetcher(fetcher *FetcherConfig) error {
	if strings.TrimSpace(fetcher.PageURL) == "" {
		return fmt.Errorf("page url is empty")
	}
	if strings.TrimSpace(fetcher.OutputFile) == "" {
		return fmt.Errorf("output file is empty")
	}
	if fetcher.Interval <= 0 {
		return fmt.Errorf("fetch interval must be positive, got %v", fetcher.Interval)
	}
	return nil
}
