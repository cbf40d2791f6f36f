package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete relay configuration.
type Config struct {
	Relay   RelayConfig   `yaml:"relay"`
	Files   FilesConfig   `yaml:"files"`
	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
	Fetcher FetcherConfig `yaml:"fetcher"`
}

// RelayConfig holds the streaming endpoint settings.
type RelayConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Path         string        `yaml:"path"`
	PushInterval time.Duration `yaml:"pushInterval"`
}

// FilesConfig names the two input files produced by external collectors.
type FilesConfig struct {
	Topology string `yaml:"topology"`
	Stat     string `yaml:"stat"`
}

// APIConfig holds the admin/REST server settings. An empty Addr disables it.
type APIConfig struct {
	Addr      string `yaml:"addr"`
	StatsDir  string `yaml:"statsDir"`
	StaticDir string `yaml:"staticDir"`
}

// LoggingConfig controls the process log file and the session audit log.
type LoggingConfig struct {
	File       string `yaml:"file"`
	AuditDir   string `yaml:"auditDir"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// FetcherConfig holds the status fetcher settings.
type FetcherConfig struct {
	PageURL    string        `yaml:"pageUrl"`
	OutputFile string        `yaml:"outputFile"`
	Interval   time.Duration `yaml:"interval"`
}

// Addr returns the host:port the relay listens on.
func (r RelayConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// LoadBaseline returns the built-in defaults.
func LoadBaseline() *Config {
	return &Config{
		Relay: RelayConfig{
			Host:         "",
			Port:         9000,
			Path:         "/",
			PushInterval: 2000 * time.Millisecond,
		},
		Files: FilesConfig{
			Topology: "links.txt",
			Stat:     "stat",
		},
		API: APIConfig{
			Addr:      "127.0.0.1:8081",
			StatsDir:  "/tmp/stats/status/rt/",
			StaticDir: "/tmp/stats/",
		},
		Logging: LoggingConfig{
			File:       "",
			AuditDir:   "logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Compress:   false,
		},
		Fetcher: FetcherConfig{
			PageURL:    "127.0.0.1:8080",
			OutputFile: "status.xml",
			Interval:   5 * time.Second,
		},
	}
}
