package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all scanner configuration.
type Config struct {
	// Host to scan. Defaults to localhost; overriding it is logged loudly
	// because the tool is built for targets the operator owns.
	Host string `json:"host" yaml:"host"`

	// Port of the web frontend. Required.
	Port int `json:"port" yaml:"port"`

	// APIPort of a separate API origin. Zero means the frontend serves
	// the API too.
	APIPort int `json:"api_port" yaml:"api_port"`

	// Token is a bearer token added to every request.
	Token string `json:"token" yaml:"token"`

	// SafeMode skips destructive and high-volume checks.
	SafeMode bool `json:"safe_mode" yaml:"safe_mode"`

	// AutoContinue proceeds past the rate-limit escalation threshold
	// without prompting.
	AutoContinue bool `json:"auto_continue" yaml:"auto_continue"`

	// Request timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Rate limiting applied to outgoing probes
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`

	// WordlistPath overrides the built-in discovery wordlist.
	WordlistPath string `json:"wordlist" yaml:"wordlist"`

	// OutputPath writes the JSON report there after the scan.
	OutputPath string `json:"output" yaml:"output"`

	// NoCache disables the route cache for this run.
	NoCache bool `json:"no_cache" yaml:"no_cache"`

	// CachePath overrides the route cache location.
	CachePath string `json:"cache_path" yaml:"cache_path"`

	// HistoryPath overrides the scan history location. Empty disables
	// history persistence.
	HistoryPath string `json:"history_path" yaml:"history_path"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:              "localhost",
		SafeMode:          true,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 50,
		Burst:             10,
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port is required and must be between 1 and 65535")
	}

	if c.APIPort != 0 && (c.APIPort < 1 || c.APIPort > 65535) {
		return fmt.Errorf("api port must be between 1 and 65535")
	}

	if c.Host == "" {
		c.Host = "localhost"
	}

	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}

	return nil
}

// BaseURL returns the frontend origin.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// APIURL returns the API origin, or empty when the frontend serves the API.
func (c *Config) APIURL() string {
	if c.APIPort == 0 {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", c.Host, c.APIPort)
}

// IsLocal reports whether the host is a loopback name.
func (c *Config) IsLocal() bool {
	switch c.Host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
