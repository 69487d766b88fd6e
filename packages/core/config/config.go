package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"gopkg.in/yaml.v3"
)

// Config represents the riqwest configuration
type Config struct {
	Host         string            `yaml:"host,omitempty"`
	Port         int               `yaml:"port,omitempty"`
	Timeout      int               `yaml:"timeout,omitempty"` // milliseconds
	ValidateSSL  *bool             `yaml:"validateSSL,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"` // Default headers for all requests
	LogFormat    string            `yaml:"logFormat,omitempty"`
	History      string            `yaml:"history,omitempty"` // SQLite database for request history
	ExpectStatus []int             `yaml:"expectStatus,omitempty"`
	Schema       string            `yaml:"schema,omitempty"` // JSON schema file for response bodies
	Verbose      *bool             `yaml:"verbose,omitempty"`
	NoColor      *bool             `yaml:"noColor,omitempty"`
}

// Log formats understood by the CLI
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	LogFormatSlog    = "slog"
	LogFormatNone    = "none"
)

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the request timeout
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return rhttp.DefaultTimeout
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// Validate reports settings that can never work
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	switch c.LogFormat {
	case "", LogFormatConsole, LogFormatJSON, LogFormatSlog, LogFormatNone:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	for _, code := range c.ExpectStatus {
		if code < 100 || code > 599 {
			return fmt.Errorf("invalid expected status %d", code)
		}
	}
	return nil
}

// ClientOptions translates the configuration into client options
func (c *Config) ClientOptions() []rhttp.ClientOption {
	opts := []rhttp.ClientOption{
		rhttp.WithTimeout(c.TimeoutDuration()),
		rhttp.WithValidateSSL(c.GetValidateSSL()),
	}
	if c.Port > 0 {
		opts = append(opts, rhttp.WithPort(c.Port))
	}
	if len(c.Headers) > 0 {
		opts = append(opts, rhttp.WithHeaders(c.Headers))
	}
	return opts
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".riqwest.yaml",
	".riqwest.yml",
	"riqwest.yaml",
	".riqwest.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. JSON files
// parse as YAML.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Host != "" {
		result.Host = other.Host
	}
	if other.Port > 0 {
		result.Port = other.Port
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}
	if other.History != "" {
		result.History = other.History
	}
	if other.Schema != "" {
		result.Schema = other.Schema
	}
	if len(other.ExpectStatus) > 0 {
		result.ExpectStatus = other.ExpectStatus
	}

	// Boolean flags - only override if explicitly set in other config
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge headers
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
