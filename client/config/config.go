// Package config loads the optional focusctl defaults file. Flags
// always win over file values; the password is never read from a file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jitsi-tools/focusctl/pkg/errors"
)

// FileName is the defaults file looked up in the working directory and
// the user's home directory, in that order.
const FileName = ".focusctl.yml"

// Config represents the focusctl defaults
type Config struct {
	Server                string `yaml:"server"`
	JID                   string `yaml:"jid"`
	Focus                 string `yaml:"focus"`
	PollIntervalSeconds   int    `yaml:"poll_interval_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// Error codes for config package
var (
	ErrReadFailed  = errors.MustNewCode("config.read_failed")
	ErrParseFailed = errors.MustNewCode("config.parse_failed")
)

// DefaultConfig returns the compiled-in defaults
func DefaultConfig() *Config {
	return &Config{
		PollIntervalSeconds:   10,
		RequestTimeoutSeconds: 30,
	}
}

// Load loads configuration from the defaults file, falling back to the
// compiled-in defaults when no file exists.
func Load() (*Config, error) {
	configPath := findConfigFile()
	if configPath != "" {
		return LoadFromFile(configPath)
	}
	return DefaultConfig(), nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ErrReadFailed, err, "failed to read config file").
			AddContext("path", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(ErrParseFailed, err, "failed to parse config file").
			AddContext("path", path)
	}

	return cfg, nil
}

// PollInterval returns the poll interval as a duration. Non-positive
// values fall back to the default.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return time.Duration(DefaultConfig().PollIntervalSeconds) * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return time.Duration(DefaultConfig().RequestTimeoutSeconds) * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// findConfigFile searches for the defaults file
func findConfigFile() string {
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
