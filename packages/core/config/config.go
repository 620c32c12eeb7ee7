package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the hitmatch configuration
type Config struct {
	Reporters    []string       `json:"reporters,omitempty"`    // Output reporters
	OutputDir    string         `json:"outputDir,omitempty"`    // Directory for output files
	Parallel     *bool          `json:"parallel,omitempty"`
	Concurrency  int            `json:"concurrency,omitempty"`  // Number of cases evaluated at once
	Bail         *bool          `json:"bail,omitempty"`
	Verbose      *bool          `json:"verbose,omitempty"`
	NoColor      *bool          `json:"noColor,omitempty"`
	DB           string         `json:"db,omitempty"`           // Default connection for query subjects
	QueryTimeout int            `json:"queryTimeout,omitempty"` // milliseconds
	EnvFile      string         `json:"envFile,omitempty"`
	Variables    map[string]any `json:"variables,omitempty"` // Variables visible to every suite
}

// BoolPtr returns a pointer to a bool value
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

// GetParallel returns the parallel setting, defaulting to false
func (c *Config) GetParallel() bool {
	return getBool(c.Parallel, false)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hitmatch.config.json",
	"hitmatch.config.json",
	".hitmatchrc",
	".hitmatchrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

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

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Validate checks values that JSON decoding alone cannot reject.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("queryTimeout must not be negative, got %d", c.QueryTimeout)
	}
	for _, r := range c.Reporters {
		if !isKnownReporter(r) {
			return fmt.Errorf("unknown reporter %q", r)
		}
	}
	return nil
}

// KnownReporters lists the accepted reporter names.
var KnownReporters = []string{"console", "json", "junit", "tap", "html"}

func isKnownReporter(name string) bool {
	for _, r := range KnownReporters {
		if r == name {
			return true
		}
	}
	return false
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.DB != "" {
		result.DB = other.DB
	}
	if other.QueryTimeout > 0 {
		result.QueryTimeout = other.QueryTimeout
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Variables) > 0 {
		merged := make(map[string]any, len(result.Variables)+len(other.Variables))
		for k, v := range result.Variables {
			merged[k] = v
		}
		for k, v := range other.Variables {
			merged[k] = v
		}
		result.Variables = merged
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
