// Package config handles configuration loading and management for hitmatch.
//
// It provides functionality for:
//   - Loading configuration from .hitmatch.config.json or .hitmatchrc files
//   - Default configuration values
//   - Merging file settings with command-line overrides
package config
