// Package config handles configuration loading and management for riqwest.
//
// It provides functionality for:
//   - Loading configuration from .riqwest.yaml or .riqwest.json files
//   - Default configuration values
//   - Merging file settings with command-line overrides
//   - Translating settings into client options
package config
