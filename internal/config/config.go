// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for cimonitor with
// support for multiple configuration sources and a well-defined precedence
// order. It lets teams customize polling behavior and GitHub endpoints
// through configuration files while keeping runtime flexibility with
// environment variables and command-line overrides.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in standard locations. Custom endpoints make
// it work against GitHub Enterprise deployments.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .cimonitor.yaml (current directory)
//   - .cimonitor.yml (current directory)
//   - ~/.cimonitor/config.yaml
//   - ~/.cimonitor/config.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Try to load config file if path is provided
	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		// Try default locations
		defaultPaths := []string{
			".cimonitor.yaml",
			".cimonitor.yml",
			filepath.Join(os.Getenv("HOME"), ".cimonitor", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".cimonitor", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	// GitHub endpoints
	if endpoint := os.Getenv("GITHUB_API_ENDPOINT"); endpoint != "" {
		cfg.GitHub.APIEndpoint = endpoint
	}
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	// Polling settings
	if interval := os.Getenv("CIMONITOR_POLL_INTERVAL"); interval != "" {
		if v, err := parsePositiveInt(interval); err == nil {
			cfg.Poll.IntervalSeconds = v
		}
	}
	if polls := os.Getenv("CIMONITOR_MAX_POLLS"); polls != "" {
		if v, err := parsePositiveInt(polls); err == nil {
			cfg.Poll.MaxPolls = v
		}
	}

	// Fetch settings
	if perPage := os.Getenv("CIMONITOR_PER_PAGE"); perPage != "" {
		if v, err := parsePositiveInt(perPage); err == nil {
			cfg.Fetch.PerPage = v
		}
	}
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// Validate checks if the configuration contains valid values. It ensures
// polling bounds are positive, page sizes are within GitHub's limits, and
// endpoints are not empty. This should be called after loading configuration
// to catch invalid settings early.
func (c *Config) Validate() error {
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %d", c.Poll.IntervalSeconds)
	}
	if c.Poll.MaxPolls <= 0 {
		return fmt.Errorf("max polls must be positive, got: %d", c.Poll.MaxPolls)
	}
	if c.Poll.RetrySleepSeconds <= 0 {
		return fmt.Errorf("retry sleep must be positive, got: %d", c.Poll.RetrySleepSeconds)
	}
	if c.Fetch.PerPage <= 0 {
		return fmt.Errorf("per page must be positive, got: %d", c.Fetch.PerPage)
	}
	if c.Fetch.PerPage > 100 {
		return fmt.Errorf("per page %d exceeds GitHub API limit of 100", c.Fetch.PerPage)
	}
	if c.Fetch.JobsPerPage <= 0 {
		return fmt.Errorf("jobs per page must be positive, got: %d", c.Fetch.JobsPerPage)
	}
	if c.Fetch.JobsPerPage > 100 {
		return fmt.Errorf("jobs per page %d exceeds GitHub API limit of 100", c.Fetch.JobsPerPage)
	}
	if c.GitHub.APIEndpoint == "" {
		return fmt.Errorf("GitHub API endpoint cannot be empty")
	}
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
	}
	return nil
}
