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

package config

import "time"

// Config represents the complete configuration for cimonitor. It
// consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Poll   PollConfig   `yaml:"poll"`
	Fetch  FetchConfig  `yaml:"fetch"`
}

// GitHubConfig contains GitHub-specific settings including API endpoints
// and authentication configuration. This allows easy configuration for
// GitHub Enterprise deployments by specifying custom endpoints.
type GitHubConfig struct {
	APIEndpoint     string `yaml:"api_endpoint"`
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
}

// PollConfig controls the watch command's polling loop: how often to
// poll, how many polls to attempt before timing out, and how long to
// wait before re-running failed jobs in retry mode. Durations are
// stored as whole seconds so the YAML stays plain integers.
type PollConfig struct {
	IntervalSeconds   int `yaml:"interval_seconds"`
	MaxPolls          int `yaml:"max_polls"`
	RetrySleepSeconds int `yaml:"retry_sleep_seconds"`
}

// Interval returns the poll interval as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// RetrySleep returns the wait before a retry attempt as a duration.
func (p PollConfig) RetrySleep() time.Duration {
	return time.Duration(p.RetrySleepSeconds) * time.Second
}

// FetchConfig contains page sizes for the GitHub Actions list endpoints.
// Jobs use a larger page than runs because a single run commonly fans
// out into many jobs.
type FetchConfig struct {
	PerPage     int `yaml:"per_page"`
	JobsPerPage int `yaml:"jobs_per_page"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. These defaults are tuned for public GitHub.com usage but can
// be overridden for GitHub Enterprise or special requirements.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIEndpoint:     "https://api.github.com",
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
		},
		Poll: PollConfig{
			IntervalSeconds:   10,
			MaxPolls:          120,
			RetrySleepSeconds: 30,
		},
		Fetch: FetchConfig{
			PerPage:     10,
			JobsPerPage: 50,
		},
	}
}
