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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates GitHub authentication failed or no token was provided.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrRepoNotFound indicates the specified repository does not exist, is not
	// accessible, or could not be detected from the working directory.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrLogsExpired indicates the logs for a job are no longer retained by GitHub.
	// Maps to exit code 1.
	ErrLogsExpired = errors.New("job logs expired")

	// ErrCIFailed indicates one or more watched workflow runs concluded in failure.
	// Maps to exit code 1.
	ErrCIFailed = errors.New("ci checks failed")

	// ErrWatchTimeout indicates the watch loop reached its poll budget before
	// all workflow runs completed.
	// Maps to exit code 1.
	ErrWatchTimeout = errors.New("watch timed out")
)
