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

// Package main implements the cimonitor command-line interface.
// The tool inspects GitHub Actions CI for a commit, branch, or pull
// request: a point-in-time report of failing check runs, error-focused
// log extraction, and a polling watch mode that follows workflow runs
// to completion.
//
// The CLI supports:
//   - cimonitor status: failing check runs with their failed steps
//   - cimonitor logs: error log sections per failing job (filtered, raw, or by job ID)
//   - cimonitor watch: poll until workflows complete, fail, or time out
//   - Target selection via --branch, --commit, --pr, or git detection
//   - GitHub token authentication via flag or environment variable
//
// Usage:
//
//	cimonitor <status|logs|watch> [flags]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	cimonitor status --repo golang/go --branch master
//
// Exit codes:
//   - 0: Success, including reports that show failures and Ctrl-C during watch
//   - 1: General error, failed workflows or timeout during watch
//   - 2: Authentication/authorization error
//   - 3: Network error
package main
