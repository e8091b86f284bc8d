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

// Package github provides a client for the GitHub Actions and Checks APIs.
// It fetches workflow runs, jobs, raw job logs, and check runs for a commit,
// and resolves pull requests to their head commit. The REST endpoints carry
// the bulk of the traffic; pull request resolution uses the GraphQL API via
// the shurcooL/graphql library.
//
// The package includes:
//   - A Client interface covering every fetch the tool performs
//   - A REST implementation with authenticated, retried transports
//   - Extraction of workflow run IDs from check-run URLs
//   - A mock client for testing
//   - Type definitions mirroring the API payloads
//
// Basic usage:
//
//	client := github.NewClient("your-github-token")
//	runs, err := client.FetchWorkflowRuns(ctx, "golang", "go", github.FetchOptions{
//	    HeadSHA: "deadbeef",
//	})
//	if err != nil {
//	    // Handle error
//	}
//	for _, run := range runs {
//	    // Inspect run status
//	}
package github
