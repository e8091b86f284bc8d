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

package github

import "context"

// Client defines the interface for interacting with GitHub's API.
// This interface allows for easy mocking in tests.
type Client interface {
	// FetchWorkflowRuns retrieves workflow runs for the repository, filtered
	// by head commit or branch according to opts.
	FetchWorkflowRuns(ctx context.Context, owner, repo string, opts FetchOptions) ([]WorkflowRun, error)

	// FetchJobsForRun retrieves the jobs belonging to a single workflow run,
	// including their ordered steps.
	FetchJobsForRun(ctx context.Context, owner, repo string, runID int64) ([]Job, error)

	// FetchJobByID retrieves a single job by its ID.
	FetchJobByID(ctx context.Context, owner, repo string, jobID int64) (*Job, error)

	// FetchRawLogs retrieves the plaintext log output of a job. GitHub
	// redirects to blob storage; the redirect is followed transparently.
	FetchRawLogs(ctx context.Context, owner, repo string, jobID int64) (string, error)

	// FetchCheckRuns retrieves the check runs reported for a commit.
	FetchCheckRuns(ctx context.Context, owner, repo, sha string) ([]CheckRun, error)

	// FetchBranchHead resolves a branch name to its current head commit SHA.
	FetchBranchHead(ctx context.Context, owner, repo, branch string) (string, error)

	// ResolvePullRequest resolves a pull request number to its head commit.
	ResolvePullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestRef, error)

	// RerunFailedJobs asks GitHub to re-run only the failed jobs of a run.
	RerunFailedJobs(ctx context.Context, owner, repo string, runID int64) error
}
