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

// Status is the lifecycle state of a workflow run, job, or step as reported
// by the Actions API.
type Status string

// Workflow run statuses.
const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Completed reports whether the run has finished, regardless of outcome.
func (s Status) Completed() bool {
	return s == StatusCompleted
}

// Conclusion is the outcome of a completed workflow run, job, or step.
// Empty until the owning entity completes.
type Conclusion string

// Workflow run conclusions.
const (
	ConclusionSuccess        Conclusion = "success"
	ConclusionFailure        Conclusion = "failure"
	ConclusionCancelled      Conclusion = "cancelled"
	ConclusionSkipped        Conclusion = "skipped"
	ConclusionTimedOut       Conclusion = "timed_out"
	ConclusionActionRequired Conclusion = "action_required"
	ConclusionNeutral        Conclusion = "neutral"
)

// IsFailure reports whether the conclusion counts as a failing outcome.
// Cancelled and timed-out runs count as failures; skipped and neutral
// runs do not block an otherwise green batch.
func (c Conclusion) IsFailure() bool {
	switch c {
	case "", ConclusionSuccess, ConclusionSkipped, ConclusionNeutral:
		return false
	default:
		return true
	}
}

// WorkflowRun represents one execution of a workflow definition. Runs are
// fetched fresh on every poll and never persisted.
//
// CreatedAt and UpdatedAt stay raw strings rather than time.Time: the API
// occasionally omits them, and duration rendering must degrade to a sentinel
// instead of failing the fetch that carried them.
type WorkflowRun struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	Conclusion Conclusion `json:"conclusion"`
	HeadSHA    string     `json:"head_sha"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
	HTMLURL    string     `json:"html_url"`
}

// Job is one execution unit within a workflow run, carrying its ordered steps.
type Job struct {
	ID         int64      `json:"id"`
	RunID      int64      `json:"run_id"`
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	Conclusion Conclusion `json:"conclusion"`
	HTMLURL    string     `json:"html_url"`
	Steps      []Step     `json:"steps"`
}

// FailedSteps returns the job's steps whose conclusion counts as failing,
// preserving execution order.
func (j Job) FailedSteps() []Step {
	var failed []Step
	for _, step := range j.Steps {
		if step.Conclusion.IsFailure() {
			failed = append(failed, step)
		}
	}
	return failed
}

// Step is a single command or action executed within a job. Number is
// 1-based and unique within the parent job; ordering follows execution order.
type Step struct {
	Name        string     `json:"name"`
	Number      int        `json:"number"`
	Status      Status     `json:"status"`
	Conclusion  Conclusion `json:"conclusion"`
	StartedAt   string     `json:"started_at"`
	CompletedAt string     `json:"completed_at"`
}

// CheckRun is a provider-level pass/fail annotation attached to a commit.
// Its HTMLURL references the owning workflow run when one exists, which is
// how run IDs are recovered for job-level detail.
type CheckRun struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	Conclusion Conclusion `json:"conclusion"`
	HTMLURL    string     `json:"html_url"`
}

// PullRequestRef identifies the head commit a pull request currently points at.
type PullRequestRef struct {
	Number      int
	HeadSHA     string
	HeadRefName string
}

// FetchOptions configures workflow run queries. HeadSHA and Branch are
// mutually exclusive filters; PerPage defaults to defaultPerPage when zero.
type FetchOptions struct {
	// HeadSHA restricts results to runs triggered for this commit.
	HeadSHA string

	// Branch restricts results to runs on this branch.
	Branch string

	// Status restricts results to runs in this lifecycle state.
	Status Status

	// PerPage controls page size. GitHub caps it at 100.
	PerPage int
}

// Default page sizes for list endpoints.
const (
	defaultPerPage = 10
	jobsPerPage    = 50
)

// Response envelopes for the Actions list endpoints.
type workflowRunsResponse struct {
	TotalCount   int           `json:"total_count"`
	WorkflowRuns []WorkflowRun `json:"workflow_runs"`
}

type jobsResponse struct {
	TotalCount int   `json:"total_count"`
	Jobs       []Job `json:"jobs"`
}

type checkRunsResponse struct {
	TotalCount int        `json:"total_count"`
	CheckRuns  []CheckRun `json:"check_runs"`
}

type branchResponse struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}
