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

package testutil

import (
	"fmt"
	"time"

	"github.com/sirseerhq/cimonitor/internal/github"
)

// DefaultHeadSHA is the commit most fixtures hang their runs on
const DefaultHeadSHA = "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0"

// WorkflowRunBuilder provides a fluent API for creating test workflow runs
type WorkflowRunBuilder struct {
	run github.WorkflowRun
}

// NewWorkflowRunBuilder creates a run builder with defaults: completed,
// successful, triggered for DefaultHeadSHA
func NewWorkflowRunBuilder(id int64) *WorkflowRunBuilder {
	return &WorkflowRunBuilder{
		run: github.WorkflowRun{
			ID:         id,
			Name:       "CI",
			Status:     github.StatusCompleted,
			Conclusion: github.ConclusionSuccess,
			HeadSHA:    DefaultHeadSHA,
			CreatedAt:  "2024-01-15T10:00:00Z",
			UpdatedAt:  "2024-01-15T10:05:00Z",
			HTMLURL:    fmt.Sprintf("https://github.com/octocat/Hello-World/actions/runs/%d", id),
		},
	}
}

// WithName sets the workflow name
func (b *WorkflowRunBuilder) WithName(name string) *WorkflowRunBuilder {
	b.run.Name = name
	return b
}

// WithConclusion sets the run conclusion
func (b *WorkflowRunBuilder) WithConclusion(c github.Conclusion) *WorkflowRunBuilder {
	b.run.Conclusion = c
	return b
}

// WithHeadSHA sets the commit the run was triggered for
func (b *WorkflowRunBuilder) WithHeadSHA(sha string) *WorkflowRunBuilder {
	b.run.HeadSHA = sha
	return b
}

// InProgress marks the run as still executing
func (b *WorkflowRunBuilder) InProgress() *WorkflowRunBuilder {
	b.run.Status = github.StatusInProgress
	b.run.Conclusion = ""
	return b
}

// Build creates the workflow run
func (b *WorkflowRunBuilder) Build() github.WorkflowRun {
	return b.run
}

// JobBuilder provides a fluent API for creating test jobs
type JobBuilder struct {
	job github.Job
}

// NewJobBuilder creates a job builder with defaults: completed and
// successful, with no steps
func NewJobBuilder(id int64) *JobBuilder {
	return &JobBuilder{
		job: github.Job{
			ID:         id,
			Name:       "build",
			Status:     github.StatusCompleted,
			Conclusion: github.ConclusionSuccess,
		},
	}
}

// WithName sets the job name
func (b *JobBuilder) WithName(name string) *JobBuilder {
	b.job.Name = name
	return b
}

// WithRunID attaches the job to a workflow run
func (b *JobBuilder) WithRunID(runID int64) *JobBuilder {
	b.job.RunID = runID
	return b
}

// WithConclusion sets the job conclusion
func (b *JobBuilder) WithConclusion(c github.Conclusion) *JobBuilder {
	b.job.Conclusion = c
	return b
}

// WithStep appends a step with 30 seconds of fixture runtime
func (b *JobBuilder) WithStep(name string, number int, c github.Conclusion) *JobBuilder {
	b.job.Steps = append(b.job.Steps, github.Step{
		Name:        name,
		Number:      number,
		Status:      github.StatusCompleted,
		Conclusion:  c,
		StartedAt:   "2024-01-15T10:00:00Z",
		CompletedAt: "2024-01-15T10:00:30Z",
	})
	return b
}

// Build creates the job, deriving its HTML URL from the attached run
// when one was set
func (b *JobBuilder) Build() github.Job {
	job := b.job
	if job.HTMLURL == "" && job.RunID != 0 {
		job.HTMLURL = fmt.Sprintf("https://github.com/octocat/Hello-World/actions/runs/%d/job/%d", job.RunID, job.ID)
	}
	return job
}

// CheckRunBuilder provides a fluent API for creating test check runs
type CheckRunBuilder struct {
	check github.CheckRun
}

// NewCheckRunBuilder creates a check builder with defaults: completed
// and successful, with no backing workflow run
func NewCheckRunBuilder(name string) *CheckRunBuilder {
	return &CheckRunBuilder{
		check: github.CheckRun{
			ID:         1,
			Name:       name,
			Status:     github.StatusCompleted,
			Conclusion: github.ConclusionSuccess,
		},
	}
}

// WithID sets the check run ID
func (b *CheckRunBuilder) WithID(id int64) *CheckRunBuilder {
	b.check.ID = id
	return b
}

// WithConclusion sets the check conclusion
func (b *CheckRunBuilder) WithConclusion(c github.Conclusion) *CheckRunBuilder {
	b.check.Conclusion = c
	return b
}

// WithRunURL points the check at a workflow run so job detail can be
// recovered from its URL
func (b *CheckRunBuilder) WithRunURL(runID int64) *CheckRunBuilder {
	b.check.HTMLURL = fmt.Sprintf("https://github.com/octocat/Hello-World/actions/runs/%d/job/%d", runID, b.check.ID)
	return b
}

// WithDetailsURL points the check at an external provider page, the shape
// third-party checks like coverage services report
func (b *CheckRunBuilder) WithDetailsURL(u string) *CheckRunBuilder {
	b.check.HTMLURL = u
	return b
}

// Build creates the check run
func (b *CheckRunBuilder) Build() github.CheckRun {
	return b.check
}

// SampleFailureLog renders runner-style log text for a job whose named
// step failed: a passing checkout section, then the failing section with
// keyword lines the error filter keeps. Timestamps carry the current year
// so plain output lines read as runner noise.
func SampleFailureLog(step string) string {
	year := time.Now().Year()
	ts := func(sec int) string {
		return fmt.Sprintf("%d-01-15T10:03:%02d.0000000Z ", year, sec)
	}
	return ts(0) + "##[group]Run actions/checkout@v4\n" +
		ts(0) + "Syncing repository: octocat/Hello-World\n" +
		ts(1) + "##[endgroup]\n" +
		ts(2) + "##[group]Run " + step + "\n" +
		ts(2) + "building all targets\n" +
		ts(3) + "Error: compilation failed\n" +
		ts(4) + "##[error]Process completed with exit code 1.\n" +
		ts(4) + "##[endgroup]\n" +
		ts(5) + "Post job cleanup.\n"
}
