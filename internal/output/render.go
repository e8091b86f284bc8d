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

package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirseerhq/cimonitor/internal/github"
)

// Rule widths for the report separators.
const (
	checkRunRuleWidth = 60
	rawLogRuleWidth   = 80
	stepLogRuleWidth  = 50
)

// FailedStepSummary is the display form of one failed step: its name,
// 1-based step number, and an already-formatted duration string.
type FailedStepSummary struct {
	Name     string
	Number   int
	Duration string
}

// Renderer writes the status, logs, and watch report blocks to a single
// destination. Methods never fail; a broken pipe surfaces on process exit.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a Renderer writing to the provided writer.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) rule(glyph string, width int) {
	fmt.Fprintln(r.out, strings.Repeat(glyph, width))
}

// TargetDetails prints the resolved repository coordinates for verbose
// mode. Empty parts are skipped; a commit target carries no branch.
func (r *Renderer) TargetDetails(owner, repo, branch, sha string) {
	fmt.Fprintf(r.out, "Repository: %s/%s\n", owner, repo)
	if branch != "" {
		fmt.Fprintf(r.out, "Branch: %s\n", branch)
	}
	if sha != "" {
		fmt.Fprintf(r.out, "Latest commit: %s\n", sha)
	}
}

// NoFailingChecks reports an all-green commit for the status view.
func (r *Renderer) NoFailingChecks(target string) {
	fmt.Fprintf(r.out, "✅ No failing CI jobs found for %s!\n", target)
}

// FailingChecksHeader opens the status report for n failing check runs.
func (r *Renderer) FailingChecksHeader(n int, target string) {
	fmt.Fprintf(r.out, "❌ Found %d failing CI job(s) for %s:\n\n", n, target)
}

// CheckRunHeader prints the banner block for the i-th failing check run.
func (r *Renderer) CheckRunHeader(i int, check github.CheckRun) {
	r.rule("=", checkRunRuleWidth)
	fmt.Fprintf(r.out, "FAILED JOB #%d: %s\n", i, check.Name)
	fmt.Fprintf(r.out, "Status: %s\n", orUnknown(check.Conclusion))
	fmt.Fprintf(r.out, "URL: %s\n", check.HTMLURL)
	r.rule("=", checkRunRuleWidth)
}

// FailedSteps lists a job's failed steps with their durations.
func (r *Renderer) FailedSteps(jobName string, steps []FailedStepSummary) {
	fmt.Fprintf(r.out, "\n📋 Failed Steps in %s:\n", jobName)
	for _, step := range steps {
		fmt.Fprintf(r.out, "  ❌ Step %d: %s (took %s)\n", step.Number, step.Name, step.Duration)
	}
	fmt.Fprintln(r.out)
}

// LogsHint points the reader at the logs command for step-level detail.
func (r *Renderer) LogsHint() {
	fmt.Fprintf(r.out, "💡 Use 'cimonitor logs' to see detailed error logs for failed steps only\n\n")
}

// NoRunDetails marks a check run whose URL carries no workflow run id.
func (r *Renderer) NoRunDetails() {
	fmt.Fprintln(r.out, "Cannot retrieve detailed information for this check run type")
}

// JobError reports a per-item processing failure without touching the
// rest of the batch.
func (r *Renderer) JobError(name, errText string) {
	fmt.Fprintf(r.out, "⚠️ %s: %s\n", name, errText)
}

// RawJobLogHeader opens the single-job raw log view.
func (r *Renderer) RawJobLogHeader(jobID int64) {
	fmt.Fprintf(r.out, "📄 Raw logs for job ID %d:\n", jobID)
	r.rule("=", rawLogRuleWidth)
}

// JobSummary prints the identity block above a single job's raw logs.
func (r *Renderer) JobSummary(job github.Job) {
	fmt.Fprintf(r.out, "Job: %s\n", job.Name)
	fmt.Fprintf(r.out, "Status: %s\n", orUnknown(job.Conclusion))
	fmt.Fprintf(r.out, "URL: %s\n", job.HTMLURL)
	r.rule("-", rawLogRuleWidth)
}

// LogText writes raw log text verbatim, guaranteeing a trailing newline.
func (r *Renderer) LogText(text string) {
	if text == "" {
		return
	}
	io.WriteString(r.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(r.out)
	}
}

// NoFailingJobs reports that no jobs failed for the raw-logs view.
func (r *Renderer) NoFailingJobs() {
	fmt.Fprintln(r.out, "✅ No failing jobs found for this commit!")
}

// RawLogsHeader opens the all-failed-jobs raw log view.
func (r *Renderer) RawLogsHeader(n int) {
	fmt.Fprintf(r.out, "📄 Raw logs for %d failed job(s):\n\n", n)
}

// RawLogBlock prints one failed job's complete raw logs inside rules.
func (r *Renderer) RawLogBlock(i int, job github.Job, text string) {
	r.rule("=", rawLogRuleWidth)
	fmt.Fprintf(r.out, "RAW LOGS #%d: %s (ID: %d)\n", i, job.Name, job.ID)
	r.rule("=", rawLogRuleWidth)
	r.LogText(text)
	fmt.Fprintln(r.out)
	r.rule("=", rawLogRuleWidth)
	fmt.Fprintln(r.out)
}

// ErrorLogsHeader opens the filtered error-log view.
func (r *Renderer) ErrorLogsHeader(n int) {
	fmt.Fprintf(r.out, "📄 Error logs for %d failing job(s):\n\n", n)
}

// JobLogsHeader labels the i-th failing job in the filtered view.
func (r *Renderer) JobLogsHeader(i int, name string) {
	fmt.Fprintf(r.out, "LOGS #%d: %s\n", i, name)
}

// StepLogHeader opens the log section of one failed step.
func (r *Renderer) StepLogHeader(step string) {
	fmt.Fprintf(r.out, "\n📄 Logs for Failed Step: %s\n", step)
	r.rule("-", stepLogRuleWidth)
}

// LogLines prints the given lines, skipping blank ones.
func (r *Renderer) LogLines(lines []string) {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(r.out, line)
	}
}

// EmptyStepLog marks a step whose captured section held no text.
func (r *Renderer) EmptyStepLog() {
	fmt.Fprintln(r.out, "No logs found for this step")
}

// StepLogsMissing reports that no step sections could be located in a
// job's logs, usually a provider log-format drift.
func (r *Renderer) StepLogsMissing(job string) {
	fmt.Fprintf(r.out, "\n📄 Could not extract step-specific logs for %s\n", job)
	fmt.Fprintln(r.out, "💡 This might be due to log format differences")
}

// JobLogsUnavailable marks a job whose logs could not be retrieved.
func (r *Renderer) JobLogsUnavailable() {
	fmt.Fprintln(r.out, "Could not retrieve job logs")
}

// WatchHeader opens a watch session for the given target.
func (r *Renderer) WatchHeader(target string) {
	fmt.Fprintf(r.out, "🔄 Watching CI status for %s...\n", target)
}

// PollStatus renders one poll's worth of workflow runs with their
// lifecycle emoji, status, conclusion, duration, and URL.
func (r *Renderer) PollStatus(runs []github.WorkflowRun) {
	fmt.Fprintf(r.out, "📊 Found %d workflow run(s):\n", len(runs))
	for _, run := range runs {
		fmt.Fprintf(r.out, "%s %s\n", runEmoji(run.Status, run.Conclusion), run.Name)
		fmt.Fprintf(r.out, "   Status: %s\n", run.Status)
		if run.Conclusion != "" {
			fmt.Fprintf(r.out, "   Result: %s\n", run.Conclusion)
		}
		fmt.Fprintf(r.out, "   Duration: %s\n", WorkflowDuration(run.CreatedAt, run.UpdatedAt))
		fmt.Fprintf(r.out, "   URL: %s\n", run.HTMLURL)
		fmt.Fprintln(r.out)
	}
}

// InitialWaitNotice tells the user the first poll found nothing and the
// watch is waiting for runs to be reported.
func (r *Renderer) InitialWaitNotice(interval time.Duration) {
	fmt.Fprintf(r.out, "⏳ Waiting %d seconds for workflow runs to appear...\n", int(interval.Seconds()))
}

// NoRunsNotice marks a later empty poll.
func (r *Renderer) NoRunsNotice() {
	fmt.Fprintln(r.out, "⏳ No workflow runs have been reported yet...")
}

// WatchSuccess reports that every workflow completed successfully.
func (r *Renderer) WatchSuccess() {
	fmt.Fprintln(r.out, "🎉 All workflows completed successfully!")
}

// WatchFailure reports at least one failed workflow.
func (r *Renderer) WatchFailure() {
	fmt.Fprintln(r.out, "💥 Some workflows failed!")
}

// WatchTimeout reports that the poll budget ran out first.
func (r *Renderer) WatchTimeout() {
	fmt.Fprintln(r.out, "⏰ Polling timeout reached")
}

// WatchCancelled reports a user-initiated stop.
func (r *Renderer) WatchCancelled() {
	fmt.Fprintln(r.out, "👋 Polling stopped by user")
}

// RetryNotice announces a rerun of failed jobs during watch --retry.
func (r *Renderer) RetryNotice(attempt, total int) {
	fmt.Fprintf(r.out, "🔁 Retry attempt %d/%d: re-running failed jobs...\n", attempt, total)
}

// runEmoji maps a run's lifecycle state to its display glyph.
func runEmoji(status github.Status, conclusion github.Conclusion) string {
	switch status {
	case github.StatusCompleted:
		switch conclusion {
		case github.ConclusionSuccess:
			return "✅"
		case github.ConclusionFailure:
			return "❌"
		case github.ConclusionCancelled:
			return "🚫"
		default:
			return "⚠️"
		}
	case github.StatusInProgress:
		return "🔄"
	case github.StatusQueued:
		return "⏳"
	default:
		return "❓"
	}
}

func orUnknown(c github.Conclusion) string {
	if c == "" {
		return "unknown"
	}
	return string(c)
}
