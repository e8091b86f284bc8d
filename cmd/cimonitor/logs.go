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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
	"github.com/sirseerhq/cimonitor/internal/github"
	"github.com/sirseerhq/cimonitor/internal/logparse"
	"github.com/sirseerhq/cimonitor/internal/output"
	"github.com/spf13/cobra"
)

// fallbackLogLines is how many trailing non-blank lines a step section
// contributes when error filtering matches nothing in it.
const fallbackLogLines = 10

func newLogsCommand() *cobra.Command {
	var flags targetFlags
	var (
		jobID int64
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show error logs for failing CI jobs",
		Long: `Show the log sections of a commit's failing CI jobs, reduced to the
lines around each failed step's errors.

By default each failing job's log is segmented by step and filtered down
to error-relevant lines. Use --raw for complete unfiltered logs of every
failing job, or --job-id to dump one job's raw log regardless of its
conclusion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Raw logs are fetched from blob storage and can run to
			// megabytes per job, so the budget is looser than status.
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			return runLogs(ctx, &flags, jobID, raw, os.Stdout)
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&jobID, "job-id", 0, "Show raw logs for this job ID")
	cmd.Flags().BoolVar(&raw, "raw", false, "Show full raw logs for all failing jobs")

	return cmd
}

// runLogs executes the logs command
func runLogs(ctx context.Context, f *targetFlags, jobID int64, raw bool, out io.Writer) error {
	a, err := newApp(ctx, f, out)
	if err != nil {
		return err
	}

	switch {
	case jobID != 0:
		return jobLogReport(ctx, a.client, a.target, jobID, a.render)
	case raw:
		return rawLogsReport(ctx, a.client, a.target, a.render)
	default:
		return errorLogsReport(ctx, a.client, a.target, a.render)
	}
}

// jobLogReport dumps one job's raw log with an identity block. Errors are
// hard failures here; there is no batch to preserve.
func jobLogReport(ctx context.Context, client github.Client, tgt *target, jobID int64, r *output.Renderer) error {
	r.RawJobLogHeader(jobID)

	job, err := client.FetchJobByID(ctx, tgt.owner, tgt.repo, jobID)
	if err != nil {
		return err
	}
	r.JobSummary(*job)

	logText, err := client.FetchRawLogs(ctx, tgt.owner, tgt.repo, jobID)
	if err != nil {
		return err
	}
	r.LogText(logText)

	return nil
}

// rawLogsReport dumps the complete logs of every failing job for the
// target commit.
func rawLogsReport(ctx context.Context, client github.Client, tgt *target, r *output.Renderer) error {
	items, err := collectFailedJobs(ctx, client, tgt)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		r.NoFailingJobs()
		return nil
	}

	r.RawLogsHeader(len(items))
	for i, item := range items {
		if item.errText != "" {
			r.JobError(item.name, item.errText)
			continue
		}

		text, err := client.FetchRawLogs(ctx, tgt.owner, tgt.repo, item.job.ID)
		if err != nil {
			r.JobError(item.job.Name, describeJobError(err))
			continue
		}
		r.RawLogBlock(i+1, item.job, text)
	}

	return nil
}

// errorLogsReport renders the filtered error-log view: per failing job,
// the failed steps' log sections reduced to error-relevant lines.
func errorLogsReport(ctx context.Context, client github.Client, tgt *target, r *output.Renderer) error {
	items, err := collectFailedJobs(ctx, client, tgt)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		r.NoFailingChecks(tgt.description)
		return nil
	}

	r.ErrorLogsHeader(len(items))
	for i, item := range items {
		if item.errText != "" {
			r.JobError(item.name, item.errText)
			continue
		}
		renderJobErrorLogs(ctx, client, tgt, i+1, item.job, r)
	}

	return nil
}

// renderJobErrorLogs prints one job's failed-step log sections. All
// failures inside are absorbed into the job's own output so the rest of
// the batch still renders.
func renderJobErrorLogs(ctx context.Context, client github.Client, tgt *target, index int, job github.Job, r *output.Renderer) {
	r.JobLogsHeader(index, job.Name)

	logText, err := client.FetchRawLogs(ctx, tgt.owner, tgt.repo, job.ID)
	if err != nil {
		r.JobLogsUnavailable()
		return
	}

	failed := job.FailedSteps()
	refs := make([]logparse.StepRef, 0, len(failed))
	for _, step := range failed {
		refs = append(refs, logparse.StepRef{Name: step.Name, Number: step.Number})
	}

	stepLogs := logparse.ExtractStepLogs(logText, refs)
	if len(stepLogs) == 0 {
		r.StepLogsMissing(job.Name)
		return
	}

	for _, step := range failed {
		section, ok := stepLogs[step.Name]
		if !ok {
			continue
		}

		r.StepLogHeader(step.Name)
		lines := logparse.FilterErrorLines(section)
		if len(lines) == 0 {
			lines = logparse.TailLines(section, fallbackLogLines)
		}
		if len(lines) == 0 {
			r.EmptyStepLog()
			continue
		}
		r.LogLines(lines)
	}
}

// jobItem is one entry in a failed-job batch: either a failing job, or
// the error that kept one check run's jobs from being processed.
type jobItem struct {
	job     github.Job
	name    string
	errText string
}

// collectFailedJobs resolves the target's failing check runs to their
// failing jobs. Jobs reached through more than one check run are listed
// once. A check run whose jobs cannot be fetched contributes an error
// item instead of aborting the batch; only the initial check-run listing
// is a hard failure.
func collectFailedJobs(ctx context.Context, client github.Client, tgt *target) ([]jobItem, error) {
	checks, err := client.FetchCheckRuns(ctx, tgt.owner, tgt.repo, tgt.sha)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var items []jobItem
	for _, check := range checks {
		if check.Conclusion != github.ConclusionFailure {
			continue
		}

		runID, ok := github.ExtractRunID(check.HTMLURL)
		if !ok {
			continue
		}

		jobs, err := client.FetchJobsForRun(ctx, tgt.owner, tgt.repo, runID)
		if err != nil {
			items = append(items, jobItem{name: check.Name, errText: describeJobError(err)})
			continue
		}

		for _, job := range jobs {
			if job.Conclusion != github.ConclusionFailure || seen[job.ID] {
				continue
			}
			seen[job.ID] = true
			items = append(items, jobItem{job: job, name: job.Name})
		}
	}

	return items, nil
}

// describeJobError renders a per-item processing error. Decode errors
// read as parse failures, sentinel-classified API errors as fetch
// failures, and anything else carries the concrete type of its root
// cause.
func describeJobError(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fmt.Sprintf("Failed to parse job data: %v", err)
	case errors.Is(err, cierrors.ErrInvalidToken),
		errors.Is(err, cierrors.ErrRepoNotFound),
		errors.Is(err, cierrors.ErrRateLimit),
		errors.Is(err, cierrors.ErrNetworkFailure),
		errors.Is(err, cierrors.ErrLogsExpired):
		return fmt.Sprintf("Failed to fetch job data: %v", err)
	default:
		return fmt.Sprintf("Unexpected error processing job details (%T): %v", rootCause(err), err)
	}
}

// rootCause unwraps err to the deepest error in its chain.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
