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
	"io"
	"os"
	"time"

	"github.com/sirseerhq/cimonitor/internal/github"
	"github.com/sirseerhq/cimonitor/internal/output"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	var flags targetFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show failing CI jobs for a commit",
		Long: `Show the failing check runs reported for a commit, with the failed
steps of each job and how long they took.

The commit defaults to the working repository's HEAD; use --branch,
--commit, or --pr to inspect something else. The command is informational
and exits 0 even when failures are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			return runStatus(ctx, &flags, os.Stdout)
		},
	}

	flags.register(cmd)

	return cmd
}

// runStatus executes the status command
func runStatus(ctx context.Context, f *targetFlags, out io.Writer) error {
	a, err := newApp(ctx, f, out)
	if err != nil {
		return err
	}
	return statusReport(ctx, a.client, a.target, a.render)
}

// statusReport renders the failing check runs for the target commit.
// Job-level detail degrades per item: a check run whose jobs cannot be
// fetched keeps its summary block and loses only the step list.
func statusReport(ctx context.Context, client github.Client, tgt *target, r *output.Renderer) error {
	checks, err := client.FetchCheckRuns(ctx, tgt.owner, tgt.repo, tgt.sha)
	if err != nil {
		return err
	}

	var failed []github.CheckRun
	for _, check := range checks {
		if check.Conclusion == github.ConclusionFailure {
			failed = append(failed, check)
		}
	}

	if len(failed) == 0 {
		r.NoFailingChecks(tgt.description)
		return nil
	}

	r.FailingChecksHeader(len(failed), tgt.description)
	for i, check := range failed {
		r.CheckRunHeader(i+1, check)

		runID, ok := github.ExtractRunID(check.HTMLURL)
		if !ok {
			r.NoRunDetails()
			continue
		}

		jobs, err := client.FetchJobsForRun(ctx, tgt.owner, tgt.repo, runID)
		if err != nil {
			continue
		}

		for _, job := range jobs {
			if job.Conclusion != github.ConclusionFailure {
				continue
			}
			if steps := job.FailedSteps(); len(steps) > 0 {
				r.FailedSteps(job.Name, stepSummaries(steps))
			}
		}
		r.LogsHint()
	}

	return nil
}

// stepSummaries converts failed steps to their display form, formatting
// each step's duration.
func stepSummaries(steps []github.Step) []output.FailedStepSummary {
	summaries := make([]output.FailedStepSummary, 0, len(steps))
	for _, step := range steps {
		summaries = append(summaries, output.FailedStepSummary{
			Name:     step.Name,
			Number:   step.Number,
			Duration: output.StepDuration(step.StartedAt, step.CompletedAt),
		})
	}
	return summaries
}
