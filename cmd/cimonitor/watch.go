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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirseerhq/cimonitor/internal/config"
	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
	"github.com/sirseerhq/cimonitor/internal/github"
	"github.com/sirseerhq/cimonitor/internal/output"
	"github.com/sirseerhq/cimonitor/internal/watch"
	"github.com/spf13/cobra"
)

// watchOptions carries the watch command's mode flags.
type watchOptions struct {
	untilComplete bool
	untilFail     bool
	retries       int
	retrySet      bool
}

func newWatchCommand() *cobra.Command {
	var flags targetFlags
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll CI status until workflows finish",
		Long: `Poll the target commit's workflow runs until they all complete, the
poll budget runs out, or the watch is interrupted.

By default the watch ends when every run has completed, reporting
success or failure. --until-fail stops at the first failed conclusion
without waiting for the rest. --retry N re-runs the failed jobs after a
failure and watches again, up to N times. Ctrl-C stops the watch
cleanly with exit code 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.retrySet = cmd.Flags().Changed("retry")
			return runWatch(cmd.Context(), &flags, opts, os.Stdout)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&opts.untilComplete, "until-complete", false, "Watch until all workflows complete (default behavior)")
	cmd.Flags().BoolVar(&opts.untilFail, "until-fail", false, "Stop as soon as any workflow fails")
	cmd.Flags().IntVar(&opts.retries, "retry", 0, "Re-run failed jobs and watch again, up to N times")

	return cmd
}

// runWatch executes the watch command
func runWatch(ctx context.Context, f *targetFlags, opts watchOptions, out io.Writer) error {
	if err := validateWatchOptions(opts); err != nil {
		return err
	}

	a, err := newApp(ctx, f, out)
	if err != nil {
		return err
	}
	return watchTarget(ctx, a.client, a.cfg, a.target, opts, a.render)
}

// validateWatchOptions rejects contradictory watch mode flags.
func validateWatchOptions(opts watchOptions) error {
	if opts.untilComplete && opts.untilFail {
		return fmt.Errorf("Cannot specify both --until-complete and --until-fail")
	}
	if opts.retrySet {
		if opts.retries <= 0 {
			return fmt.Errorf("--retry must be a positive integer")
		}
		if opts.untilComplete || opts.untilFail {
			return fmt.Errorf("Cannot specify --retry with other watch options")
		}
	}
	return nil
}

// watchTarget runs watch sessions until a final outcome. Without --retry
// that is a single session; with it, each failure triggers a re-run of
// the failed jobs and another session, up to the retry budget.
//
// Cancellation is reported on stdout and returns nil: a user stopping
// the watch is not an error.
func watchTarget(ctx context.Context, client github.Client, cfg *config.Config, tgt *target, opts watchOptions, r *output.Renderer) error {
	r.WatchHeader(tgt.description)

	watchCfg := watch.Config{
		Interval:           cfg.Poll.Interval(),
		MaxPolls:           cfg.Poll.MaxPolls,
		StopOnFirstFailure: opts.untilFail || opts.retries > 0,
	}

	fetch := func(ctx context.Context) ([]github.WorkflowRun, error) {
		fetchOpts := github.FetchOptions{PerPage: cfg.Fetch.PerPage}
		if tgt.pollBranch != "" {
			fetchOpts.Branch = tgt.pollBranch
		} else {
			fetchOpts.HeadSHA = tgt.sha
		}
		return client.FetchWorkflowRuns(ctx, tgt.owner, tgt.repo, fetchOpts)
	}

	onPoll := func(snap watch.Snapshot) {
		if snap.NoRuns {
			if snap.Polls == 1 {
				r.InitialWaitNotice(watchCfg.Interval)
			} else {
				r.NoRunsNotice()
			}
		} else {
			r.PollStatus(snap.Runs)
		}
		if watch.WillContinue(snap, watchCfg) {
			fmt.Fprintf(os.Stderr, "⏰ Waiting %ds... (poll %d/%d)\n",
				int(watchCfg.Interval.Seconds()), snap.Polls, watchCfg.MaxPolls)
		}
	}

	attempt := 0
	for {
		outcome, snap, err := watch.Watch(ctx, fetch, watchCfg, onPoll)
		if err != nil {
			return err
		}

		switch outcome {
		case watch.Success:
			r.WatchSuccess()
			return nil
		case watch.TimedOut:
			r.WatchTimeout()
			return cierrors.ErrWatchTimeout
		case watch.Cancelled:
			r.WatchCancelled()
			return nil
		}

		if attempt >= opts.retries {
			r.WatchFailure()
			return cierrors.ErrCIFailed
		}

		attempt++
		r.RetryNotice(attempt, opts.retries)
		for _, run := range snap.FailedRuns() {
			if err := client.RerunFailedJobs(ctx, tgt.owner, tgt.repo, run.ID); err != nil {
				return err
			}
		}
		if !sleepRetry(ctx, cfg.Poll.RetrySleep()) {
			r.WatchCancelled()
			return nil
		}
	}
}

// sleepRetry waits out the post-rerun backoff, returning false when ctx
// ends first.
func sleepRetry(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
