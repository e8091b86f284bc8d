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

package watch

import (
	"context"
	"time"

	"github.com/sirseerhq/cimonitor/internal/github"
)

// Outcome is the terminal state of a watch session. The zero value means
// the session produced no outcome (only possible alongside an error).
type Outcome string

// Terminal outcomes.
const (
	Success   Outcome = "success"
	Failure   Outcome = "failure"
	TimedOut  Outcome = "timed_out"
	Cancelled Outcome = "cancelled"
)

// FetchFunc returns the current workflow runs for the watched target.
// Implementations must honor ctx cancellation.
type FetchFunc func(ctx context.Context) ([]github.WorkflowRun, error)

// Config bounds a watch session. Values are fixed for the session's
// lifetime; the loop keeps no other settings.
type Config struct {
	// Interval is the sleep between polls.
	Interval time.Duration

	// MaxPolls caps the number of fetches before the session times out.
	MaxPolls int

	// StopOnFirstFailure ends the session at the first failing conclusion
	// even while other runs are still in progress.
	StopOnFirstFailure bool
}

// Snapshot is the state observed by a single poll.
type Snapshot struct {
	// Runs as returned by the fetch, unmodified.
	Runs []github.WorkflowRun

	// Polls completed so far, counting this one.
	Polls int

	// NoRuns marks an empty fetch: the provider has not reported any
	// runs yet. Distinct from a batch where every run succeeded.
	NoRuns bool

	// Elapsed since the session started.
	Elapsed time.Duration
}

// FailedRuns returns the runs whose conclusion counts as failing.
func (s Snapshot) FailedRuns() []github.WorkflowRun {
	var failed []github.WorkflowRun
	for _, run := range s.Runs {
		if run.Conclusion.IsFailure() {
			failed = append(failed, run)
		}
	}
	return failed
}

// Watch polls fetch until the runs reach a terminal state, cfg.MaxPolls
// fetches have happened, or ctx ends. onPoll observes every snapshot
// before classification and may be nil.
//
// Cancellation is not an error: the session returns Cancelled with the
// last snapshot and a nil error. A fetch error aborts the session and
// propagates; transport-level retry already happened below this loop.
func Watch(ctx context.Context, fetch FetchFunc, cfg Config, onPoll func(Snapshot)) (Outcome, Snapshot, error) {
	sess := newSession()

	for {
		if ctx.Err() != nil {
			return Cancelled, sess.last, nil
		}

		runs, err := fetch(ctx)
		if err != nil {
			// A fetch aborted by cancellation is still a cancellation.
			if ctx.Err() != nil {
				return Cancelled, sess.last, nil
			}
			return "", sess.last, err
		}

		snap := sess.record(runs)
		if onPoll != nil {
			onPoll(snap)
		}

		if outcome, done := classify(runs, cfg.StopOnFirstFailure); done {
			return outcome, snap, nil
		}

		if snap.Polls >= cfg.MaxPolls {
			return TimedOut, snap, nil
		}

		if !sleepInterval(ctx, cfg.Interval) {
			return Cancelled, snap, nil
		}
	}
}

// WillContinue reports whether the session polls again after this
// snapshot: the batch is not terminal and the poll budget is not
// exhausted. Callers use it to emit between-poll progress only when
// another poll is actually coming.
func WillContinue(snap Snapshot, cfg Config) bool {
	if _, done := classify(snap.Runs, cfg.StopOnFirstFailure); done {
		return false
	}
	return snap.Polls < cfg.MaxPolls
}

// classify decides whether a batch of runs is terminal. An empty batch
// never is: "no runs reported yet" keeps the loop polling.
func classify(runs []github.WorkflowRun, stopOnFirstFailure bool) (Outcome, bool) {
	if len(runs) == 0 {
		return "", false
	}

	allCompleted := true
	anyFailed := false
	for _, run := range runs {
		if !run.Status.Completed() {
			allCompleted = false
		}
		if run.Conclusion.IsFailure() {
			anyFailed = true
		}
	}

	if stopOnFirstFailure && anyFailed {
		return Failure, true
	}
	if !allCompleted {
		return "", false
	}
	if anyFailed {
		return Failure, true
	}
	return Success, true
}

// sleepInterval waits one interval, returning false when ctx ends first.
func sleepInterval(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
