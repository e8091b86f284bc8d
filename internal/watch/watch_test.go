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
	"errors"
	"testing"
	"time"

	"github.com/sirseerhq/cimonitor/internal/github"
)

func completedRun(name string, conclusion github.Conclusion) github.WorkflowRun {
	return github.WorkflowRun{
		Name:       name,
		Status:     github.StatusCompleted,
		Conclusion: conclusion,
	}
}

func activeRun(name string) github.WorkflowRun {
	return github.WorkflowRun{
		Name:   name,
		Status: github.StatusInProgress,
	}
}

// sequenceFetch serves batches in order, repeating the last one, and
// counts its invocations through calls.
func sequenceFetch(calls *int, batches ...[]github.WorkflowRun) FetchFunc {
	return func(ctx context.Context) ([]github.WorkflowRun, error) {
		i := *calls
		*calls++
		if i >= len(batches) {
			i = len(batches) - 1
		}
		return batches[i], nil
	}
}

func TestWatchSuccessOnFirstPollWithoutSleeping(t *testing.T) {
	var calls int
	fetch := sequenceFetch(&calls, []github.WorkflowRun{
		completedRun("CI", github.ConclusionSuccess),
	})

	// An hour-long interval would hang the test if the loop slept before
	// classifying the first poll.
	cfg := Config{Interval: time.Hour, MaxPolls: 120}

	outcome, snap, err := Watch(context.Background(), fetch, cfg, nil)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if outcome != Success {
		t.Errorf("outcome = %q, want %q", outcome, Success)
	}
	if snap.Polls != 1 {
		t.Errorf("snapshot polls = %d, want 1", snap.Polls)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestWatchStopOnFirstFailure(t *testing.T) {
	var calls int
	fetch := sequenceFetch(&calls, []github.WorkflowRun{
		completedRun("lint", github.ConclusionFailure),
		activeRun("integration"),
	})

	cfg := Config{Interval: time.Hour, MaxPolls: 120, StopOnFirstFailure: true}

	outcome, snap, err := Watch(context.Background(), fetch, cfg, nil)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if outcome != Failure {
		t.Errorf("outcome = %q, want %q", outcome, Failure)
	}
	if snap.Polls != 1 {
		t.Errorf("snapshot polls = %d, want 1", snap.Polls)
	}
}

func TestWatchWaitsForCompletionWithoutStopOnFirstFailure(t *testing.T) {
	var calls int
	fetch := sequenceFetch(&calls,
		[]github.WorkflowRun{
			completedRun("lint", github.ConclusionFailure),
			activeRun("integration"),
		},
		[]github.WorkflowRun{
			completedRun("lint", github.ConclusionFailure),
			completedRun("integration", github.ConclusionSuccess),
		},
	)

	cfg := Config{Interval: time.Millisecond, MaxPolls: 120}

	outcome, snap, err := Watch(context.Background(), fetch, cfg, nil)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if outcome != Failure {
		t.Errorf("outcome = %q, want %q", outcome, Failure)
	}
	if snap.Polls != 2 {
		t.Errorf("snapshot polls = %d, want 2", snap.Polls)
	}
}

func TestWatchTimesOutAtMaxPolls(t *testing.T) {
	var calls int
	fetch := sequenceFetch(&calls, []github.WorkflowRun{activeRun("deploy")})

	cfg := Config{Interval: time.Millisecond, MaxPolls: 3}

	outcome, snap, err := Watch(context.Background(), fetch, cfg, nil)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if outcome != TimedOut {
		t.Errorf("outcome = %q, want %q", outcome, TimedOut)
	}
	if snap.Polls != 3 {
		t.Errorf("snapshot polls = %d, want 3", snap.Polls)
	}
	if calls != 3 {
		t.Errorf("fetch called %d times, want 3", calls)
	}
}

func TestWatchCancelledMidSleep(t *testing.T) {
	var calls int
	fetch := sequenceFetch(&calls, []github.WorkflowRun{activeRun("deploy")})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	cfg := Config{Interval: time.Hour, MaxPolls: 120}

	start := time.Now()
	outcome, snap, err := Watch(ctx, fetch, cfg, nil)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if outcome != Cancelled {
		t.Errorf("outcome = %q, want %q", outcome, Cancelled)
	}
	if snap.Polls != 1 {
		t.Errorf("snapshot polls = %d, want 1", snap.Polls)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation took %v, want prompt return", elapsed)
	}
}

func TestWatchCancelledBeforeFirstFetch(t *testing.T) {
	var calls int
	fetch := sequenceFetch(&calls, []github.WorkflowRun{activeRun("deploy")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, _, err := Watch(ctx, fetch, Config{Interval: time.Hour, MaxPolls: 120}, nil)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if outcome != Cancelled {
		t.Errorf("outcome = %q, want %q", outcome, Cancelled)
	}
	if calls != 0 {
		t.Errorf("fetch called %d times after cancellation, want 0", calls)
	}
}

func TestWatchReportsNoRunsDistinctFromSuccess(t *testing.T) {
	var calls int
	fetch := sequenceFetch(&calls,
		nil,
		[]github.WorkflowRun{completedRun("CI", github.ConclusionSuccess)},
	)

	var snaps []Snapshot
	cfg := Config{Interval: time.Millisecond, MaxPolls: 120}

	outcome, _, err := Watch(context.Background(), fetch, cfg, func(s Snapshot) {
		snaps = append(snaps, s)
	})
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if outcome != Success {
		t.Errorf("outcome = %q, want %q", outcome, Success)
	}
	if len(snaps) != 2 {
		t.Fatalf("observed %d snapshots, want 2", len(snaps))
	}
	if !snaps[0].NoRuns {
		t.Error("first snapshot NoRuns = false, want true")
	}
	if snaps[1].NoRuns {
		t.Error("second snapshot NoRuns = true, want false")
	}
}

func TestWatchPropagatesFetchError(t *testing.T) {
	fetchErr := errors.New("api unreachable")
	fetch := func(ctx context.Context) ([]github.WorkflowRun, error) {
		return nil, fetchErr
	}

	outcome, _, err := Watch(context.Background(), fetch, Config{Interval: time.Hour, MaxPolls: 120}, nil)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Watch error = %v, want %v", err, fetchErr)
	}
	if outcome != "" {
		t.Errorf("outcome = %q, want empty on error", outcome)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		runs        []github.WorkflowRun
		stopOnFirst bool
		wantOutcome Outcome
		wantDone    bool
	}{
		{
			name:     "empty batch keeps polling",
			runs:     nil,
			wantDone: false,
		},
		{
			name: "all success",
			runs: []github.WorkflowRun{
				completedRun("a", github.ConclusionSuccess),
				completedRun("b", github.ConclusionSuccess),
			},
			wantOutcome: Success,
			wantDone:    true,
		},
		{
			name: "skipped does not block success",
			runs: []github.WorkflowRun{
				completedRun("a", github.ConclusionSuccess),
				completedRun("b", github.ConclusionSkipped),
			},
			wantOutcome: Success,
			wantDone:    true,
		},
		{
			name: "completed with failure",
			runs: []github.WorkflowRun{
				completedRun("a", github.ConclusionFailure),
				completedRun("b", github.ConclusionSuccess),
			},
			wantOutcome: Failure,
			wantDone:    true,
		},
		{
			name: "cancelled counts as failure",
			runs: []github.WorkflowRun{
				completedRun("a", github.ConclusionCancelled),
			},
			wantOutcome: Failure,
			wantDone:    true,
		},
		{
			name:     "in progress keeps polling",
			runs:     []github.WorkflowRun{activeRun("a")},
			wantDone: false,
		},
		{
			name: "failure with active runs keeps polling",
			runs: []github.WorkflowRun{
				completedRun("a", github.ConclusionFailure),
				activeRun("b"),
			},
			wantDone: false,
		},
		{
			name: "failure with active runs stops when told to",
			runs: []github.WorkflowRun{
				completedRun("a", github.ConclusionFailure),
				activeRun("b"),
			},
			stopOnFirst: true,
			wantOutcome: Failure,
			wantDone:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, done := classify(tt.runs, tt.stopOnFirst)
			if done != tt.wantDone {
				t.Fatalf("classify done = %v, want %v", done, tt.wantDone)
			}
			if done && outcome != tt.wantOutcome {
				t.Errorf("classify outcome = %q, want %q", outcome, tt.wantOutcome)
			}
		})
	}
}

func TestWillContinue(t *testing.T) {
	cfg := Config{MaxPolls: 3}

	tests := []struct {
		name string
		snap Snapshot
		cfg  Config
		want bool
	}{
		{
			name: "active runs with budget left",
			snap: Snapshot{Runs: []github.WorkflowRun{activeRun("a")}, Polls: 1},
			cfg:  cfg,
			want: true,
		},
		{
			name: "no runs yet with budget left",
			snap: Snapshot{NoRuns: true, Polls: 1},
			cfg:  cfg,
			want: true,
		},
		{
			name: "terminal batch never continues",
			snap: Snapshot{Runs: []github.WorkflowRun{completedRun("a", github.ConclusionSuccess)}, Polls: 1},
			cfg:  cfg,
			want: false,
		},
		{
			name: "budget exhausted",
			snap: Snapshot{Runs: []github.WorkflowRun{activeRun("a")}, Polls: 3},
			cfg:  cfg,
			want: false,
		},
		{
			name: "stop on first failure ends early",
			snap: Snapshot{Runs: []github.WorkflowRun{
				completedRun("a", github.ConclusionFailure),
				activeRun("b"),
			}, Polls: 1},
			cfg:  Config{MaxPolls: 3, StopOnFirstFailure: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WillContinue(tt.snap, tt.cfg); got != tt.want {
				t.Errorf("WillContinue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotFailedRuns(t *testing.T) {
	snap := Snapshot{Runs: []github.WorkflowRun{
		completedRun("lint", github.ConclusionFailure),
		completedRun("unit", github.ConclusionSuccess),
		completedRun("deploy", github.ConclusionTimedOut),
		activeRun("docs"),
	}}

	failed := snap.FailedRuns()
	if len(failed) != 2 {
		t.Fatalf("FailedRuns returned %d runs, want 2", len(failed))
	}
	if failed[0].Name != "lint" || failed[1].Name != "deploy" {
		t.Errorf("FailedRuns = [%s, %s], want [lint, deploy]", failed[0].Name, failed[1].Name)
	}
}
