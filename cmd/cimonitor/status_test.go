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
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
	"github.com/sirseerhq/cimonitor/internal/github"
	"github.com/sirseerhq/cimonitor/internal/output"
)

// testTarget is the resolved target shared by the report tests.
func testTarget() *target {
	return &target{
		owner:       "octocat",
		repo:        "Hello-World",
		sha:         testSHA,
		branch:      "main",
		description: "branch main",
	}
}

func failingCheck(name string, runID string) github.CheckRun {
	return github.CheckRun{
		ID:         7,
		Name:       name,
		Status:     github.StatusCompleted,
		Conclusion: github.ConclusionFailure,
		HTMLURL:    "https://github.com/octocat/Hello-World/actions/runs/" + runID + "/job/100",
	}
}

func TestStatusReportAllGreen(t *testing.T) {
	mock := github.NewMockClient(
		github.WithCheckRuns([]github.CheckRun{
			{Name: "build", Status: github.StatusCompleted, Conclusion: github.ConclusionSuccess},
			{Name: "lint", Status: github.StatusCompleted, Conclusion: github.ConclusionSkipped},
		}),
	)

	var buf bytes.Buffer
	err := statusReport(context.Background(), mock, testTarget(), output.NewRenderer(&buf))
	if err != nil {
		t.Fatalf("statusReport() error = %v", err)
	}

	want := "✅ No failing CI jobs found for branch main!\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestStatusReport(t *testing.T) {
	check := failingCheck("build", "42")
	mock := github.NewMockClient(
		github.WithCheckRuns([]github.CheckRun{
			{Name: "lint", Status: github.StatusCompleted, Conclusion: github.ConclusionSuccess},
			check,
		}),
		github.WithJobs(42, []github.Job{
			{
				ID:         99,
				RunID:      42,
				Name:       "docs",
				Status:     github.StatusCompleted,
				Conclusion: github.ConclusionSuccess,
			},
			{
				ID:         100,
				RunID:      42,
				Name:       "build",
				Status:     github.StatusCompleted,
				Conclusion: github.ConclusionFailure,
				Steps: []github.Step{
					{
						Name:       "Set up job",
						Number:     1,
						Status:     github.StatusCompleted,
						Conclusion: github.ConclusionSuccess,
					},
					{
						Name:        "Run tests",
						Number:      3,
						Status:      github.StatusCompleted,
						Conclusion:  github.ConclusionFailure,
						StartedAt:   "2024-01-15T10:00:00Z",
						CompletedAt: "2024-01-15T10:00:30Z",
					},
				},
			},
		}),
	)

	var buf bytes.Buffer
	err := statusReport(context.Background(), mock, testTarget(), output.NewRenderer(&buf))
	if err != nil {
		t.Fatalf("statusReport() error = %v", err)
	}

	rule := strings.Repeat("=", 60)
	var want strings.Builder
	want.WriteString("❌ Found 1 failing CI job(s) for branch main:\n\n")
	want.WriteString(rule + "\n")
	want.WriteString("FAILED JOB #1: build\n")
	want.WriteString("Status: failure\n")
	want.WriteString("URL: " + check.HTMLURL + "\n")
	want.WriteString(rule + "\n")
	want.WriteString("\n📋 Failed Steps in build:\n")
	want.WriteString("  ❌ Step 3: Run tests (took 30.0s)\n\n")
	want.WriteString("💡 Use 'cimonitor logs' to see detailed error logs for failed steps only\n\n")

	if buf.String() != want.String() {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", buf.String(), want.String())
	}
}

func TestStatusReportNoRunID(t *testing.T) {
	// External checks (e.g. third-party status apps) have no workflow run
	// in their URL, so job detail cannot be fetched for them.
	mock := github.NewMockClient(
		github.WithCheckRuns([]github.CheckRun{
			{
				Name:       "codecov",
				Status:     github.StatusCompleted,
				Conclusion: github.ConclusionFailure,
				HTMLURL:    "https://codecov.io/gh/octocat/Hello-World",
			},
		}),
	)

	var buf bytes.Buffer
	err := statusReport(context.Background(), mock, testTarget(), output.NewRenderer(&buf))
	if err != nil {
		t.Fatalf("statusReport() error = %v", err)
	}

	if !strings.Contains(buf.String(), "Cannot retrieve detailed information for this check run type") {
		t.Errorf("missing no-details notice in output:\n%s", buf.String())
	}
	if got := mock.CallCount("FetchJobsForRun"); got != 0 {
		t.Errorf("FetchJobsForRun called %d times, want 0", got)
	}
}

func TestStatusReportJobFetchDegrades(t *testing.T) {
	// The first check's jobs cannot be fetched; its summary block must
	// still render and the second check must be processed normally.
	mock := github.NewMockClient(
		github.WithCheckRuns([]github.CheckRun{
			failingCheck("build", "42"),
			failingCheck("test", "43"),
		}),
		github.WithJobsError(42, errors.New("boom")),
		github.WithJobs(43, []github.Job{
			{
				ID:         200,
				RunID:      43,
				Name:       "test",
				Status:     github.StatusCompleted,
				Conclusion: github.ConclusionFailure,
				Steps: []github.Step{
					{
						Name:       "Run integration suite",
						Number:     2,
						Status:     github.StatusCompleted,
						Conclusion: github.ConclusionFailure,
					},
				},
			},
		}),
	)

	var buf bytes.Buffer
	err := statusReport(context.Background(), mock, testTarget(), output.NewRenderer(&buf))
	if err != nil {
		t.Fatalf("statusReport() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "FAILED JOB #1: build") {
		t.Errorf("degraded check lost its summary block:\n%s", out)
	}
	if !strings.Contains(out, "FAILED JOB #2: test") {
		t.Errorf("second check not processed:\n%s", out)
	}
	if !strings.Contains(out, "Step 2: Run integration suite") {
		t.Errorf("second check lost its step detail:\n%s", out)
	}
	if strings.Contains(out, "Failed Steps in build") {
		t.Errorf("degraded check should carry no step detail:\n%s", out)
	}
}

func TestStatusReportCheckRunsError(t *testing.T) {
	mock := github.NewMockClient(github.WithNotFoundFailure())

	var buf bytes.Buffer
	err := statusReport(context.Background(), mock, testTarget(), output.NewRenderer(&buf))
	if !errors.Is(err, cierrors.ErrRepoNotFound) {
		t.Fatalf("expected ErrRepoNotFound, got %v", err)
	}
}
