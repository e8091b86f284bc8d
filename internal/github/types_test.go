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

import "testing"

func TestStatusCompleted(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusCompleted, true},
		{StatusInProgress, false},
		{StatusQueued, false},
		{Status(""), false},
		{Status("waiting"), false},
	}

	for _, tt := range tests {
		if got := tt.status.Completed(); got != tt.want {
			t.Errorf("Status(%q).Completed() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestConclusionIsFailure(t *testing.T) {
	tests := []struct {
		conclusion Conclusion
		want       bool
	}{
		{ConclusionSuccess, false},
		{ConclusionSkipped, false},
		{ConclusionNeutral, false},
		{Conclusion(""), false},
		{ConclusionFailure, true},
		{ConclusionCancelled, true},
		{ConclusionTimedOut, true},
		{ConclusionActionRequired, true},
		{Conclusion("startup_failure"), true},
	}

	for _, tt := range tests {
		if got := tt.conclusion.IsFailure(); got != tt.want {
			t.Errorf("Conclusion(%q).IsFailure() = %v, want %v", tt.conclusion, got, tt.want)
		}
	}
}

func TestJobFailedSteps(t *testing.T) {
	job := Job{
		Name: "build",
		Steps: []Step{
			{Name: "Checkout", Number: 1, Status: StatusCompleted, Conclusion: ConclusionSuccess},
			{Name: "Install deps", Number: 2, Status: StatusCompleted, Conclusion: ConclusionSuccess},
			{Name: "Run tests", Number: 3, Status: StatusCompleted, Conclusion: ConclusionFailure},
			{Name: "Upload coverage", Number: 4, Status: StatusCompleted, Conclusion: ConclusionSkipped},
			{Name: "Still running", Number: 5, Status: StatusInProgress},
		},
	}

	failed := job.FailedSteps()
	if len(failed) != 1 {
		t.Fatalf("got %d failed steps, want 1", len(failed))
	}
	if failed[0].Name != "Run tests" || failed[0].Number != 3 {
		t.Errorf("failed step = %+v, want Run tests number 3", failed[0])
	}
}

func TestJobFailedStepsNoneFailed(t *testing.T) {
	job := Job{
		Steps: []Step{
			{Name: "Checkout", Conclusion: ConclusionSuccess, Status: StatusCompleted},
		},
	}
	if failed := job.FailedSteps(); len(failed) != 0 {
		t.Errorf("FailedSteps = %+v, want none", failed)
	}
}
