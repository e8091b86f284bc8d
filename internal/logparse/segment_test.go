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

package logparse

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractStepLogsExactMatch(t *testing.T) {
	log := strings.Join([]string{
		"Set up job",
		"##[group]Run pytest tests/",
		"collected 10 items",
		"FAILED tests/test_login.py::test_invalid_password",
		"##[endgroup]",
		"1 failed, 9 passed in 2.34s",
		"##[group]Run coverage report",
		"TOTAL 94%",
		"##[endgroup]",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "pytest tests/", Number: 2}})

	section, ok := got["pytest tests/"]
	if !ok {
		t.Fatalf("no section extracted; got %v", got)
	}
	for _, want := range []string{
		"##[group]Run pytest tests/",
		"FAILED tests/test_login.py::test_invalid_password",
		"##[endgroup]",
		"1 failed, 9 passed in 2.34s",
	} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q:\n%s", want, section)
		}
	}
	if strings.Contains(section, "coverage report") {
		t.Errorf("section leaked into next group:\n%s", section)
	}
}

func TestExtractStepLogsBlockPlusTrailingToEOF(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run Build",
		"compiling...",
		"##[endgroup]",
		"warning: slow link",
		"error: undefined symbol",
		"make: *** [all] Error 1",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "Build", Number: 1}})

	section, ok := got["Build"]
	if !ok {
		t.Fatalf("no section extracted; got %v", got)
	}
	for _, want := range []string{"compiling...", "warning: slow link", "error: undefined symbol", "make: *** [all] Error 1"} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q:\n%s", want, section)
		}
	}
}

func TestExtractStepLogsExactPreferredOverFuzzy(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run unit tests with coverage",
		"fuzzy candidate output",
		"##[endgroup]",
		"##[group]Run unit tests",
		"exact match output",
		"##[endgroup]",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "unit tests", Number: 2}})

	section := got["unit tests"]
	if !strings.Contains(section, "exact match output") {
		t.Errorf("exact header should win over earlier fuzzy candidate:\n%s", section)
	}
	if strings.Contains(section, "fuzzy candidate output") {
		t.Errorf("fuzzy candidate leaked in:\n%s", section)
	}
}

func TestExtractStepLogsFirstOccurrenceWins(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run flaky step",
		"attempt one output",
		"##[endgroup]",
		"##[group]Run flaky step",
		"attempt two output",
		"##[endgroup]",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "flaky step", Number: 4}})

	section := got["flaky step"]
	if !strings.Contains(section, "attempt one output") {
		t.Errorf("want first occurrence:\n%s", section)
	}
	if strings.Contains(section, "attempt two output") {
		t.Errorf("second occurrence leaked in:\n%s", section)
	}
}

func TestExtractStepLogsFuzzySingleWordSuffices(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run production rollout",
		"FAILED rollout",
		"##[endgroup]",
	}, "\n")

	// Only "production" appears in the header; one shared word is enough.
	got := ExtractStepLogs(log, []StepRef{{Name: "deploy production stack", Number: 3}})

	if _, ok := got["deploy production stack"]; !ok {
		t.Fatalf("fuzzy match failed; got %v", got)
	}
}

func TestExtractStepLogsFuzzyCaseInsensitive(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run INTEGRATION suite",
		"boom",
		"##[endgroup]",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "integration", Number: 1}})

	if _, ok := got["integration"]; !ok {
		t.Fatalf("case-insensitive fuzzy match failed; got %v", got)
	}
}

func TestExtractStepLogsShortWordsNeverFuzzyMatch(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run go vet ./...",
		"ok",
		"##[endgroup]",
	}, "\n")

	// Every word of the step name is too short to be significant.
	got := ExtractStepLogs(log, []StepRef{{Name: "go CI", Number: 1}})

	if len(got) != 0 {
		t.Errorf("short-word step should not match anything; got %v", got)
	}
}

func TestExtractStepLogsTrailingStopsAtCleanup(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run make build",
		"building...",
		"##[endgroup]",
		"build summary line",
		"Post job cleanup.",
		"secret scrubbing",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "make build", Number: 1}})

	section := got["make build"]
	if !strings.Contains(section, "build summary line") {
		t.Errorf("trailing line missing:\n%s", section)
	}
	if strings.Contains(section, "cleanup") || strings.Contains(section, "scrubbing") {
		t.Errorf("section includes cleanup output:\n%s", section)
	}
}

func TestExtractStepLogsTrailingBounded(t *testing.T) {
	lines := []string{
		"##[group]Run long tail",
		"body",
		"##[endgroup]",
	}
	for i := 0; i < 25; i++ {
		lines = append(lines, fmt.Sprintf("trailing %d", i))
	}
	log := strings.Join(lines, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "long tail", Number: 1}})

	section := got["long tail"]
	if !strings.Contains(section, "trailing 9") {
		t.Errorf("tenth trailing line missing:\n%s", section)
	}
	if strings.Contains(section, "trailing 10") {
		t.Errorf("more than %d trailing lines captured:\n%s", postEndgroupLines, section)
	}
}

func TestExtractStepLogsTimestampedMarkers(t *testing.T) {
	log := strings.Join([]string{
		"2025-06-01T10:00:00.1234567Z ##[group]Run npm test",
		"2025-06-01T10:00:01.0000000Z 1 failing",
		"2025-06-01T10:00:02.0000000Z ##[endgroup]",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{{Name: "npm test", Number: 2}})

	if _, ok := got["npm test"]; !ok {
		t.Fatalf("timestamped markers not recognized; got %v", got)
	}
}

func TestExtractStepLogsMissingEndgroup(t *testing.T) {
	log := strings.Join([]string{
		"##[group]Run first segment",
		"first output",
		"##[group]Run second segment",
		"second output",
		"##[endgroup]",
	}, "\n")

	got := ExtractStepLogs(log, []StepRef{
		{Name: "first segment", Number: 1},
		{Name: "second segment", Number: 2},
	})

	if !strings.Contains(got["first segment"], "first output") {
		t.Errorf("unterminated section lost: %v", got)
	}
	if strings.Contains(got["first segment"], "second output") {
		t.Errorf("unterminated section absorbed its successor: %v", got)
	}
	if !strings.Contains(got["second segment"], "second output") {
		t.Errorf("successor section lost: %v", got)
	}
}

func TestExtractStepLogsNoMatchAbsent(t *testing.T) {
	log := "##[group]Run build\nok\n##[endgroup]"

	got := ExtractStepLogs(log, []StepRef{{Name: "deploy production", Number: 9}})

	if _, ok := got["deploy production"]; ok {
		t.Errorf("unmatched step should be absent; got %v", got)
	}
}

func TestExtractStepLogsEmptyInputs(t *testing.T) {
	if got := ExtractStepLogs("", []StepRef{{Name: "build", Number: 1}}); len(got) != 0 {
		t.Errorf("empty log produced %v", got)
	}
	if got := ExtractStepLogs("##[group]Run build\n##[endgroup]", nil); len(got) != 0 {
		t.Errorf("no steps produced %v", got)
	}
}
