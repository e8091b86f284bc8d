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

import "strings"

const (
	groupRunPrefix = "##[group]Run "
	groupMarker    = "##[group]"
	endgroupMarker = "##[endgroup]"
	cleanupMarker  = "Post job cleanup"

	// postEndgroupLines bounds how much output after ##[endgroup] is kept
	// with a section. Test runners print their failure summaries there.
	postEndgroupLines = 10

	// minMatchWordLength excludes step-name words this short from fuzzy
	// section matching. Words like "Run", "Go", or "CI" match too many
	// unrelated sections.
	minMatchWordLength = 3
)

// StepRef identifies a job step whose log section should be located.
type StepRef struct {
	Name   string
	Number int
}

// section is one ##[group]Run block plus its bounded trailing output.
type section struct {
	header string
	lines  []string
}

// ExtractStepLogs returns the log section for each step, keyed by step
// name. The runner opens a step named X with the line "##[group]Run X";
// a section runs from that line through ##[endgroup] plus up to ten
// trailing lines, stopping early at the next group marker or the
// runner's "Post job cleanup" line.
//
// Steps are matched to sections by exact header first. When no header
// matches exactly, a fuzzy pass accepts the first section whose header
// contains any word of the step name longer than three characters,
// case-insensitively. Steps with no matching section are absent from
// the result; duplicate step names keep the last step's capture.
func ExtractStepLogs(logText string, steps []StepRef) map[string]string {
	if logText == "" || len(steps) == 0 {
		return map[string]string{}
	}

	sections := scanSections(strings.Split(logText, "\n"))

	result := make(map[string]string)
	for _, step := range steps {
		if sec, ok := matchSection(sections, step.Name); ok {
			result[step.Name] = strings.Join(sec.lines, "\n")
		}
	}
	return result
}

// Scanner states. A section is open from its group line until its trailing
// output is exhausted.
const (
	stateScanning = iota
	stateCapturing
	stateTrailing
)

// scanSections walks the log once and collects every ##[group]Run section.
// Marker detection uses substring matching because the runner prefixes
// every line with a timestamp.
func scanSections(lines []string) []section {
	var sections []section
	var current section
	state := stateScanning
	trailing := 0

	begin := func(line string) {
		current = section{header: sectionHeader(line), lines: []string{line}}
		state = stateCapturing
		trailing = 0
	}
	finish := func() {
		sections = append(sections, current)
		current = section{}
		state = stateScanning
		trailing = 0
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		startsRun := strings.Contains(line, groupRunPrefix)

		switch state {
		case stateScanning:
			if startsRun {
				begin(line)
			}

		case stateCapturing:
			if startsRun {
				// Missing endgroup; close the section where the next begins.
				finish()
				begin(line)
				continue
			}
			current.lines = append(current.lines, line)
			if strings.Contains(line, endgroupMarker) {
				state = stateTrailing
			}

		case stateTrailing:
			if startsRun {
				finish()
				begin(line)
				continue
			}
			if strings.Contains(line, groupMarker) ||
				strings.Contains(line, cleanupMarker) ||
				trailing >= postEndgroupLines {
				finish()
				continue
			}
			current.lines = append(current.lines, line)
			trailing++
		}
	}
	if state != stateScanning {
		finish()
	}
	return sections
}

// sectionHeader returns the step name from a ##[group]Run line.
func sectionHeader(line string) string {
	idx := strings.Index(line, groupRunPrefix)
	return strings.TrimSpace(line[idx+len(groupRunPrefix):])
}

// matchSection finds the section for a step name. Exact header matches
// are preferred; the fuzzy pass runs only when no header matches exactly.
// Both passes take the first matching section.
func matchSection(sections []section, name string) (section, bool) {
	for _, sec := range sections {
		if sec.header == name {
			return sec, true
		}
	}

	words := significantWords(name)
	if len(words) == 0 {
		return section{}, false
	}
	for _, sec := range sections {
		if headerContainsAny(sec.header, words) {
			return sec, true
		}
	}
	return section{}, false
}

// significantWords returns the lowercased words of a step name that are
// long enough to identify it.
func significantWords(name string) []string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(name)) {
		if len(word) > minMatchWordLength {
			words = append(words, word)
		}
	}
	return words
}

func headerContainsAny(header string, words []string) bool {
	lowered := strings.ToLower(header)
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
