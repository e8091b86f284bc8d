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
	"strconv"
	"strings"
	"time"
)

// errorKeywords retain a line when any of them appears, case-insensitively.
var errorKeywords = []string{
	"error",
	"failed",
	"failure",
	"exit code",
	"##[error]",
	"❌",
	"✗",
}

// FilterErrorLines reduces a step's log text to its interesting lines.
// A line is retained when it contains an error keyword or glyph, when it
// is a group marker line, or when it does not begin with the runner's
// current-year timestamp prefix. The last rule over-approximates: a
// non-timestamped line was not emitted by the runner itself and is
// usually program output worth keeping.
//
// An empty result means the text had only routine runner output; callers
// pair this with TailLines to show the end of the log instead.
func FilterErrorLines(logText string) []string {
	return filterErrorLines(logText, currentYearPrefix())
}

// filterErrorLines is the injectable core of FilterErrorLines; tests pin
// the year prefix so fixtures do not rot at year end.
func filterErrorLines(logText, yearPrefix string) []string {
	var matched []string
	for _, line := range strings.Split(logText, "\n") {
		if isErrorLine(line) || isMarkerLine(line) || !strings.HasPrefix(line, yearPrefix) {
			matched = append(matched, line)
		}
	}
	return matched
}

// currentYearPrefix returns the prefix runner timestamps start with,
// such as "2026-".
func currentYearPrefix() string {
	return strconv.Itoa(time.Now().Year()) + "-"
}

func isErrorLine(line string) bool {
	lowered := strings.ToLower(line)
	for _, keyword := range errorKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func isMarkerLine(line string) bool {
	return strings.Contains(line, groupMarker) || strings.Contains(line, endgroupMarker)
}

// TailLines returns the last n non-blank lines of text, for presenting a
// log tail when no line survived filtering.
func TailLines(text string, n int) []string {
	if n <= 0 || text == "" {
		return nil
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return kept
}
