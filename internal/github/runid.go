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

import (
	"net/url"
	"strconv"
	"strings"
)

// ExtractRunID pulls the workflow run ID out of a check-run or workflow-run
// HTML URL such as:
//
//	https://github.com/owner/repo/actions/runs/123456/jobs/789
//
// It scans the parsed URL path for the adjacent segments "actions", "runs"
// followed by a numeric segment, so a "runs" appearing elsewhere in the path
// or inside the hostname never matches. Query strings, fragments, and
// trailing job paths are ignored. The second return value is false when no
// run ID is present: empty input, unparseable URLs, a missing or non-numeric
// ID segment, and paths with doubled slashes all yield no match rather than
// an error.
func ExtractRunID(rawURL string) (int64, bool) {
	if rawURL == "" {
		return 0, false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}

	// Split without discarding empty segments: a doubled slash breaks the
	// adjacency below, rejecting malformed paths like //actions//runs//1.
	segments := strings.Split(parsed.Path, "/")
	for i := 0; i+2 < len(segments); i++ {
		if segments[i] != "actions" || segments[i+1] != "runs" {
			continue
		}
		if id, ok := parseRunID(segments[i+2]); ok {
			return id, true
		}
	}

	return 0, false
}

// parseRunID parses a path segment as a run ID. Only plain digit runs are
// accepted; signs, spaces, and empty segments are not.
func parseRunID(segment string) (int64, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
