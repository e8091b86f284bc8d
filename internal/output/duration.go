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

package output

import (
	"fmt"
	"time"
)

// nowFunc returns the current time. Tests override it to pin the
// fallback end time used for in-progress workflow runs.
var nowFunc = time.Now

// StepDuration formats the elapsed time of a single job step with
// one decimal of precision, e.g. "12.3s". Either timestamp missing or
// unparseable yields "Unknown".
func StepDuration(startedAt, completedAt string) string {
	if startedAt == "" || completedAt == "" {
		return "Unknown"
	}
	started, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return "Unknown"
	}
	completed, err := time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return "Unknown"
	}
	return fmt.Sprintf("%.1fs", completed.Sub(started).Seconds())
}

// WorkflowDuration formats the elapsed time of a workflow run in whole
// seconds, e.g. "300s". A run still in progress has no useful updatedAt,
// so the current time stands in for the end. An unparseable createdAt
// yields "unknown".
func WorkflowDuration(createdAt, updatedAt string) string {
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return "unknown"
	}
	end := nowFunc().In(created.Location())
	if updatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			end = parsed
		}
	}
	return fmt.Sprintf("%ds", int64(end.Sub(created).Seconds()))
}
