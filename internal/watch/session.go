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
	"time"

	"github.com/sirseerhq/cimonitor/internal/github"
)

// session is the loop-owned bookkeeping for one watch: when it started,
// how many polls have completed, and the last snapshot taken. It is
// created per Watch call and touched by a single goroutine.
type session struct {
	startTime time.Time
	polls     int
	last      Snapshot
}

func newSession() *session {
	return &session{startTime: time.Now()}
}

// record folds one fetch result into the session and returns the
// snapshot describing it.
func (s *session) record(runs []github.WorkflowRun) Snapshot {
	s.polls++
	s.last = Snapshot{
		Runs:    runs,
		Polls:   s.polls,
		NoRuns:  len(runs) == 0,
		Elapsed: time.Since(s.startTime),
	}
	return s.last
}
