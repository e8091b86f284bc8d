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

// Package watch polls workflow runs until they reach a terminal state.
//
// The loop is a small state machine: each iteration fetches the current
// runs, hands a Snapshot to the caller's observer, classifies the batch,
// and either stops with an Outcome or sleeps one interval and polls
// again. Classification happens before the sleep, so a batch that is
// already complete on the first poll returns immediately.
//
// Terminal outcomes:
//   - Success: every run completed and none concluded as failing
//   - Failure: a run concluded as failing (immediately, under
//     StopOnFirstFailure; otherwise once the batch completes)
//   - TimedOut: MaxPolls fetches happened without a terminal state
//   - Cancelled: the caller's context ended, including mid-sleep
//
// The loop runs on a single goroutine and keeps no state beyond its
// session bookkeeping; every poll refetches from scratch.
package watch
