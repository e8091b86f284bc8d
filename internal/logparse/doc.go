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

// Package logparse extracts the interesting parts of GitHub Actions job
// logs: the log section belonging to a failed step, and the lines that
// look like errors.
//
// Actions runners delimit each step's output with marker lines:
//
//	##[group]Run pytest tests/
//	...step output...
//	##[endgroup]
//	...post-step output...
//
// ExtractStepLogs locates these sections by step name and captures a
// bounded amount of post-endgroup output, where test runners often print
// their summaries. FilterErrorLines reduces a raw log to its error-ish
// lines, using the timestamp prefix the runner adds to every line to
// tell runner chatter from program output.
package logparse
