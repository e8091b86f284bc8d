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

// Package output renders CI reports to a terminal.
//
// The package provides:
//   - Renderer: line-oriented report blocks for the status, logs, and
//     watch views, written to an injected io.Writer
//   - Duration formatting for steps and workflow runs, tolerant of
//     absent or malformed timestamps
//
// Rendering is presentation only. Commands decide what to fetch and in
// which order; the renderer decides how each block looks.
package output
