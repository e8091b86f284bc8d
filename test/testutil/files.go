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

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteConfigFile writes a .cimonitor.yml with the given content into dir
// and returns its path
func WriteConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ".cimonitor.yml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	return path
}

// InitGitRepo lays out a minimal .git directory inside dir: an origin
// remote, HEAD on the given branch, and the branch ref at sha. Enough
// for remote and commit discovery without running git.
func InitGitRepo(t *testing.T, dir, remoteURL, branch, sha string) {
	t.Helper()

	gitDir := filepath.Join(dir, ".git")
	if err := os.MkdirAll(filepath.Join(gitDir, "refs", "heads"), 0o755); err != nil {
		t.Fatalf("Failed to create git dir: %v", err)
	}

	config := "[remote \"origin\"]\n\turl = " + remoteURL + "\n"
	if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte(config), 0600); err != nil {
		t.Fatalf("Failed to write git config: %v", err)
	}

	head := "ref: refs/heads/" + branch + "\n"
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte(head), 0600); err != nil {
		t.Fatalf("Failed to write git HEAD: %v", err)
	}

	if err := os.WriteFile(filepath.Join(gitDir, "refs", "heads", branch), []byte(sha+"\n"), 0600); err != nil {
		t.Fatalf("Failed to write branch ref: %v", err)
	}
}
