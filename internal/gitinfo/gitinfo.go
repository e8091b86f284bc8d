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

// Package gitinfo resolves the working repository's GitHub coordinates
// and current HEAD by reading the .git directory directly. No git binary
// is invoked; only .git/config, .git/HEAD, loose refs, and packed-refs
// are consulted.
package gitinfo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// maxSearchDepth bounds the upward walk looking for a .git directory.
	maxSearchDepth = 10

	shortSHALen = 8
)

// Info describes the working repository: its origin coordinates and the
// commit HEAD points at. Branch holds the short SHA when HEAD is detached.
type Info struct {
	Owner  string
	Repo   string
	Branch string
	SHA    string
}

// Detect resolves repository info starting from dir, walking parent
// directories until a .git/config is found.
func Detect(dir string) (*Info, error) {
	gitDir, err := findGitDir(dir)
	if err != nil {
		return nil, err
	}

	owner, repo, err := originOwnerRepo(filepath.Join(gitDir, "config"))
	if err != nil {
		return nil, err
	}

	branch, sha, err := resolveHead(gitDir)
	if err != nil {
		return nil, err
	}

	return &Info{Owner: owner, Repo: repo, Branch: branch, SHA: sha}, nil
}

// ShortSHA truncates a commit SHA to its 8-character display form.
func ShortSHA(sha string) string {
	if len(sha) <= shortSHALen {
		return sha
	}
	return sha[:shortSHALen]
}

// findGitDir locates the .git directory by searching upward from start.
func findGitDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory %s: %w", start, err)
	}

	for range maxSearchDepth {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(filepath.Join(gitDir, "config")); err == nil && !info.IsDir() {
			return gitDir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("no .git directory found")
}

// originOwnerRepo extracts the owner/repo pair from the origin remote URL
// in a git config file.
func originOwnerRepo(configPath string) (string, string, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read git config: %w", err)
	}

	url := originURL(string(content))
	if url == "" {
		return "", "", errors.New("no origin remote found in git config")
	}

	owner, repo, ok := splitRemoteURL(url)
	if !ok {
		return "", "", fmt.Errorf("failed to extract owner/repo from URL: %s", url)
	}
	return owner, repo, nil
}

// originURL finds the url entry of the [remote "origin"] section.
func originURL(config string) string {
	var inOriginSection bool

	for _, line := range strings.Split(config, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") {
			inOriginSection = strings.HasPrefix(trimmed, "[remote") && strings.Contains(trimmed, `"origin"`)
			continue
		}

		if inOriginSection && strings.HasPrefix(trimmed, "url") {
			parts := strings.SplitN(trimmed, "=", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1])
			}
		}
	}

	return ""
}

var repoFormat = regexp.MustCompile(`^[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+$`)

// splitRemoteURL converts a GitHub remote URL to its owner and repo parts.
// Handles:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo
//   - git@github.com:owner/repo.git
func splitRemoteURL(url string) (string, string, bool) {
	var path string

	switch {
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"):
		idx := strings.Index(url, "github.com/")
		if idx == -1 {
			return "", "", false
		}
		path = url[idx+len("github.com/"):]
	default:
		after, ok := strings.CutPrefix(url, "git@github.com:")
		if !ok {
			return "", "", false
		}
		path = after
	}

	path = strings.TrimSuffix(path, "/")
	path = strings.TrimSuffix(path, ".git")
	if !repoFormat.MatchString(path) {
		return "", "", false
	}

	owner, repo, _ := strings.Cut(path, "/")
	return owner, repo, true
}

// resolveHead reads .git/HEAD and resolves it to a branch label and
// commit SHA. A detached HEAD is labeled with its short SHA.
func resolveHead(gitDir string) (string, string, error) {
	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	target := strings.TrimSpace(string(head))
	if target == "" {
		return "", "", errors.New("empty HEAD file")
	}

	if ref, ok := strings.CutPrefix(target, "ref: "); ok {
		branch := strings.TrimPrefix(ref, "refs/heads/")
		sha, err := resolveRef(gitDir, ref)
		if err != nil {
			return "", "", err
		}
		return branch, sha, nil
	}

	return ShortSHA(target), target, nil
}

// resolveRef looks a ref up as a loose ref file, falling back to
// packed-refs.
func resolveRef(gitDir, ref string) (string, error) {
	loose := filepath.Join(gitDir, filepath.FromSlash(ref))
	if data, err := os.ReadFile(loose); err == nil {
		if sha := strings.TrimSpace(string(data)); sha != "" {
			return sha, nil
		}
	}
	return packedRef(gitDir, ref)
}

// packedRef scans .git/packed-refs for the ref. Peeled tag lines start
// with ^ and are skipped.
func packedRef(gitDir, ref string) (string, error) {
	data, err := os.ReadFile(filepath.Join(gitDir, "packed-refs"))
	if err != nil {
		return "", fmt.Errorf("ref %s not found", ref)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == ref {
			return fields[0], nil
		}
	}

	return "", fmt.Errorf("ref %s not found", ref)
}
