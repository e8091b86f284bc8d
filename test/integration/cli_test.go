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

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const headSHA = "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0"

func buildBinary(t *testing.T) string {
	// Build binary in temp directory
	tmpDir := t.TempDir()
	binaryPath := filepath.Join(tmpDir, "cimonitor")

	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/cimonitor")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\nOutput: %s", err, output)
	}

	return binaryPath
}

func TestCLI_InvalidRepoFormat(t *testing.T) {
	binaryPath := buildBinary(t)

	tests := []struct {
		name    string
		repo    string
		wantErr string
	}{
		{
			name:    "missing slash",
			repo:    "invalid-repo-format",
			wantErr: "invalid repository format",
		},
		{
			name:    "too many slashes",
			repo:    "org/repo/extra",
			wantErr: "invalid repository format",
		},
		{
			name:    "empty owner",
			repo:    "/repo",
			wantErr: "invalid repository format",
		},
		{
			name:    "empty repo",
			repo:    "org/",
			wantErr: "invalid repository format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, "status", "--repo", tt.repo, "--commit", headSHA)
			// Repo parsing happens after the token check
			cmd.Env = append(os.Environ(), "GITHUB_TOKEN=dummy")

			var stderr bytes.Buffer
			cmd.Stderr = &stderr

			err := cmd.Run()
			if err == nil {
				t.Fatal("Expected command to fail")
			}

			// Verify error message
			stderrStr := stderr.String()
			if !strings.Contains(stderrStr, tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %s", tt.wantErr, stderrStr)
			}
		})
	}
}

func TestCLI_MissingToken(t *testing.T) {
	binaryPath := buildBinary(t)

	// Clear any existing GITHUB_TOKEN
	cmd := exec.Command(binaryPath, "status", "--repo", "octocat/Hello-World", "--commit", headSHA)
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		t.Fatal("Expected command to fail")
	}

	// Verify error message
	stderrStr := stderr.String()
	if !strings.Contains(stderrStr, "GitHub token not found") {
		t.Errorf("Expected missing token error, got: %s", stderrStr)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	binaryPath := buildBinary(t)

	tests := []struct {
		name string
		args []string
	}{
		{
			name: "main help",
			args: []string{"--help"},
		},
		{
			name: "status help",
			args: []string{"status", "--help"},
		},
		{
			name: "logs help",
			args: []string{"logs", "--help"},
		},
		{
			name: "watch help",
			args: []string{"watch", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)

			var stdout bytes.Buffer
			cmd.Stdout = &stdout

			err := cmd.Run()
			if err != nil {
				t.Fatalf("Help command failed: %v", err)
			}

			output := stdout.String()

			// Verify help content
			if !strings.Contains(output, "cimonitor") {
				t.Error("Expected binary name in help output")
			}

			if len(tt.args) > 1 {
				// Every subcommand carries the shared target selectors
				for _, flag := range []string{"--branch", "--commit", "--pr", "--repo"} {
					if !strings.Contains(output, flag) {
						t.Errorf("Expected %s flag in %s help", flag, tt.args[0])
					}
				}
			}

			switch tt.args[0] {
			case "logs":
				if !strings.Contains(output, "--raw") {
					t.Error("Expected --raw flag in logs help")
				}
				if !strings.Contains(output, "--job-id") {
					t.Error("Expected --job-id flag in logs help")
				}
			case "watch":
				if !strings.Contains(output, "--until-fail") {
					t.Error("Expected --until-fail flag in watch help")
				}
				if !strings.Contains(output, "Stop as soon as any workflow fails") {
					t.Error("Expected --until-fail flag description")
				}
				if !strings.Contains(output, "--retry") {
					t.Error("Expected --retry flag in watch help")
				}
			}
		})
	}
}

func TestCLI_VersionFlag(t *testing.T) {
	binaryPath := buildBinary(t)

	cmd := exec.Command(binaryPath, "--version")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err != nil {
		t.Fatalf("Version flag failed: %v", err)
	}

	output := stdout.String()

	// Version should contain "cimonitor" and a version
	if !strings.Contains(output, "cimonitor") {
		t.Error("Expected binary name in version output")
	}
}

func TestCLI_Flags(t *testing.T) {
	binaryPath := buildBinary(t)

	// Test with all flags (will fail due to no token, but we can verify parsing)
	cmd := exec.Command(binaryPath, "watch",
		"--repo", "octocat/Hello-World",
		"--branch", "main",
		"--until-fail",
		"--verbose")
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		t.Fatal("Expected command to fail (no token)")
	}

	// Should fail with missing token, not flag parsing error
	stderrStr := stderr.String()
	if !strings.Contains(stderrStr, "GitHub token not found") {
		t.Errorf("Expected missing token error, got: %s", stderrStr)
	}
}

func TestCLI_InvalidFlags(t *testing.T) {
	binaryPath := buildBinary(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown flag",
			args:    []string{"status", "--unknown-flag"},
			wantErr: "unknown flag",
		},
		{
			name:    "invalid pr number",
			args:    []string{"status", "--pr", "not-a-number"},
			wantErr: "invalid",
		},
		{
			name:    "unknown subcommand",
			args:    []string{"fetch", "octocat/Hello-World"},
			wantErr: "unknown command",
		},
		{
			name:    "unexpected argument",
			args:    []string{"status", "octocat/Hello-World"},
			wantErr: "unknown command",
		},
		{
			name:    "conflicting selectors",
			args:    []string{"status", "--branch", "main", "--commit", headSHA},
			wantErr: "only one of --branch, --commit, or --pr",
		},
		{
			name:    "conflicting watch modes",
			args:    []string{"watch", "--until-complete", "--until-fail"},
			wantErr: "cannot specify both --until-complete and --until-fail",
		},
		{
			name:    "retry without positive count",
			args:    []string{"watch", "--retry", "0"},
			wantErr: "--retry must be a positive integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			// Selector validation happens after the token check
			cmd.Env = append(os.Environ(), "GITHUB_TOKEN=dummy")

			var stderr bytes.Buffer
			cmd.Stderr = &stderr

			err := cmd.Run()
			if err == nil {
				t.Fatal("Expected command to fail")
			}

			stderrStr := stderr.String()
			if !strings.Contains(strings.ToLower(stderrStr), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %s", tt.wantErr, stderrStr)
			}
		})
	}
}

// TestCLI_ExitCodes verifies that the CLI returns appropriate exit codes
func TestCLI_ExitCodes(t *testing.T) {
	binaryPath := buildBinary(t)

	tests := []struct {
		name         string
		args         []string
		env          []string
		wantExitCode int
	}{
		{
			name:         "missing token",
			args:         []string{"status", "--repo", "octocat/Hello-World", "--commit", headSHA},
			env:          []string{"PATH=" + os.Getenv("PATH")},
			wantExitCode: 2,
		},
		{
			name:         "invalid repo format",
			args:         []string{"status", "--repo", "invalid", "--commit", headSHA},
			env:          append(os.Environ(), "GITHUB_TOKEN=dummy"),
			wantExitCode: 1,
		},
		{
			name:         "conflicting selectors",
			args:         []string{"status", "--branch", "main", "--commit", headSHA},
			env:          append(os.Environ(), "GITHUB_TOKEN=dummy"),
			wantExitCode: 1,
		},
		{
			name:         "help command",
			args:         []string{"--help"},
			wantExitCode: 0,
		},
		{
			name:         "version flag",
			args:         []string{"--version"},
			wantExitCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			if tt.env != nil {
				cmd.Env = tt.env
			}

			err := cmd.Run()

			exitCode := 0
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					exitCode = exitErr.ExitCode()
				} else {
					t.Fatalf("Unexpected error type: %v", err)
				}
			}

			if exitCode != tt.wantExitCode {
				t.Errorf("Expected exit code %d, got %d", tt.wantExitCode, exitCode)
			}
		})
	}
}
