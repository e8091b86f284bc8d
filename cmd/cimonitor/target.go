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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirseerhq/cimonitor/internal/config"
	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
	"github.com/sirseerhq/cimonitor/internal/github"
	"github.com/sirseerhq/cimonitor/internal/gitinfo"
	"github.com/sirseerhq/cimonitor/internal/output"
	"github.com/spf13/cobra"
)

// targetFlags holds the flag values shared by every subcommand.
type targetFlags struct {
	repo       string
	token      string
	configPath string
	verbose    bool
	branch     string
	commit     string
	pr         int
}

// register attaches the shared flags to a subcommand.
func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.repo, "repo", "", "Repository in <owner>/<repo> format (default: detect from git remote)")
	cmd.Flags().StringVar(&f.token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&f.configPath, "config", "", "Config file path")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print target resolution details")
	cmd.Flags().StringVar(&f.branch, "branch", "", "Inspect CI for this branch's head commit")
	cmd.Flags().StringVar(&f.commit, "commit", "", "Inspect CI for this commit SHA")
	cmd.Flags().IntVar(&f.pr, "pr", 0, "Inspect CI for this pull request's head commit")
}

// target identifies the commit whose CI is inspected, plus how to label it
// in report headers.
type target struct {
	owner       string
	repo        string
	sha         string
	branch      string
	description string

	// pollBranch makes watch poll by branch instead of the pinned head
	// SHA. Set only when the target came from --branch, so a branch watch
	// follows new runs pushed while watching.
	pollBranch string
}

// app bundles everything a subcommand needs once flags are resolved:
// validated config, an authenticated client, the resolved target, and the
// report renderer.
type app struct {
	cfg    *config.Config
	client github.Client
	target *target
	render *output.Renderer
}

// newApp loads configuration, acquires the GitHub token, builds the API
// client, and resolves the target. Failures here are hard aborts; nothing
// has been reported yet.
func newApp(ctx context.Context, f *targetFlags, out io.Writer) (*app, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	token := getToken(f.token, cfg.GitHub.TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("GitHub token not found. Set GITHUB_TOKEN or use --token flag: %w", cierrors.ErrInvalidToken)
	}

	client := github.NewClient(token,
		github.WithBaseURL(cfg.GitHub.APIEndpoint),
		github.WithGraphQLEndpoint(cfg.GitHub.GraphQLEndpoint),
		github.WithUserAgent("cimonitor/"+version),
		github.WithJobsPerPage(cfg.Fetch.JobsPerPage),
	)

	tgt, err := resolveTarget(ctx, client, f)
	if err != nil {
		return nil, err
	}

	render := output.NewRenderer(out)
	if f.verbose {
		render.TargetDetails(tgt.owner, tgt.repo, tgt.branch, tgt.sha)
	}

	return &app{cfg: cfg, client: client, target: tgt, render: render}, nil
}

// resolveTarget turns the target flags into a concrete commit. The
// repository comes from --repo or the working repository's origin remote;
// the commit from --commit, --branch (head resolved via the API), --pr
// (head resolved via GraphQL), or the working repository's HEAD.
func resolveTarget(ctx context.Context, client github.Client, f *targetFlags) (*target, error) {
	if err := validateTargetFlags(f); err != nil {
		return nil, err
	}

	tgt := &target{}

	var info *gitinfo.Info
	if f.repo != "" {
		owner, repo, err := parseRepository(f.repo)
		if err != nil {
			return nil, err
		}
		tgt.owner, tgt.repo = owner, repo
	} else {
		var err error
		info, err = gitinfo.Detect(".")
		if err != nil {
			return nil, fmt.Errorf("not a git repository (or no origin remote). Use --repo <owner>/<repo>: %w", cierrors.ErrRepoNotFound)
		}
		tgt.owner, tgt.repo = info.Owner, info.Repo
	}

	switch {
	case f.commit != "":
		tgt.sha = f.commit
		tgt.description = "commit " + gitinfo.ShortSHA(f.commit)

	case f.branch != "":
		sha, err := client.FetchBranchHead(ctx, tgt.owner, tgt.repo, f.branch)
		if err != nil {
			return nil, err
		}
		tgt.sha = sha
		tgt.branch = f.branch
		tgt.pollBranch = f.branch
		tgt.description = "branch " + f.branch

	case f.pr != 0:
		ref, err := client.ResolvePullRequest(ctx, tgt.owner, tgt.repo, f.pr)
		if err != nil {
			return nil, err
		}
		tgt.sha = ref.HeadSHA
		tgt.branch = ref.HeadRefName
		tgt.description = fmt.Sprintf("PR #%d", f.pr)

	default:
		if info == nil {
			var err error
			info, err = gitinfo.Detect(".")
			if err != nil {
				return nil, fmt.Errorf("cannot determine the commit to inspect outside a git repository. Use --branch, --commit, or --pr")
			}
		}
		// Detached HEAD carries the short SHA as the branch label.
		tgt.sha = info.SHA
		tgt.branch = info.Branch
		tgt.description = "branch " + info.Branch
	}

	return tgt, nil
}

// validateTargetFlags rejects combinations of the mutually exclusive
// target selectors.
func validateTargetFlags(f *targetFlags) error {
	count := 0
	if f.branch != "" {
		count++
	}
	if f.commit != "" {
		count++
	}
	if f.pr != 0 {
		count++
	}
	if count > 1 {
		return fmt.Errorf("Please specify only one of --branch, --commit, or --pr")
	}
	return nil
}

// parseRepository parses an owner/repo string into owner and repo components
func parseRepository(repoArg string) (owner, repo string, err error) {
	parts := strings.Split(repoArg, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])

	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	return owner, repo, nil
}

// getToken returns the GitHub token from flag or environment variable
func getToken(flagToken, envName string) string {
	if flagToken != "" {
		return flagToken
	}
	return os.Getenv(envName)
}
