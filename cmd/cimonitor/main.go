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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Ctrl-C cancels the context instead of killing the process, so the
	// watch loop can report a clean stop and exit 0.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "cimonitor",
		Short: "Inspect GitHub Actions CI status from the command line",
		Long: `cimonitor reports GitHub Actions CI results for a commit, branch, or
pull request. It shows failing check runs with their failed steps, extracts
the error-relevant sections of job logs, and can poll a commit's workflow
runs until they complete.`,
		Version:       version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newLogsCommand())
	rootCmd.AddCommand(newWatchCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, cierrors.ErrInvalidToken) ||
		errors.Is(err, cierrors.ErrRepoNotFound) ||
		errors.Is(err, cierrors.ErrRateLimit) {
		return 2 // Authentication/authorization errors
	}

	if errors.Is(err, cierrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
