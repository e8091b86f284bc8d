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

package github

import (
	"context"
	"fmt"

	"github.com/shurcooL/graphql"
	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
)

// pullRequestQuery resolves a pull request number to its head commit and
// branch. The REST pulls endpoint returns the same data but requires an
// extra round trip for the head SHA on long-lived branches; one GraphQL
// query answers both fields at a fixed cost.
type pullRequestQuery struct {
	Repository struct {
		PullRequest struct {
			Number      graphql.Int
			HeadRefOid  graphql.String
			HeadRefName graphql.String
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// ResolvePullRequest looks up the head commit SHA and branch name of a
// pull request via the GraphQL API.
func (c *RESTClient) ResolvePullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestRef, error) {
	var query pullRequestQuery
	variables := map[string]interface{}{
		"owner":  graphql.String(owner),
		"name":   graphql.String(repo),
		"number": graphql.Int(number),
	}

	if err := c.graphql.Query(ctx, &query, variables); err != nil {
		return nil, c.mapGraphQLError(err, owner, repo, number)
	}

	ref := &PullRequestRef{
		Number:      int(query.Repository.PullRequest.Number),
		HeadSHA:     string(query.Repository.PullRequest.HeadRefOid),
		HeadRefName: string(query.Repository.PullRequest.HeadRefName),
	}
	if ref.HeadSHA == "" {
		return nil, fmt.Errorf("pull request #%d in %s/%s not found. Please check the number and your access permissions: %w", number, owner, repo, cierrors.ErrRepoNotFound)
	}
	return ref, nil
}

// mapGraphQLError converts raw GraphQL errors into sentinel-wrapped errors
// with actionable messages. Rate limit is checked before authentication
// because GitHub reports both conditions with similar phrasing.
func (c *RESTClient) mapGraphQLError(err error, owner, repo string, number int) error {
	switch {
	case c.inspector.IsRateLimitError(err):
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", cierrors.ErrRateLimit)
	case c.inspector.IsAuthError(err):
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", cierrors.ErrInvalidToken)
	case c.inspector.IsNotFoundError(err):
		return fmt.Errorf("pull request #%d in %s/%s not found. Please check the number and your access permissions: %w", number, owner, repo, cierrors.ErrRepoNotFound)
	case c.inspector.IsNetworkError(err):
		return fmt.Errorf("network error connecting to GitHub API. Please check your internet connection and try again: %w", cierrors.ErrNetworkFailure)
	default:
		return fmt.Errorf("GitHub API error resolving pull request #%d: %w", number, err)
	}
}
