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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shurcooL/graphql"
	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
	"github.com/sirseerhq/cimonitor/internal/giterror"
)

// Default API endpoints. Overridable for GitHub Enterprise and tests.
const (
	defaultAPIEndpoint     = "https://api.github.com"
	defaultGraphQLEndpoint = "https://api.github.com/graphql"
	defaultUserAgent       = "cimonitor/dev"
)

// RESTClient implements the Client interface against the GitHub REST API,
// with pull request resolution delegated to the GraphQL API. All requests
// flow through an authenticated, retrying transport chain with response
// size limits.
type RESTClient struct {
	baseURL     string
	httpClient  *http.Client
	graphql     *graphql.Client
	inspector   giterror.Inspector
	jobsPerPage int
}

// ClientOption configures a RESTClient.
type ClientOption func(*clientSettings)

type clientSettings struct {
	baseURL         string
	graphqlEndpoint string
	userAgent       string
	jobsPerPage     int
}

// WithBaseURL points the client at a non-default REST endpoint, such as a
// GitHub Enterprise instance or a test server.
func WithBaseURL(u string) ClientOption {
	return func(s *clientSettings) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// WithGraphQLEndpoint points pull request resolution at a non-default
// GraphQL endpoint.
func WithGraphQLEndpoint(u string) ClientOption {
	return func(s *clientSettings) {
		s.graphqlEndpoint = u
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
// The CLI passes its build version through here.
func WithUserAgent(ua string) ClientOption {
	return func(s *clientSettings) {
		s.userAgent = ua
	}
}

// WithJobsPerPage overrides the page size for job and check-run listings.
// GitHub caps page sizes at 100.
func WithJobsPerPage(n int) ClientOption {
	return func(s *clientSettings) {
		if n > 0 {
			s.jobsPerPage = n
		}
	}
}

// NewClient creates a GitHub client authenticated with the provided token.
// The client is configured with:
//   - Bearer authentication and API version headers on every request
//   - Automatic retry with exponential backoff for transient failures
//   - Response size limiting to prevent memory issues
//   - Connection pooling tuned for repeated polling
func NewClient(token string, opts ...ClientOption) *RESTClient {
	settings := &clientSettings{
		baseURL:         defaultAPIEndpoint,
		graphqlEndpoint: defaultGraphQLEndpoint,
		userAgent:       defaultUserAgent,
		jobsPerPage:     jobsPerPage,
	}
	for _, opt := range opts {
		opt(settings)
	}

	httpClient := &http.Client{
		Transport: newRetryTransport(&authTransport{
			token:     token,
			userAgent: settings.userAgent,
			base:      newPooledTransport(),
		}),
	}

	return &RESTClient{
		baseURL:     settings.baseURL,
		httpClient:  httpClient,
		graphql:     graphql.NewClient(settings.graphqlEndpoint, httpClient),
		inspector:   giterror.NewInspector(),
		jobsPerPage: settings.jobsPerPage,
	}
}

// FetchWorkflowRuns retrieves workflow runs filtered per opts.
func (c *RESTClient) FetchWorkflowRuns(ctx context.Context, owner, repo string, opts FetchOptions) ([]WorkflowRun, error) {
	query := url.Values{}
	if opts.HeadSHA != "" {
		query.Set("head_sha", opts.HeadSHA)
	}
	if opts.Branch != "" {
		query.Set("branch", opts.Branch)
	}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	query.Set("per_page", strconv.Itoa(perPage))

	var resp workflowRunsResponse
	path := fmt.Sprintf("/repos/%s/%s/actions/runs", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, path, query, &resp, fmt.Sprintf("repository '%s/%s'", owner, repo)); err != nil {
		return nil, err
	}
	return resp.WorkflowRuns, nil
}

// FetchJobsForRun retrieves the jobs of one workflow run.
func (c *RESTClient) FetchJobsForRun(ctx context.Context, owner, repo string, runID int64) ([]Job, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.jobsPerPage))

	var resp jobsResponse
	path := fmt.Sprintf("/repos/%s/%s/actions/runs/%d/jobs", url.PathEscape(owner), url.PathEscape(repo), runID)
	if err := c.getJSON(ctx, path, query, &resp, fmt.Sprintf("workflow run %d", runID)); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// FetchJobByID retrieves a single job.
func (c *RESTClient) FetchJobByID(ctx context.Context, owner, repo string, jobID int64) (*Job, error) {
	var job Job
	path := fmt.Sprintf("/repos/%s/%s/actions/jobs/%d", url.PathEscape(owner), url.PathEscape(repo), jobID)
	if err := c.getJSON(ctx, path, nil, &job, fmt.Sprintf("job %d", jobID)); err != nil {
		return nil, err
	}
	return &job, nil
}

// FetchRawLogs retrieves a job's plaintext log. GitHub answers with a 302
// to blob storage, which the HTTP client follows transparently.
func (c *RESTClient) FetchRawLogs(ctx context.Context, owner, repo string, jobID int64) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/actions/jobs/%d/logs", url.PathEscape(owner), url.PathEscape(repo), jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.mapTransportError(err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, fmt.Sprintf("logs for job %d", jobID)); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read log body for job %d: %w", jobID, err)
	}
	return string(body), nil
}

// FetchCheckRuns retrieves check runs reported for a commit.
func (c *RESTClient) FetchCheckRuns(ctx context.Context, owner, repo, sha string) ([]CheckRun, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.jobsPerPage))

	var resp checkRunsResponse
	path := fmt.Sprintf("/repos/%s/%s/commits/%s/check-runs", url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(sha))
	if err := c.getJSON(ctx, path, query, &resp, fmt.Sprintf("commit %s", sha)); err != nil {
		return nil, err
	}
	return resp.CheckRuns, nil
}

// FetchBranchHead resolves a branch name to its head commit SHA.
func (c *RESTClient) FetchBranchHead(ctx context.Context, owner, repo, branch string) (string, error) {
	var resp branchResponse
	path := fmt.Sprintf("/repos/%s/%s/branches/%s", url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))
	if err := c.getJSON(ctx, path, nil, &resp, fmt.Sprintf("branch '%s'", branch)); err != nil {
		return "", err
	}
	if resp.Commit.SHA == "" {
		return "", fmt.Errorf("branch '%s' has no head commit: %w", branch, cierrors.ErrRepoNotFound)
	}
	return resp.Commit.SHA, nil
}

// RerunFailedJobs asks GitHub to re-run the failed jobs of a workflow run.
func (c *RESTClient) RerunFailedJobs(ctx context.Context, owner, repo string, runID int64) error {
	path := fmt.Sprintf("/repos/%s/%s/actions/runs/%d/rerun-failed-jobs", url.PathEscape(owner), url.PathEscape(repo), runID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()

	return c.checkStatus(resp, fmt.Sprintf("workflow run %d", runID))
}

// getJSON issues a GET request and decodes a JSON response body into out.
// resource names the thing being fetched for not-found messages.
func (c *RESTClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}, resource string) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, resource); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", resource, err)
	}
	return nil
}

// checkStatus translates non-2xx responses into sentinel-wrapped errors
// with actionable messages.
func (c *RESTClient) checkStatus(resp *http.Response, resource string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", cierrors.ErrInvalidToken)
	case resp.StatusCode == http.StatusForbidden && isRateLimitResponse(resp, detail):
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", cierrors.ErrRateLimit)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", cierrors.ErrRateLimit)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("GitHub API denied access to %s. Check your token's scopes: %w", resource, cierrors.ErrInvalidToken)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s not found. Please check the name and your access permissions: %w", resource, cierrors.ErrRepoNotFound)
	case resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%s are no longer available; GitHub retains logs for a limited time: %w", resource, cierrors.ErrLogsExpired)
	default:
		return fmt.Errorf("unexpected status %d from GitHub API for %s: %s", resp.StatusCode, resource, detail)
	}
}

// isRateLimitResponse distinguishes a rate-limited 403 from a permission 403.
func isRateLimitResponse(resp *http.Response, body string) bool {
	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return true
	}
	return strings.Contains(strings.ToLower(body), "rate limit")
}

// mapTransportError classifies request-level failures with actionable messages.
func (c *RESTClient) mapTransportError(err error) error {
	if err == nil {
		return nil
	}
	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub API. Please check your internet connection and try again: %w", cierrors.ErrNetworkFailure)
	}
	return err
}
