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
	"sync"

	cierrors "github.com/sirseerhq/cimonitor/internal/errors"
)

// MockClient is a test double implementing the Client interface. Responses
// are configured through functional options; every call is recorded so
// tests can assert on interaction patterns.
type MockClient struct {
	mu sync.Mutex

	workflowRuns []WorkflowRun
	runsSequence [][]WorkflowRun
	seqIndex     int
	jobsByRun    map[int64][]Job
	jobsByID     map[int64]*Job
	jobsErrs     map[int64]error
	rawLogs      map[int64]string
	checkRuns    []CheckRun
	branchHeads  map[string]string
	pullRequests map[int]*PullRequestRef

	err error

	// Calls records method names in invocation order.
	Calls []string
	// LastOwner and LastRepo record the repository of the most recent call.
	LastOwner string
	LastRepo  string
	// LastOptions records the options of the most recent FetchWorkflowRuns.
	LastOptions FetchOptions
	// RerunRequests records every run ID passed to RerunFailedJobs.
	RerunRequests []int64
}

// MockOption configures a MockClient.
type MockOption func(*MockClient)

// WithWorkflowRuns sets the runs returned by FetchWorkflowRuns.
func WithWorkflowRuns(runs []WorkflowRun) MockOption {
	return func(m *MockClient) {
		m.workflowRuns = runs
	}
}

// WithRunsSequence makes successive FetchWorkflowRuns calls return
// successive elements; the final element repeats once exhausted. Used by
// polling tests to simulate runs progressing toward completion.
func WithRunsSequence(sequence ...[]WorkflowRun) MockOption {
	return func(m *MockClient) {
		m.runsSequence = sequence
	}
}

// WithJobs sets the jobs returned by FetchJobsForRun for one run.
func WithJobs(runID int64, jobs []Job) MockOption {
	return func(m *MockClient) {
		m.jobsByRun[runID] = jobs
		for i := range jobs {
			job := jobs[i]
			m.jobsByID[job.ID] = &job
		}
	}
}

// WithJobsError makes FetchJobsForRun fail for one run while other runs
// still succeed. Used by per-item degradation tests.
func WithJobsError(runID int64, err error) MockOption {
	return func(m *MockClient) {
		m.jobsErrs[runID] = err
	}
}

// WithRawLogs sets the log text returned by FetchRawLogs for one job.
func WithRawLogs(jobID int64, logs string) MockOption {
	return func(m *MockClient) {
		m.rawLogs[jobID] = logs
	}
}

// WithCheckRuns sets the check runs returned by FetchCheckRuns.
func WithCheckRuns(checks []CheckRun) MockOption {
	return func(m *MockClient) {
		m.checkRuns = checks
	}
}

// WithBranchHead sets the SHA resolved by FetchBranchHead for one branch.
func WithBranchHead(branch, sha string) MockOption {
	return func(m *MockClient) {
		m.branchHeads[branch] = sha
	}
}

// WithPullRequest sets the ref resolved by ResolvePullRequest for one number.
func WithPullRequest(number int, ref *PullRequestRef) MockOption {
	return func(m *MockClient) {
		m.pullRequests[number] = ref
	}
}

// WithError makes every call fail with err.
func WithError(err error) MockOption {
	return func(m *MockClient) {
		m.err = err
	}
}

// WithAuthFailure makes every call fail with an authentication error.
func WithAuthFailure() MockOption {
	return WithError(fmt.Errorf("GitHub API authentication failed: %w", cierrors.ErrInvalidToken))
}

// WithNotFoundFailure makes every call fail with a not-found error.
func WithNotFoundFailure() MockOption {
	return WithError(fmt.Errorf("repository not found: %w", cierrors.ErrRepoNotFound))
}

// WithNetworkFailure makes every call fail with a network error.
func WithNetworkFailure() MockOption {
	return WithError(fmt.Errorf("network error connecting to GitHub API: %w", cierrors.ErrNetworkFailure))
}

// NewMockClient creates an empty MockClient. Calls succeed and return
// zero-value responses until options populate them.
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		jobsByRun:    make(map[int64][]Job),
		jobsByID:     make(map[int64]*Job),
		jobsErrs:     make(map[int64]error),
		rawLogs:      make(map[int64]string),
		branchHeads:  make(map[string]string),
		pullRequests: make(map[int]*PullRequestRef),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockClient) record(method, owner, repo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, method)
	m.LastOwner = owner
	m.LastRepo = repo
	return m.err
}

// FetchWorkflowRuns implements Client.
func (m *MockClient) FetchWorkflowRuns(_ context.Context, owner, repo string, opts FetchOptions) ([]WorkflowRun, error) {
	if err := m.record("FetchWorkflowRuns", owner, repo); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastOptions = opts
	if len(m.runsSequence) > 0 {
		runs := m.runsSequence[m.seqIndex]
		if m.seqIndex < len(m.runsSequence)-1 {
			m.seqIndex++
		}
		return runs, nil
	}
	return m.workflowRuns, nil
}

// FetchJobsForRun implements Client.
func (m *MockClient) FetchJobsForRun(_ context.Context, owner, repo string, runID int64) ([]Job, error) {
	if err := m.record("FetchJobsForRun", owner, repo); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.jobsErrs[runID]; err != nil {
		return nil, err
	}
	return m.jobsByRun[runID], nil
}

// FetchJobByID implements Client.
func (m *MockClient) FetchJobByID(_ context.Context, owner, repo string, jobID int64) (*Job, error) {
	if err := m.record("FetchJobByID", owner, repo); err != nil {
		return nil, err
	}
	job, ok := m.jobsByID[jobID]
	if !ok {
		return nil, fmt.Errorf("job %d not found: %w", jobID, cierrors.ErrRepoNotFound)
	}
	return job, nil
}

// FetchRawLogs implements Client.
func (m *MockClient) FetchRawLogs(_ context.Context, owner, repo string, jobID int64) (string, error) {
	if err := m.record("FetchRawLogs", owner, repo); err != nil {
		return "", err
	}
	logs, ok := m.rawLogs[jobID]
	if !ok {
		return "", fmt.Errorf("logs for job %d are no longer available: %w", jobID, cierrors.ErrLogsExpired)
	}
	return logs, nil
}

// FetchCheckRuns implements Client.
func (m *MockClient) FetchCheckRuns(_ context.Context, owner, repo, _ string) ([]CheckRun, error) {
	if err := m.record("FetchCheckRuns", owner, repo); err != nil {
		return nil, err
	}
	return m.checkRuns, nil
}

// FetchBranchHead implements Client.
func (m *MockClient) FetchBranchHead(_ context.Context, owner, repo, branch string) (string, error) {
	if err := m.record("FetchBranchHead", owner, repo); err != nil {
		return "", err
	}
	sha, ok := m.branchHeads[branch]
	if !ok {
		return "", fmt.Errorf("branch '%s' not found: %w", branch, cierrors.ErrRepoNotFound)
	}
	return sha, nil
}

// ResolvePullRequest implements Client.
func (m *MockClient) ResolvePullRequest(_ context.Context, owner, repo string, number int) (*PullRequestRef, error) {
	if err := m.record("ResolvePullRequest", owner, repo); err != nil {
		return nil, err
	}
	ref, ok := m.pullRequests[number]
	if !ok {
		return nil, fmt.Errorf("pull request #%d not found: %w", number, cierrors.ErrRepoNotFound)
	}
	return ref, nil
}

// RerunFailedJobs implements Client.
func (m *MockClient) RerunFailedJobs(_ context.Context, owner, repo string, runID int64) error {
	if err := m.record("RerunFailedJobs", owner, repo); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RerunRequests = append(m.RerunRequests, runID)
	return nil
}

// CallCount returns how many times the named method was invoked.
func (m *MockClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.Calls {
		if call == method {
			count++
		}
	}
	return count
}

// Compile-time interface checks.
var (
	_ Client = (*RESTClient)(nil)
	_ Client = (*MockClient)(nil)
)
