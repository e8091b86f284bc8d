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

// Package testutil provides common test helpers for cimonitor
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/sirseerhq/cimonitor/internal/github"
)

// ActionsServer fakes the GitHub endpoints cimonitor talks to: workflow
// run listings, jobs, raw logs, check runs, branch heads, failed-job
// reruns, and the GraphQL pull request lookup. State is mutable between
// requests so tests can script multi-poll scenarios.
type ActionsServer struct {
	*httptest.Server

	mu            sync.Mutex
	runBatches    [][]github.WorkflowRun
	batchIndex    int
	jobsByRun     map[int64][]github.Job
	logsByJob     map[int64]string
	checkRuns     []github.CheckRun
	branchHeads   map[string]string
	pullRequests  map[int]github.PullRequestRef
	requiredToken string

	failRemaining int
	failStatus    int
	rateLimitLeft int

	requests      int
	runsRequests  int
	lastRunsQuery url.Values
	rerunRuns     []int64
}

// NewActionsServer starts a fake Actions API server. The server is
// closed automatically when the test finishes.
func NewActionsServer(t *testing.T) *ActionsServer {
	t.Helper()

	s := &ActionsServer{
		jobsByRun:    make(map[int64][]github.Job),
		logsByJob:    make(map[int64]string),
		branchHeads:  make(map[string]string),
		pullRequests: make(map[int]github.PullRequestRef),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/runs", s.handleRuns)
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/runs/{id}/jobs", s.handleJobs)
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/jobs/{id}", s.handleJob)
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/jobs/{id}/logs", s.handleLogs)
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits/{sha}/check-runs", s.handleCheckRuns)
	mux.HandleFunc("GET /repos/{owner}/{repo}/branches/{branch}", s.handleBranch)
	mux.HandleFunc("POST /repos/{owner}/{repo}/actions/runs/{id}/rerun-failed-jobs", s.handleRerun)
	mux.HandleFunc("POST /graphql", s.handleGraphQL)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetWorkflowRuns makes every runs request return the same batch.
func (s *ActionsServer) SetWorkflowRuns(runs []github.WorkflowRun) {
	s.QueueRunBatches(runs)
}

// QueueRunBatches serves the given batches to successive runs requests,
// repeating the last batch once the queue is exhausted. Tests script
// watch scenarios with it: in-progress first, completed later.
func (s *ActionsServer) QueueRunBatches(batches ...[]github.WorkflowRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runBatches = batches
	s.batchIndex = 0
}

// SetJobs registers the jobs returned for one workflow run.
func (s *ActionsServer) SetJobs(runID int64, jobs []github.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobsByRun[runID] = jobs
}

// SetLogs registers the raw log text for one job. Jobs without logs
// answer 410 Gone, like GitHub does once retention expires.
func (s *ActionsServer) SetLogs(jobID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logsByJob[jobID] = text
}

// SetCheckRuns registers the check runs returned for any commit.
func (s *ActionsServer) SetCheckRuns(checks []github.CheckRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkRuns = checks
}

// SetBranchHead registers a branch's head commit SHA.
func (s *ActionsServer) SetBranchHead(branch, sha string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branchHeads[branch] = sha
}

// SetPullRequest registers the head ref resolved for one PR number.
func (s *ActionsServer) SetPullRequest(number int, ref github.PullRequestRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pullRequests[number] = ref
}

// RequireToken makes the server reject requests whose bearer token does
// not match, the way GitHub answers a bad credential.
func (s *ActionsServer) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requiredToken = token
}

// FailNext makes the next n requests answer with the given status code
// before normal serving resumes.
func (s *ActionsServer) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRemaining = n
	s.failStatus = status
}

// RateLimitNext makes the next n requests answer like an exhausted
// primary rate limit.
func (s *ActionsServer) RateLimitNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimitLeft = n
}

// RequestCount reports how many requests reached the server, including
// ones answered by scripted failures.
func (s *ActionsServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// RunsRequestCount reports how many workflow-runs listings were served.
func (s *ActionsServer) RunsRequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runsRequests
}

// LastRunsQuery returns the query string of the most recent runs request.
func (s *ActionsServer) LastRunsQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunsQuery
}

// RerunRuns returns the run IDs whose failed jobs were re-run, in order.
func (s *ActionsServer) RerunRuns() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.rerunRuns...)
}

// gate applies token checks and scripted failures. It reports whether
// the request was already answered.
func (s *ActionsServer) gate(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	if s.requiredToken != "" && r.Header.Get("Authorization") != "Bearer "+s.requiredToken {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
		return true
	}
	if s.rateLimitLeft > 0 {
		s.rateLimitLeft--
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
		return true
	}
	if s.failRemaining > 0 {
		s.failRemaining--
		w.WriteHeader(s.failStatus)
		fmt.Fprint(w, http.StatusText(s.failStatus))
		return true
	}
	return false
}

func (s *ActionsServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	s.mu.Lock()
	s.runsRequests++
	s.lastRunsQuery = r.URL.Query()
	var runs []github.WorkflowRun
	if len(s.runBatches) > 0 {
		runs = s.runBatches[s.batchIndex]
		if s.batchIndex < len(s.runBatches)-1 {
			s.batchIndex++
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]interface{}{
		"total_count":   len(runs),
		"workflow_runs": runs,
	})
}

func (s *ActionsServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	runID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	jobs := s.jobsByRun[runID]
	s.mu.Unlock()

	writeJSON(w, map[string]interface{}{
		"total_count": len(jobs),
		"jobs":        jobs,
	})
}

func (s *ActionsServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	jobID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, jobs := range s.jobsByRun {
		for _, job := range jobs {
			if job.ID == jobID {
				writeJSON(w, job)
				return
			}
		}
	}
	http.NotFound(w, r)
}

func (s *ActionsServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	jobID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	text, ok := s.logsByJob[jobID]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusGone)
		fmt.Fprint(w, `{"message": "Gone"}`)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, text)
}

func (s *ActionsServer) handleCheckRuns(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	s.mu.Lock()
	checks := s.checkRuns
	s.mu.Unlock()

	writeJSON(w, map[string]interface{}{
		"total_count": len(checks),
		"check_runs":  checks,
	})
}

func (s *ActionsServer) handleBranch(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	branch := r.PathValue("branch")
	s.mu.Lock()
	sha, ok := s.branchHeads[branch]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]interface{}{
		"name":   branch,
		"commit": map[string]interface{}{"sha": sha},
	})
}

func (s *ActionsServer) handleRerun(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	runID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.rerunRuns = append(s.rerunRuns, runID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

func (s *ActionsServer) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.gate(w, r) {
		return
	}

	var req struct {
		Variables struct {
			Owner  string `json:"owner"`
			Name   string `json:"name"`
			Number int    `json:"number"`
		} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	ref, ok := s.pullRequests[req.Variables.Number]
	s.mu.Unlock()

	// An unknown number answers with an empty head, which the client
	// reports as not found.
	if !ok {
		ref = github.PullRequestRef{}
	}

	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"pullRequest": map[string]interface{}{
					"number":      ref.Number,
					"headRefOid":  ref.HeadSHA,
					"headRefName": ref.HeadRefName,
				},
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
