package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(":0", t.TempDir(), nil)
}

// waitForState polls until the job reaches a terminal state.
func waitForState(t *testing.T, s *Server, jobID string, want JobState) Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, exists := s.jobManager.Snapshot(jobID)
		if !exists {
			t.Fatalf("job %s disappeared", jobID)
		}
		if job.State == want {
			return job
		}
		if job.State == StateFailed && want != StateFailed {
			t.Fatalf("job failed: %s", job.Error)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached state %s", jobID, want)
	return Job{}
}

func TestServer_CreateJob(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if job.ID == "" {
		t.Error("job ID should not be empty")
	}
	if job.State != StatePending && job.State != StateRunning {
		t.Errorf("state = %s, want pending or running", job.State)
	}

	waitForState(t, s, job.ID, StateCompleted)
}

func TestServer_CreateJob_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", "{not json"},
		{"missing function", `{"optimizer":"genetic"}`},
		{"unknown function", `{"function":"himmelblau"}`},
		{"bad dimensions", `{"function":"goldstein-price","dimensions":7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.handleCreateJob(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestServer_CreateJob_Defaults(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs",
		strings.NewReader(`{"function":"six-hump-camel","generations":5,"populationSize":10}`))
	w := httptest.NewRecorder()
	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var job Job
	json.NewDecoder(w.Body).Decode(&job)

	if job.Config.Optimizer != "genetic" {
		t.Errorf("default optimizer = %s, want genetic", job.Config.Optimizer)
	}
	// Fixed-dimension functions get their native dimensionality
	if job.Config.Dimensions != 2 {
		t.Errorf("default dimensions = %d, want 2", job.Config.Dimensions)
	}

	waitForState(t, s, job.ID, StateCompleted)
}

// A JSON body carrying rate fields set to zero must run with those exact
// rates, not the optimizer defaults. With mutation and crossover both at
// zero the population never changes, so the best cost equals the initial
// cost after any number of generations.
func TestServer_CreateJob_ExplicitZeroRates(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs",
		strings.NewReader(`{"function":"sphere","optimizer":"genetic","dimensions":2,"generations":5,"populationSize":10,"seed":42,"mutationRate":0,"crossoverRate":0}`))
	w := httptest.NewRecorder()
	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var job Job
	json.NewDecoder(w.Body).Decode(&job)

	if job.Config.MutationRate == nil || *job.Config.MutationRate != 0 {
		t.Fatalf("MutationRate = %v, want explicit 0", job.Config.MutationRate)
	}
	if job.Config.CrossoverRate == nil || *job.Config.CrossoverRate != 0 {
		t.Fatalf("CrossoverRate = %v, want explicit 0", job.Config.CrossoverRate)
	}

	done := waitForState(t, s, job.ID, StateCompleted)
	if done.BestCost != done.InitialCost {
		t.Errorf("BestCost = %g, InitialCost = %g: zero rates should freeze the population",
			done.BestCost, done.InitialCost)
	}
}

func TestServer_ListJobs(t *testing.T) {
	s := newTestServer(t)

	s.jobManager.CreateJob(testConfig())
	s.jobManager.CreateJob(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	s.handleListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var jobs []Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("listed %d jobs, want 2", len(jobs))
	}
}

func TestServer_GetJobStatus(t *testing.T) {
	s := newTestServer(t)
	job := s.jobManager.CreateJob(testConfig())

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/status", job.ID), nil)
	w := httptest.NewRecorder()
	s.handleGetJobStatus(w, req, job.ID)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["id"] != job.ID {
		t.Error("response should contain job ID")
	}
	if response["state"] != string(StatePending) {
		t.Errorf("state = %v, want pending", response["state"])
	}

	w = httptest.NewRecorder()
	s.handleGetJobStatus(w, req, "nonexistent")
	if w.Code != http.StatusNotFound {
		t.Errorf("status for missing job = %d, want 404", w.Code)
	}
}

func TestServer_Trajectory(t *testing.T) {
	s := newTestServer(t)
	job := s.jobManager.CreateJob(testConfig())

	// Before any trace exists
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/trajectory", job.ID), nil)
	s.handleGetTrajectory(w, req, job.ID)
	if w.Code != http.StatusNotFound {
		t.Errorf("status before run = %d, want 404", w.Code)
	}

	if err := runJob(context.Background(), s.jobManager, nil, s.baseDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	w = httptest.NewRecorder()
	s.handleGetTrajectory(w, req, job.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var response struct {
		JobID  string `json:"jobId"`
		Points []struct {
			Generation int     `json:"generation"`
			BestCost   float64 `json:"bestCost"`
		} `json:"points"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.JobID != job.ID {
		t.Errorf("jobId = %s, want %s", response.JobID, job.ID)
	}
	if len(response.Points) != testConfig().Generations {
		t.Errorf("points = %d, want %d", len(response.Points), testConfig().Generations)
	}
	for i := 1; i < len(response.Points); i++ {
		if response.Points[i].BestCost > response.Points[i-1].BestCost {
			t.Errorf("best cost increased at generation %d", i)
		}
	}

	// The completed trajectory should now be cached
	if _, ok := s.traceCache.Get(job.ID); !ok {
		t.Error("completed trajectory not cached")
	}

	// Serve again from cache
	w = httptest.NewRecorder()
	s.handleGetTrajectory(w, req, job.ID)
	if w.Code != http.StatusOK {
		t.Errorf("cached status = %d, want 200", w.Code)
	}
}

func TestServer_Plot(t *testing.T) {
	s := newTestServer(t)
	job := s.jobManager.CreateJob(testConfig())

	if err := runJob(context.Background(), s.jobManager, nil, s.baseDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/plot.png", job.ID), nil)
	w := httptest.NewRecorder()
	s.handleGetPlot(w, req, job.ID)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %s, want image/png", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("response is not a PNG")
	}
}

func TestServer_ListFunctionsAndOptimizers(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.handleListFunctions(w, httptest.NewRequest(http.MethodGet, "/api/v1/functions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("functions status = %d, want 200", w.Code)
	}
	var functions []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&functions); err != nil {
		t.Fatalf("failed to decode functions: %v", err)
	}
	if len(functions) == 0 {
		t.Error("no functions listed")
	}

	w = httptest.NewRecorder()
	s.handleListOptimizers(w, httptest.NewRequest(http.MethodGet, "/api/v1/optimizers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("optimizers status = %d, want 200", w.Code)
	}
	var optimizers []string
	if err := json.NewDecoder(w.Body).Decode(&optimizers); err != nil {
		t.Fatalf("failed to decode optimizers: %v", err)
	}
	found := false
	for _, name := range optimizers {
		if name == "genetic" {
			found = true
		}
	}
	if !found {
		t.Errorf("genetic missing from optimizer list: %v", optimizers)
	}
}

func TestServer_JobsWithID_Routing(t *testing.T) {
	s := newTestServer(t)
	job := s.jobManager.CreateJob(testConfig())

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/jobs/", http.StatusBadRequest},
		{fmt.Sprintf("/api/v1/jobs/%s", job.ID), http.StatusOK},
		{fmt.Sprintf("/api/v1/jobs/%s/status", job.ID), http.StatusOK},
		{fmt.Sprintf("/api/v1/jobs/%s/unknown", job.ID), http.StatusNotFound},
		{"/api/v1/jobs/nonexistent/status", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		w := httptest.NewRecorder()
		s.handleJobsWithID(w, req)
		if w.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestServer_Index(t *testing.T) {
	s := newTestServer(t)
	s.jobManager.CreateJob(testConfig())

	w := httptest.NewRecorder()
	s.handleIndex(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "optilab") {
		t.Error("index page missing title")
	}
	if !strings.Contains(w.Body.String(), "sphere") {
		t.Error("index page missing job row")
	}

	w = httptest.NewRecorder()
	s.handleIndex(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown path = %d, want 404", w.Code)
	}
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t)
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
