package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cescalante/optilab/internal/bench"
	"github.com/cescalante/optilab/internal/opt"
	"github.com/cescalante/optilab/internal/store"
	"github.com/cescalante/optilab/internal/viz"
	"github.com/patrickmn/go-cache"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	addr       string
	baseDir    string
	checkpoint store.Store
	traceCache *cache.Cache
	server     *http.Server
}

// NewServer creates a new HTTP server.
// baseDir is where job artifacts (traces) are written; checkpointStore may
// be nil to disable checkpointing.
func NewServer(addr, baseDir string, checkpointStore store.Store) *Server {
	return &Server{
		jobManager: NewJobManager(),
		addr:       addr,
		baseDir:    baseDir,
		checkpoint: checkpointStore,
		// Completed trajectories are immutable, so a short TTL only
		// bounds memory, not staleness
		traceCache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)

	mux.HandleFunc("/api/v1/functions", s.handleListFunctions)
	mux.HandleFunc("/api/v1/optimizers", s.handleListOptimizers)
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)

	handler := s.loggingMiddleware(s.corsMiddleware(mux))

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleListFunctions handles GET /api/v1/functions
func (s *Server) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type functionInfo struct {
		Name     string  `json:"name"`
		Dims     int     `json:"dims,omitempty"` // 0 means any dimensionality
		Lower    float64 `json:"lower"`
		Upper    float64 `json:"upper"`
		MinValue float64 `json:"minValue"`
	}
	var infos []functionInfo
	for _, name := range bench.Names() {
		b, _ := bench.Lookup(name)
		infos = append(infos, functionInfo{
			Name:     b.Name,
			Dims:     b.Dims,
			Lower:    b.Lower,
			Upper:    b.Upper,
			MinValue: b.MinValue,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleListOptimizers handles GET /api/v1/optimizers
func (s *Server) handleListOptimizers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, opt.Names())
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "trajectory":
		s.handleGetTrajectory(w, r, jobID)
	case parts[1] == "plot.png":
		s.handleGetPlot(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var config RunConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if config.Function == "" {
		http.Error(w, "function is required", http.StatusBadRequest)
		return
	}
	b, err := bench.Lookup(config.Function)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if config.Optimizer == "" {
		config.Optimizer = "genetic"
	}
	if config.Dimensions <= 0 {
		if b.Dims > 0 {
			config.Dimensions = b.Dims
		} else {
			config.Dimensions = 2
		}
	}
	if err := b.Validate(config.Dimensions); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if config.Generations <= 0 {
		config.Generations = 50
	}
	if config.PopulationSize <= 0 {
		config.PopulationSize = 30
	}

	job := s.jobManager.CreateJob(config)

	go runJob(context.Background(), s.jobManager, s.checkpoint, s.baseDir, job.ID)

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.Snapshot(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	eps := float64(0)
	if elapsed.Seconds() > 0 {
		eps = float64(job.Evaluations) / elapsed.Seconds()
	}

	response := map[string]interface{}{
		"id":          job.ID,
		"state":       job.State,
		"config":      job.Config,
		"bestParams":  job.BestParams,
		"bestCost":    job.BestCost,
		"initialCost": job.InitialCost,
		"generation":  job.Generation,
		"evaluations": job.Evaluations,
		"elapsed":     elapsed.Seconds(),
		"eps":         eps,
		"startTime":   job.StartTime,
		"endTime":     job.EndTime,
		"error":       job.Error,
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetTrajectory handles GET /api/v1/jobs/:id/trajectory
func (s *Server) handleGetTrajectory(w http.ResponseWriter, r *http.Request, jobID string) {
	entries, status, err := s.loadTrajectory(jobID)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobId":  jobID,
		"points": entries,
	})
}

// handleGetPlot handles GET /api/v1/jobs/:id/plot.png
func (s *Server) handleGetPlot(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.Snapshot(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	entries, status, err := s.loadTrajectory(jobID)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	best := make([]float64, len(entries))
	mean := make([]float64, len(entries))
	for i, e := range entries {
		best[i] = e.BestCost
		mean[i] = e.MeanCost
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")

	title := fmt.Sprintf("%s / %s", job.Config.Function, job.Config.Optimizer)
	if err := viz.WritePNG(w, title, viz.Series{Name: "best", Values: best}, viz.Series{Name: "mean", Values: mean}); err != nil {
		slog.Error("Failed to render plot", "jobID", jobID, "error", err)
	}
}

// loadTrajectory reads a job's trace, consulting the cache first.
// Only terminal jobs are cached since running jobs keep appending.
func (s *Server) loadTrajectory(jobID string) ([]store.TraceEntry, int, error) {
	job, exists := s.jobManager.Snapshot(jobID)
	if !exists {
		return nil, http.StatusNotFound, fmt.Errorf("job not found")
	}

	if cached, ok := s.traceCache.Get(jobID); ok {
		return cached.([]store.TraceEntry), http.StatusOK, nil
	}

	reader, err := store.NewTraceReader(s.baseDir, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, http.StatusNotFound, fmt.Errorf("no trajectory yet")
	} else if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if len(entries) == 0 {
		return nil, http.StatusNotFound, fmt.Errorf("no trajectory yet")
	}

	if job.State == StateCompleted || job.State == StateFailed || job.State == StateCancelled {
		s.traceCache.Set(jobID, entries, cache.DefaultExpiration)
	}
	return entries, http.StatusOK, nil
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
