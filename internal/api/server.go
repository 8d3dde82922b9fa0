// Package api exposes a read-only HTTP view of the resolver: the last
// pass report, its conflicts, and the install log. It exists for
// dashboards and scripts; all mutation happens through the CLI, except
// for triggering a new pass.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/depo-mc/depo/pkg/download"
	"github.com/depo-mc/depo/pkg/resolve"
)

// RunFunc executes one resolution pass.
type RunFunc func(ctx context.Context) (*resolve.Report, error)

// Server holds the latest pass report and serves it over HTTP.
type Server struct {
	logger     *log.Logger
	run        RunFunc
	installLog *download.InstallLog

	mu      sync.Mutex
	last    *resolve.Report
	running bool
}

// NewServer creates a Server. run is invoked by POST /resolve; pass nil
// to disable remote passes.
func NewServer(logger *log.Logger, run RunFunc, installLog *download.InstallLog) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{logger: logger, run: run, installLog: installLog}
}

// SetReport stores the report served by /status and /conflicts.
func (s *Server) SetReport(r *resolve.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = r
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", s.handleStatus)
	r.Get("/conflicts", s.handleConflicts)
	r.Get("/log", s.handleLog)
	r.Post("/resolve", s.handleResolve)
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pass has run yet"})
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (s *Server) handleConflicts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pass has run yet"})
		return
	}
	writeJSON(w, http.StatusOK, last.Conflicts)
}

func (s *Server) handleLog(w http.ResponseWriter, _ *http.Request) {
	if s.installLog == nil {
		writeJSON(w, http.StatusOK, []download.Entry{})
		return
	}
	entries, err := s.installLog.Entries()
	if err != nil {
		s.logger.Error("reading install log", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read install log"})
		return
	}
	if entries == nil {
		entries = []download.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleResolve triggers one pass. Passes are single-flight: a second
// request while one is running gets a 409.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if s.run == nil {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "resolution is disabled"})
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a pass is already running"})
		return
	}
	s.running = true
	s.mu.Unlock()

	report, err := s.run(r.Context())

	s.mu.Lock()
	s.running = false
	if report != nil {
		s.last = report
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("resolution pass failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
