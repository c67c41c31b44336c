// Package httpapi exposes the read-only query surface over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
	"github.com/issuescope/issuescope/internal/core/ports/driving"
	"github.com/issuescope/issuescope/internal/logger"
)

// Server answers search and issue lookups over HTTP. It is read-only;
// ingestion stays on the CLI and scheduler.
type Server struct {
	search driving.SearchService
	store  driven.IssueStore
	sync   driving.SyncOrchestrator // optional; nil when serving read-only
	repo   string
}

// NewServer creates an HTTP API server. sync may be nil.
func NewServer(
	search driving.SearchService,
	store driven.IssueStore,
	sync driving.SyncOrchestrator,
	repo string,
) *Server {
	return &Server{
		search: search,
		store:  store,
		sync:   sync,
		repo:   repo,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/issues", s.handleList)
	mux.HandleFunc("GET /api/issues/{number}", s.handleGet)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := s.search.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query must not be empty"})
			return
		}
		logger.Error("Search failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}

	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	issues, err := s.store.List(r.Context(), s.repo)
	if err != nil {
		logger.Error("List failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "list failed"})
		return
	}

	if issues == nil {
		issues = []domain.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(strings.TrimSpace(r.PathValue("number")))
	if err != nil || number <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid issue number"})
		return
	}

	issue, err := s.store.Get(r.Context(), s.repo, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "issue not found"})
			return
		}
		logger.Error("Get failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.sync == nil {
		writeJSON(w, http.StatusOK, driving.SyncStatus{Repo: s.repo})
		return
	}
	writeJSON(w, http.StatusOK, s.sync.Status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to encode response: %v", err)
	}
}
