package api

import (
	"encoding/json"
	"net/http"

	"github.com/Helper-Yoon/chat-analyzer/internal/cache"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RunsHandler serves recently completed runs from the run cache
type RunsHandler struct {
	cache  *cache.RunCache
	logger zerolog.Logger
}

// NewRunsHandler creates a new RunsHandler
func NewRunsHandler(runCache *cache.RunCache, logger zerolog.Logger) *RunsHandler {
	return &RunsHandler{
		cache:  runCache,
		logger: logger.With().Str("component", "runs_handler").Logger(),
	}
}

// List returns the cached runs, newest first
// GET /api/runs
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.cache.List())
}

// Get returns one cached run as JSON or as a workbook download
// GET /api/runs/{runId}?format=json|xlsx
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runId")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "runId is required")
		return
	}

	format := formatOr(r.URL.Query().Get("format"), formatJSON)
	if format != formatJSON && format != formatXLSX {
		writeError(w, http.StatusBadRequest, "bad_request", "format must be json or xlsx")
		return
	}

	result, ok := h.cache.Get(runID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "run not found or evicted")
		return
	}

	writeResult(w, result, format, h.logger)
}
