package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/ingestion"
	"github.com/Helper-Yoon/chat-analyzer/internal/loader"
	"github.com/Helper-Yoon/chat-analyzer/internal/period"
	"github.com/Helper-Yoon/chat-analyzer/internal/report"
	"github.com/Helper-Yoon/chat-analyzer/internal/runs"
	"github.com/Helper-Yoon/chat-analyzer/internal/storage"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/rs/zerolog"
)

const (
	formatXLSX = "xlsx"
	formatJSON = "json"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AnalyzeHandler runs the scoring engine over uploaded, posted or stored tables
type AnalyzeHandler struct {
	runs      *runs.Service
	profiles  *config.ProfileStore
	source    ingestion.TableSource
	location  *time.Location
	maxUpload int64
	logger    zerolog.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler
func NewAnalyzeHandler(svc *runs.Service, profiles *config.ProfileStore, source ingestion.TableSource, cfg *config.Config, logger zerolog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		runs:      svc,
		profiles:  profiles,
		source:    source,
		location:  cfg.Location,
		maxUpload: cfg.MaxUploadBytes,
		logger:    logger.With().Str("component", "analyze_handler").Logger(),
	}
}

// runRequest is the part of a request shared by every analyze endpoint.
// Nil name lists fall back to the profile.
type runRequest struct {
	Start      string
	End        string
	Managers   []string
	Exclusions []string
	Format     string
}

// tablesRequest is the body of POST /api/analyze/tables
type tablesRequest struct {
	Tables     []types.RawTable `json:"tables"`
	Start      string           `json:"start"`
	End        string           `json:"end"`
	Managers   *string          `json:"managers,omitempty"`
	Exclusions *string          `json:"exclusions,omitempty"`
}

// Upload analyses a workbook or JSON document sent as multipart form data
// POST /api/analyze
func (h *AnalyzeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, http.StatusBadRequest, "bad_request", "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}

	var tables []types.RawTable
	if strings.EqualFold(filepath.Ext(header.Filename), ".json") {
		tables, err = loader.ReadJSON(bytes.NewReader(data))
	} else {
		tables, err = loader.ReadWorkbook(bytes.NewReader(data))
	}
	if err != nil {
		h.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unreadable input %q: %v", header.Filename, err))
		return
	}

	req := runRequest{
		Start:  r.FormValue("start"),
		End:    r.FormValue("end"),
		Format: formatOr(r.FormValue("format"), formatXLSX),
	}
	if _, ok := r.MultipartForm.Value["managers"]; ok {
		req.Managers = overrideNames(r.FormValue("managers"))
	}
	if _, ok := r.MultipartForm.Value["exclusions"]; ok {
		req.Exclusions = overrideNames(r.FormValue("exclusions"))
	}

	h.run(r.Context(), w, ingestion.StaticSource(tables), req)
}

// Tables analyses tables posted as JSON
// POST /api/analyze/tables
func (h *AnalyzeHandler) Tables(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	var body tablesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	req := runRequest{
		Start:  body.Start,
		End:    body.End,
		Format: formatOr(r.URL.Query().Get("format"), formatJSON),
	}
	if body.Managers != nil {
		req.Managers = overrideNames(*body.Managers)
	}
	if body.Exclusions != nil {
		req.Exclusions = overrideNames(*body.Exclusions)
	}

	h.run(r.Context(), w, ingestion.StaticSource(body.Tables), req)
}

// Source analyses the tables held by the configured store
// POST /api/analyze/source?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *AnalyzeHandler) Source(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := runRequest{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Format: formatOr(q.Get("format"), formatJSON),
	}
	if q.Has("managers") {
		req.Managers = overrideNames(q.Get("managers"))
	}
	if q.Has("exclusions") {
		req.Exclusions = overrideNames(q.Get("exclusions"))
	}

	h.run(r.Context(), w, h.source, req)
}

func (h *AnalyzeHandler) run(ctx context.Context, w http.ResponseWriter, src ingestion.TableSource, req runRequest) {
	if req.Format != formatXLSX && req.Format != formatJSON {
		h.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown format %q", req.Format))
		return
	}

	window, err := period.ParseWindow(req.Start, req.End, h.location)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "invalid_period", err.Error())
		return
	}

	params, err := runs.Params(h.profiles.Get(), window, req.Managers, req.Exclusions)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "profile", "invalid scoring profile")
		return
	}

	result, err := h.runs.Execute(ctx, src, params)
	if err != nil {
		status, reason := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("analysis failed")
		}
		h.fail(w, status, reason, err.Error())
		return
	}

	writeResult(w, result, req.Format, h.logger)
}

func (h *AnalyzeHandler) fail(w http.ResponseWriter, status int, reason, message string) {
	h.runs.RecordError(reason)
	writeError(w, status, reason, message)
}

// writeResult renders a result as a workbook download or as JSON
func writeResult(w http.ResponseWriter, result *types.Result, format string, logger zerolog.Logger) {
	w.Header().Set("X-Run-ID", result.RunID)
	switch format {
	case formatXLSX:
		var buf bytes.Buffer
		if err := report.WriteWorkbook(&buf, result); err != nil {
			logger.Error().Err(err).Str("run_id", result.RunID).Msg("failed to write workbook")
			http.Error(w, "failed to write workbook", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(result.Period)))
		w.Write(buf.Bytes())
	default:
		w.Header().Set("Content-Type", "application/json")
		if err := report.WriteJSON(w, result); err != nil {
			logger.Error().Err(err).Str("run_id", result.RunID).Msg("failed to write result")
		}
	}
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":  message,
		"reason": reason,
	})
}

// classify maps an engine error to an HTTP status and a metrics reason
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrMissingRequiredDataset):
		return http.StatusBadRequest, "missing_dataset"
	case errors.Is(err, types.ErrMissingColumn):
		return http.StatusBadRequest, "missing_column"
	case errors.Is(err, types.ErrInvalidPeriod):
		return http.StatusBadRequest, "invalid_period"
	case errors.Is(err, types.ErrEmptyPeriod):
		return http.StatusUnprocessableEntity, "empty_period"
	case errors.Is(err, storage.ErrSourceDisabled):
		return http.StatusServiceUnavailable, "source_disabled"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusBadGateway, "load"
	}
}

// overrideNames parses a request name list. A present but empty list clears
// the profile default, so the result is never nil.
func overrideNames(raw string) []string {
	if names := config.SplitNames(raw); names != nil {
		return names
	}
	return []string{}
}

func formatOr(v, fallback string) string {
	if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
		return v
	}
	return fallback
}

func reportFilename(p types.Period) string {
	return fmt.Sprintf("chat-analysis_%s_%s.xlsx", p.Start.Format(period.DateLayout), p.End.Format(period.DateLayout))
}
