package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/api"
	"github.com/Helper-Yoon/chat-analyzer/internal/cache"
	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/engine"
	"github.com/Helper-Yoon/chat-analyzer/internal/metrics"
	"github.com/Helper-Yoon/chat-analyzer/internal/notify"
	"github.com/Helper-Yoon/chat-analyzer/internal/runs"
	"github.com/Helper-Yoon/chat-analyzer/internal/storage"
	"github.com/Helper-Yoon/chat-analyzer/internal/websocket"
	"github.com/rs/zerolog"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	// Check status code
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	// Check content type
	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	// Parse response body
	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	// Check response fields
	if response["status"] != "ok" {
		t.Errorf("expected status ok, got %s", response["status"])
	}
	if response["service"] != "chat-analyzer" {
		t.Errorf("expected service chat-analyzer, got %s", response["service"])
	}
}

func TestHealthHandlerMethods(t *testing.T) {
	tests := []struct {
		method         string
		expectedStatus int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusOK},    // Handler doesn't check method
		{http.MethodPut, http.StatusOK},     // Handler doesn't check method
		{http.MethodDelete, http.StatusOK},  // Handler doesn't check method
		{http.MethodOptions, http.StatusOK}, // Handler doesn't check method
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			rec := httptest.NewRecorder()

			healthHandler(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		Location:       time.UTC,
		MaxUploadBytes: 1 << 20,
		MaxMessageSize: 512,
	}
	logger := zerolog.Nop()
	m := metrics.New()
	hub := websocket.NewHub(logger, m)
	profiles := config.NewProfileStore(config.DefaultProfile())
	eng := engine.New(logger, engine.WithObserver(m))
	runCache := cache.NewRunCache(5)
	svc := runs.NewService(eng, runCache, hub, notify.NoopNotifier{}, m, logger)

	return newRouter(routerDeps{
		cfg:     cfg,
		metrics: m,
		ws:      websocket.NewHandler(hub, cfg, logger),
		analyze: api.NewAnalyzeHandler(svc, profiles, storage.NewNoopSource(), cfg, logger),
		runs:    api.NewRunsHandler(runCache, logger),
		profile: api.NewProfileHandler(profiles, logger),
		logger:  logger,
	})
}

func TestRouterRoutes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"profile", http.MethodGet, "/api/profile", http.StatusOK},
		{"source disabled", http.MethodPost, "/api/analyze/source?start=2025-07-01&end=2025-07-01", http.StatusServiceUnavailable},
		{"analyze wrong method", http.MethodGet, "/api/analyze", http.StatusMethodNotAllowed},
		{"runs", http.MethodGet, "/api/runs", http.StatusOK},
		{"unknown run", http.MethodGet, "/api/runs/nope", http.StatusNotFound},
		{"unknown", http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	r := testRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	r := testRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `endpoint="/api/profile"`) {
		t.Error("expected request metrics for /api/profile")
	}
}
