// Package metrics exposes Prometheus metrics for scoring runs, HTTP traffic
// and WebSocket clients
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Run metrics
	RunsTotal      *prometheus.CounterVec
	RunErrorsTotal *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	StageRecords   *prometheus.GaugeVec
	StageFailures  *prometheus.CounterVec
	ScoredAgents   prometheus.Gauge

	// WebSocket metrics
	WebSocketConnectionsTotal prometheus.Counter
	WebSocketActive           prometheus.Gauge
	WebSocketMessagesTotal    prometheus.Counter
	WebSocketErrorsTotal      prometheus.Counter

	// Notification metrics
	NotificationsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	mu     sync.Mutex
	stages map[string]time.Time // runID/stage -> start
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the process-wide metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates metrics registered on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stages:   make(map[string]time.Time),

		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_analyzer_runs_total",
			Help: "Completed scoring runs by status",
		}, []string{"status"}),
		RunErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_analyzer_run_errors_total",
			Help: "Failed scoring runs by reason",
		}, []string{"reason"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_analyzer_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		StageRecords: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chat_analyzer_stage_records",
			Help: "Records produced by the last completed stage",
		}, []string{"stage"}),
		StageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_analyzer_stage_failures_total",
			Help: "Pipeline stages that ended a run with an error",
		}, []string{"stage"}),
		ScoredAgents: f.NewGauge(prometheus.GaugeOpts{
			Name: "chat_analyzer_scored_agents",
			Help: "Agents scored by the last run",
		}),

		WebSocketConnectionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_analyzer_websocket_connections_total",
			Help: "WebSocket connections accepted",
		}),
		WebSocketActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "chat_analyzer_websocket_active_connections",
			Help: "Currently connected WebSocket clients",
		}),
		WebSocketMessagesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_analyzer_websocket_messages_total",
			Help: "Messages broadcast to WebSocket clients",
		}),
		WebSocketErrorsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_analyzer_websocket_errors_total",
			Help: "WebSocket read and write errors",
		}),

		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_analyzer_notifications_total",
			Help: "Run notifications by outcome",
		}, []string{"result"}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_analyzer_http_requests_total",
			Help: "HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_analyzer_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// Registry returns the registry the metrics live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StageStarted remembers when a stage began
func (m *Metrics) StageStarted(runID, stage string) {
	m.mu.Lock()
	m.stages[runID+"/"+stage] = time.Now()
	m.mu.Unlock()
}

// StageCompleted records the stage duration and output size
func (m *Metrics) StageCompleted(runID, stage string, recordCount int) {
	key := runID + "/" + stage
	m.mu.Lock()
	started, ok := m.stages[key]
	delete(m.stages, key)
	m.mu.Unlock()

	if ok {
		m.StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
	}
	m.StageRecords.WithLabelValues(stage).Set(float64(recordCount))
}

// StageFailed counts the failure and forgets every pending stage of the run
func (m *Metrics) StageFailed(runID, stage string, _ error) {
	prefix := runID + "/"
	m.mu.Lock()
	for key := range m.stages {
		if strings.HasPrefix(key, prefix) {
			delete(m.stages, key)
		}
	}
	m.mu.Unlock()

	m.StageFailures.WithLabelValues(stage).Inc()
}

// RecordRun counts a finished run
func (m *Metrics) RecordRun(result *types.Result) {
	m.RunsTotal.WithLabelValues(string(result.Status)).Inc()
	m.ScoredAgents.Set(float64(len(result.Agents.Summary)))
}

// RecordRunError counts a failed run
func (m *Metrics) RecordRunError(reason string) {
	m.RunErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.WebSocketConnectionsTotal.Inc()
	m.WebSocketActive.Inc()
}

// RecordWebSocketDisconnect decrements the active connection gauge
func (m *Metrics) RecordWebSocketDisconnect() {
	m.WebSocketActive.Dec()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.WebSocketMessagesTotal.Inc()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.WebSocketErrorsTotal.Inc()
}

// RecordNotification counts a publish attempt
func (m *Metrics) RecordNotification(err error) {
	if err != nil {
		m.NotificationsTotal.WithLabelValues("error").Inc()
		return
	}
	m.NotificationsTotal.WithLabelValues("ok").Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
