package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/api"
	"github.com/Helper-Yoon/chat-analyzer/internal/cache"
	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/engine"
	"github.com/Helper-Yoon/chat-analyzer/internal/metrics"
	"github.com/Helper-Yoon/chat-analyzer/internal/notify"
	"github.com/Helper-Yoon/chat-analyzer/internal/runs"
	"github.com/Helper-Yoon/chat-analyzer/internal/storage"
	"github.com/Helper-Yoon/chat-analyzer/internal/ticker"
	"github.com/Helper-Yoon/chat-analyzer/internal/websocket"
	"github.com/Helper-Yoon/chat-analyzer/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("source_mode", string(cfg.SourceMode)).
		Str("timezone", cfg.Location.String()).
		Msg("starting chat analyzer server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load scoring profile
	profile := config.DefaultProfile()
	if cfg.ProfilePath != "" {
		profile, err = config.LoadProfile(cfg.ProfilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load scoring profile")
		}
	}
	profiles := config.NewProfileStore(profile)
	if cfg.ProfilePath != "" {
		go func() {
			if err := config.WatchProfile(ctx, cfg.ProfilePath, log.Logger, profiles.Set); err != nil {
				log.Error().Err(err).Msg("profile watcher stopped")
			}
		}()
	}

	m := metrics.Get()

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger, m)
	go hub.Run(ctx)

	source, err := storage.NewSource(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize stored source")
	}

	notifier, err := notify.New(cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize run notifier")
	}
	defer notifier.Close()

	eng := engine.New(log.Logger, engine.WithObserver(engine.MultiObserver{
		engine.NewLogObserver(log.Logger),
		m,
		hub,
	}))

	runCache := cache.NewRunCache(cfg.RunCacheSize)
	svc := runs.NewService(eng, runCache, hub, notifier, m, log.Logger)

	// Scheduled analysis of the stored source
	if cfg.ScheduleInterval > 0 && cfg.SourceMode != config.SourceNone {
		tickerService := ticker.NewTicker(svc, profiles, source, cfg, log.Logger)
		go tickerService.Start(ctx)
	}

	r := newRouter(routerDeps{
		cfg:     cfg,
		metrics: m,
		ws:      websocket.NewHandler(hub, cfg, log.Logger),
		analyze: api.NewAnalyzeHandler(svc, profiles, source, cfg, log.Logger),
		runs:    api.NewRunsHandler(runCache, log.Logger),
		profile: api.NewProfileHandler(profiles, log.Logger),
		logger:  log.Logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stops the hub, the ticker and the profile watcher
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

type routerDeps struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	ws      http.Handler
	analyze *api.AnalyzeHandler
	runs    *api.RunsHandler
	profile *api.ProfileHandler
	logger  zerolog.Logger
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(d.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(d.cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", d.metrics.Handler())
	r.Get("/ws", d.ws.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Metrics(d.metrics))
		r.Get("/profile", d.profile.GetProfile)
		r.Post("/analyze", d.analyze.Upload)
		r.Post("/analyze/tables", d.analyze.Tables)
		r.Post("/analyze/source", d.analyze.Source)
		r.Get("/runs", d.runs.List)
		r.Get("/runs/{runId}", d.runs.Get)
	})

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"chat-analyzer"}`)
}
