package runs

import (
	"context"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/cache"
	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/engine"
	"github.com/Helper-Yoon/chat-analyzer/internal/ingestion"
	"github.com/Helper-Yoon/chat-analyzer/internal/notify"
	"github.com/Helper-Yoon/chat-analyzer/internal/period"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/rs/zerolog"
)

const (
	// number of top agents carried by the run_completed event
	announceTopAgents = 5
	notifyTimeout     = 5 * time.Second
)

// Recorder receives run outcomes
type Recorder interface {
	RecordRun(result *types.Result)
	RecordRunError(reason string)
	RecordNotification(err error)
}

// Publisher pushes run_completed events to live subscribers
type Publisher interface {
	RunCompleted(event types.RunCompleted)
}

// Service executes engine runs and distributes finished results to the run
// cache, live subscribers and the message broker
type Service struct {
	engine    *engine.Engine
	cache     *cache.RunCache
	publisher Publisher
	notifier  notify.Notifier
	recorder  Recorder
	logger    zerolog.Logger
}

// NewService creates a new Service
func NewService(eng *engine.Engine, runCache *cache.RunCache, publisher Publisher, notifier notify.Notifier, recorder Recorder, logger zerolog.Logger) *Service {
	return &Service{
		engine:    eng,
		cache:     runCache,
		publisher: publisher,
		notifier:  notifier,
		recorder:  recorder,
		logger:    logger.With().Str("component", "runs").Logger(),
	}
}

// Execute runs the engine over src. Failed runs are not recorded here since
// only the caller knows how to classify the failure.
func (s *Service) Execute(ctx context.Context, src ingestion.TableSource, p engine.Params) (*types.Result, error) {
	result, err := s.engine.Run(ctx, src, p)
	if err != nil {
		return nil, err
	}

	s.recorder.RecordRun(result)
	s.cache.Put(result)

	event := notify.NewRunCompleted(result, announceTopAgents)
	s.publisher.RunCompleted(event)

	// The request context may already be done by the time the broker answers
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	err = s.notifier.Notify(nctx, event)
	if err != nil {
		s.logger.Warn().Err(err).Str("run_id", result.RunID).Msg("failed to publish run notification")
	}
	s.recorder.RecordNotification(err)

	s.logger.Debug().
		Str("run_id", result.RunID).
		Str("status", string(result.Status)).
		Int("cached_runs", s.cache.Size()).
		Msg("run distributed")

	return result, nil
}

// RecordError counts a failed run under reason
func (s *Service) RecordError(reason string) {
	s.recorder.RecordRunError(reason)
}

// Cache returns the run cache
func (s *Service) Cache() *cache.RunCache {
	return s.cache
}

// Params builds engine parameters from a profile. Non-nil name lists
// override the profile's.
func Params(profile *config.Profile, window period.Window, managers, excluded []string) (engine.Params, error) {
	columns, err := profile.Columns()
	if err != nil {
		return engine.Params{}, err
	}

	p := engine.Params{
		Window:      window,
		Managers:    profile.Managers,
		Excluded:    profile.Excluded,
		Scoring:     profile.Scoring,
		RankColumns: columns,
		RankSize:    profile.RankSize,
	}
	if managers != nil {
		p.Managers = managers
	}
	if excluded != nil {
		p.Excluded = excluded
	}
	return p, nil
}
