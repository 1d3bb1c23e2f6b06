package ticker

import (
	"context"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/ingestion"
	"github.com/Helper-Yoon/chat-analyzer/internal/period"
	"github.com/Helper-Yoon/chat-analyzer/internal/runs"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// Ticker periodically analyses the stored source over the trailing days,
// ending yesterday in the configured location
type Ticker struct {
	runs     *runs.Service
	profiles *config.ProfileStore
	source   ingestion.TableSource
	interval time.Duration
	lookback int
	loc      *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// NewTicker creates a new Ticker
func NewTicker(svc *runs.Service, profiles *config.ProfileStore, source ingestion.TableSource, cfg *config.Config, logger zerolog.Logger) *Ticker {
	return &Ticker{
		runs:     svc,
		profiles: profiles,
		source:   source,
		interval: cfg.ScheduleInterval,
		lookback: cfg.ScheduleLookbackDays,
		loc:      cfg.Location,
		now:      time.Now,
		logger:   logger.With().Str("component", "ticker").Logger(),
	}
}

// Start runs an analysis every interval until ctx is cancelled
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info().
		Dur("interval", t.interval).
		Int("lookback_days", t.lookback).
		Msg("ticker started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("ticker stopped")
			return

		case <-ticker.C:
			result, err := t.RunOnce(ctx)
			if err != nil {
				t.runs.RecordError("scheduled")
				t.logger.Error().Err(err).Msg("scheduled analysis failed")
				continue
			}
			t.logger.Info().
				Str("run_id", result.RunID).
				Str("status", string(result.Status)).
				Int("agents", len(result.Agents.Summary)).
				Msg("scheduled analysis completed")
		}
	}
}

// RunOnce analyses the trailing window ending yesterday
func (t *Ticker) RunOnce(ctx context.Context) (*types.Result, error) {
	window, err := TrailingWindow(t.now(), t.lookback, t.loc)
	if err != nil {
		return nil, err
	}
	params, err := runs.Params(t.profiles.Get(), window, nil, nil)
	if err != nil {
		return nil, err
	}
	return t.runs.Execute(ctx, t.source, params)
}

// TrailingWindow covers the days full days before now's calendar day
func TrailingWindow(now time.Time, days int, loc *time.Location) (period.Window, error) {
	if days < 1 {
		days = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	last := now.In(loc).AddDate(0, 0, -1)
	return period.NewWindow(last.AddDate(0, 0, -(days-1)), last, loc)
}
