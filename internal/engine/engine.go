package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/ingestion"
	"github.com/Helper-Yoon/chat-analyzer/internal/join"
	"github.com/Helper-Yoon/chat-analyzer/internal/period"
	"github.com/Helper-Yoon/chat-analyzer/internal/ranking"
	"github.com/Helper-Yoon/chat-analyzer/internal/scoring"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Params are the inputs of one run besides the tables
type Params struct {
	Window      period.Window
	Managers    []string // display names analysed as the manager group
	Excluded    []string // display names removed from the agent group
	Scoring     scoring.Params
	RankColumns []ranking.Column
	RankSize    int
}

// Engine runs the scoring pipeline. It holds no state between runs and is
// safe for concurrent use.
type Engine struct {
	normalizer *ingestion.Normalizer
	observer   Observer
	newRunID   func() string
	logger     zerolog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithObserver sets the stage observer
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithRunIDs overrides run id generation
func WithRunIDs(fn func() string) Option {
	return func(e *Engine) { e.newRunID = fn }
}

// New creates a new Engine
func New(logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		normalizer: ingestion.NewNormalizer(logger),
		observer:   NopObserver{},
		newRunID:   uuid.NewString,
		logger:     logger.With().Str("component", "engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run loads the tables from src and analyses them
func (e *Engine) Run(ctx context.Context, src ingestion.TableSource, p Params) (*types.Result, error) {
	runID := e.newRunID()

	e.observer.StageStarted(runID, StageLoad)
	tables, err := src.LoadTables(ctx)
	if err != nil {
		e.observer.StageFailed(runID, StageLoad, err)
		return nil, fmt.Errorf("load tables: %w", err)
	}
	e.observer.StageCompleted(runID, StageLoad, len(tables))

	if err := ctx.Err(); err != nil {
		e.observer.StageFailed(runID, StageLoad, err)
		return nil, err
	}
	return e.analyze(runID, tables, p)
}

// Analyze runs the pipeline over tables already in memory
func (e *Engine) Analyze(tables []types.RawTable, p Params) (*types.Result, error) {
	return e.analyze(e.newRunID(), tables, p)
}

func (e *Engine) analyze(runID string, tables []types.RawTable, p Params) (*types.Result, error) {
	start := time.Now()
	log := e.logger.With().Str("run_id", runID).Logger()
	if p.RankSize <= 0 {
		p.RankSize = ranking.DefaultSize
	}
	if len(p.RankColumns) == 0 {
		p.RankColumns = ranking.DefaultColumns
	}

	e.observer.StageStarted(runID, StageNormalize)
	ds, nstats, err := e.normalizer.Normalize(tables)
	if err != nil {
		e.observer.StageFailed(runID, StageNormalize, err)
		return nil, err
	}
	e.observer.StageCompleted(runID, StageNormalize, len(ds.Messages))

	e.observer.StageStarted(runID, StagePeriodFilter)
	filtered, err := p.Window.Apply(ds)
	if err != nil {
		e.observer.StageFailed(runID, StagePeriodFilter, err)
		return nil, err
	}
	e.observer.StageCompleted(runID, StagePeriodFilter, len(filtered.Messages))

	e.observer.StageStarted(runID, StageJoin)
	dir := join.NewDirectory(ds.People)
	records, jstats := join.Join(filtered.Messages, filtered.AllConversations, dir)
	e.observer.StageCompleted(runID, StageJoin, len(records))

	log.Debug().
		Interface("duplicates", nstats.Duplicates).
		Int("unparseable_timestamps", filtered.Unparseable).
		Int("unresolved_assignee", jstats.UnresolvedAssignee).
		Int("unresolved_author", jstats.UnresolvedAuthor).
		Msg("dropped rows")

	e.observer.StageStarted(runID, StageClassify)
	records = scoring.Classify(records)
	e.observer.StageCompleted(runID, StageClassify, len(records))

	e.observer.StageStarted(runID, StageEligibility)
	decisions := scoring.Evaluate(records, p.Window.Days(), p.Scoring)
	eligible := scoring.EligibleNames(decisions)

	managers := nameSet(p.Managers)
	excluded := nameSet(p.Excluded)
	agents := make(map[string]struct{}, len(eligible))
	for name := range eligible {
		if _, ok := managers[name]; ok {
			continue
		}
		if _, ok := excluded[name]; ok {
			continue
		}
		agents[name] = struct{}{}
	}
	e.observer.StageCompleted(runID, StageEligibility, len(agents))

	result := &types.Result{
		RunID:       runID,
		Period:      p.Window.Period(),
		Eligibility: decisions,
	}

	if len(agents) == 0 {
		result.Status = types.StatusNoEligibleAgents
		log.Info().
			Int("authors", len(decisions)).
			Dur("duration", time.Since(start)).
			Msg("no eligible agents")
		return result, nil
	}
	result.Status = types.StatusScored

	e.observer.StageStarted(runID, StageScoreAgents)
	agentGroup := buildGroup(records, filtered.Conversations, dir, agents)
	result.Agents = ranking.Finalize(scoring.ScoreGroup(agentGroup, p.Scoring))
	e.observer.StageCompleted(runID, StageScoreAgents, len(result.Agents.Summary))

	e.observer.StageStarted(runID, StageScoreManagers)
	managerGroup := buildGroup(records, filtered.Conversations, dir, managers)
	result.Managers = ranking.Finalize(scoring.ScoreGroup(managerGroup, p.Scoring))
	e.observer.StageCompleted(runID, StageScoreManagers, len(result.Managers.Summary))

	e.observer.StageStarted(runID, StageRank)
	result.Rankings, err = ranking.Leaderboards(result.Agents, p.RankColumns, p.RankSize)
	if err != nil {
		e.observer.StageFailed(runID, StageRank, err)
		return nil, err
	}
	e.observer.StageCompleted(runID, StageRank, len(result.Rankings))

	log.Info().
		Int("agents", len(result.Agents.Summary)).
		Int("managers", len(result.Managers.Summary)).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("run completed")

	return result, nil
}

// buildGroup restricts records to the given authors and collects the
// in-window conversations assigned to them
func buildGroup(records []types.JoinedRecord, conversations []types.Conversation, dir join.Directory, names map[string]struct{}) scoring.Group {
	g := scoring.Group{OwnedChats: make(map[string]int)}
	for _, r := range records {
		if _, ok := names[r.AuthorName]; ok {
			g.Records = append(g.Records, r)
		}
	}

	ids := dir.IDsByName(names)
	var assignees []string
	for _, c := range conversations {
		if _, ok := ids[c.AssigneeID]; !ok {
			continue
		}
		name, _ := dir.Name(c.AssigneeID)
		g.OwnedChats[name]++
		assignees = append(assignees, name)
	}

	g.Roster = scoring.Roster(g.Records, assignees)
	return g
}

func nameSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
