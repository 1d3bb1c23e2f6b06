package engine

import (
	"github.com/rs/zerolog"
)

// Pipeline stage names reported to observers
const (
	StageLoad          = "load"
	StageNormalize     = "normalize"
	StagePeriodFilter  = "period_filter"
	StageJoin          = "join"
	StageClassify      = "classify"
	StageEligibility   = "eligibility"
	StageScoreAgents   = "score_agents"
	StageScoreManagers = "score_managers"
	StageRank          = "rank"
)

// Observer receives stage progress of a run. Implementations must not block.
type Observer interface {
	StageStarted(runID, stage string)
	StageCompleted(runID, stage string, recordCount int)
	// StageFailed is the last event of a run that ends with an error
	StageFailed(runID, stage string, err error)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) StageStarted(string, string)        {}
func (NopObserver) StageCompleted(string, string, int) {}
func (NopObserver) StageFailed(string, string, error)  {}

// LogObserver writes stage progress at debug level
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates a LogObserver
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger.With().Str("component", "pipeline").Logger()}
}

func (o *LogObserver) StageStarted(runID, stage string) {
	o.logger.Debug().Str("run_id", runID).Str("stage", stage).Msg("stage started")
}

func (o *LogObserver) StageCompleted(runID, stage string, recordCount int) {
	o.logger.Debug().
		Str("run_id", runID).
		Str("stage", stage).
		Int("records", recordCount).
		Msg("stage completed")
}

func (o *LogObserver) StageFailed(runID, stage string, err error) {
	o.logger.Warn().Err(err).Str("run_id", runID).Str("stage", stage).Msg("stage failed")
}

// MultiObserver fans events out to several observers in order
type MultiObserver []Observer

func (m MultiObserver) StageStarted(runID, stage string) {
	for _, o := range m {
		o.StageStarted(runID, stage)
	}
}

func (m MultiObserver) StageCompleted(runID, stage string, recordCount int) {
	for _, o := range m {
		o.StageCompleted(runID, stage, recordCount)
	}
}

func (m MultiObserver) StageFailed(runID, stage string, err error) {
	for _, o := range m {
		o.StageFailed(runID, stage, err)
	}
}
