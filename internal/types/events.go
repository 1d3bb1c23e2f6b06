package types

import "time"

// StageEvent is emitted by the engine when a pipeline stage starts, ends or fails
type StageEvent struct {
	Type        string    `json:"type"` // "stage_started" | "stage_completed" | "stage_failed"
	RunID       string    `json:"runId"`
	Stage       string    `json:"stage"`
	RecordCount int       `json:"recordCount,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunCompleted is published once a run finishes
type RunCompleted struct {
	Type      string         `json:"type"` // "run_completed"
	RunID     string         `json:"runId"`
	Status    RunStatus      `json:"status"`
	Period    Period         `json:"period"`
	TopAgents []AgentSummary `json:"topAgents"`
	Timestamp time.Time      `json:"timestamp"`
}
