package types

import "time"

// RunStatus distinguishes a scored run from the explicit no-results outcome
type RunStatus string

const (
	StatusScored           RunStatus = "scored"
	StatusNoEligibleAgents RunStatus = "no_eligible_agents"
)

// AgentMetrics holds the quantitative engagement metrics of one agent.
// Agents without assisted messages keep the zero value for every metric.
type AgentMetrics struct {
	Name string  `json:"name"`
	HIR  float64 `json:"hir"` // help intervention rate, 0..1
	IIF  float64 `json:"iif"` // intervention impact factor
	CIS  float64 `json:"cis"` // content information score
	DLS  float64 `json:"dls"` // depth/length score
	ALS  float64 `json:"als"` // application-link score
}

// AgentSummary holds volume counts and qualitative scores of one agent.
// Counts default to zero when the agent has no records of that kind.
type AgentSummary struct {
	Name             string  `json:"name"`
	OwnedChats       int     `json:"ownedChats"`
	OwnedMessages    int     `json:"ownedMessages"`
	OwnedChars       int     `json:"ownedChars"`
	AssistedChats    int     `json:"assistedChats"`
	AssistedMessages int     `json:"assistedMessages"`
	AssistedChars    int     `json:"assistedChars"`
	OwnedScore       float64 `json:"ownedScore"`
	AssistScore      float64 `json:"assistScore"`
	TotalScore       float64 `json:"totalScore"`
}

// Eligibility is the scoring gate decision for one author
type Eligibility struct {
	Name          string  `json:"name"`
	HIR           float64 `json:"hir"`
	TotalMessages int     `json:"totalMessages"`
	Eligible      bool    `json:"eligible"`
	Reason        string  `json:"reason,omitempty"`
}

// GroupResult is the scored output of one analysis group
type GroupResult struct {
	Summary []AgentSummary `json:"summary"` // sorted by TotalScore desc
	Metrics []AgentMetrics `json:"metrics"` // sorted by ALS desc
}

// RankEntry is one position in a leaderboard
type RankEntry struct {
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
}

// Ranking is the top-N and bottom-N leaderboard of one column
type Ranking struct {
	Column string      `json:"column"`
	Top    []RankEntry `json:"top"`
	Bottom []RankEntry `json:"bottom"`
}

// Period is the inclusive analysis window
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// Result is the complete output of one engine run
type Result struct {
	RunID       string        `json:"runId"`
	Status      RunStatus     `json:"status"`
	Period      Period        `json:"period"`
	Agents      GroupResult   `json:"agents"`
	Managers    GroupResult   `json:"managers"`
	Rankings    []Ranking     `json:"rankings"`
	Eligibility []Eligibility `json:"eligibility"`
}

// HasResults reports whether the run produced scored agent tables
func (r *Result) HasResults() bool {
	return r.Status == StatusScored
}
