package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// Column names a rankable column of the summary or metrics table
type Column string

const (
	OwnedChats       Column = "ownedChats"
	OwnedMessages    Column = "ownedMessages"
	OwnedChars       Column = "ownedChars"
	AssistedChats    Column = "assistedChats"
	AssistedMessages Column = "assistedMessages"
	AssistedChars    Column = "assistedChars"
	OwnedScore       Column = "ownedScore"
	AssistScore      Column = "assistScore"
	TotalScore       Column = "totalScore"

	HIR Column = "hir"
	IIF Column = "iif"
	CIS Column = "cis"
	DLS Column = "dls"
	ALS Column = "als"
)

// DefaultColumns are the leaderboards of the scoreboard
var DefaultColumns = []Column{OwnedChats, OwnedMessages, AssistedChats, AssistedMessages, TotalScore}

// DefaultSize is the number of entries in each leaderboard half
const DefaultSize = 5

var summaryValues = map[Column]func(types.AgentSummary) float64{
	OwnedChats:       func(s types.AgentSummary) float64 { return float64(s.OwnedChats) },
	OwnedMessages:    func(s types.AgentSummary) float64 { return float64(s.OwnedMessages) },
	OwnedChars:       func(s types.AgentSummary) float64 { return float64(s.OwnedChars) },
	AssistedChats:    func(s types.AgentSummary) float64 { return float64(s.AssistedChats) },
	AssistedMessages: func(s types.AgentSummary) float64 { return float64(s.AssistedMessages) },
	AssistedChars:    func(s types.AgentSummary) float64 { return float64(s.AssistedChars) },
	OwnedScore:       func(s types.AgentSummary) float64 { return s.OwnedScore },
	AssistScore:      func(s types.AgentSummary) float64 { return s.AssistScore },
	TotalScore:       func(s types.AgentSummary) float64 { return s.TotalScore },
}

var metricValues = map[Column]func(types.AgentMetrics) float64{
	HIR: func(m types.AgentMetrics) float64 { return m.HIR },
	IIF: func(m types.AgentMetrics) float64 { return m.IIF },
	CIS: func(m types.AgentMetrics) float64 { return m.CIS },
	DLS: func(m types.AgentMetrics) float64 { return m.DLS },
	ALS: func(m types.AgentMetrics) float64 { return m.ALS },
}

// ParseColumn validates a column name
func ParseColumn(name string) (Column, error) {
	c := Column(name)
	if _, ok := summaryValues[c]; ok {
		return c, nil
	}
	if _, ok := metricValues[c]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown ranking column %q", name)
}

// Round2 rounds half-to-even at two decimals
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Finalize rounds every float column to two decimals and sorts the summary
// by TotalScore desc and the metrics by ALS desc. Ties keep roster order.
func Finalize(g types.GroupResult) types.GroupResult {
	summary := make([]types.AgentSummary, len(g.Summary))
	for i, s := range g.Summary {
		s.OwnedScore = Round2(s.OwnedScore)
		s.AssistScore = Round2(s.AssistScore)
		s.TotalScore = Round2(s.TotalScore)
		summary[i] = s
	}
	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].TotalScore > summary[j].TotalScore
	})

	metrics := make([]types.AgentMetrics, len(g.Metrics))
	for i, m := range g.Metrics {
		m.HIR = Round2(m.HIR)
		m.IIF = Round2(m.IIF)
		m.CIS = Round2(m.CIS)
		m.DLS = Round2(m.DLS)
		m.ALS = Round2(m.ALS)
		metrics[i] = m
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].ALS > metrics[j].ALS
	})

	return types.GroupResult{Summary: summary, Metrics: metrics}
}

type row struct {
	name  string
	value float64
}

// Leaderboards builds the top-n and bottom-n rankings of each column from a
// finalized group. Summary columns follow summary order and metric columns
// follow metrics order when values tie.
func Leaderboards(g types.GroupResult, columns []Column, n int) ([]types.Ranking, error) {
	out := make([]types.Ranking, 0, len(columns))
	for _, c := range columns {
		var rows []row
		if value, ok := summaryValues[c]; ok {
			for _, s := range g.Summary {
				rows = append(rows, row{s.Name, value(s)})
			}
		} else if value, ok := metricValues[c]; ok {
			for _, m := range g.Metrics {
				rows = append(rows, row{m.Name, value(m)})
			}
		} else {
			return nil, fmt.Errorf("unknown ranking column %q", c)
		}

		out = append(out, types.Ranking{
			Column: string(c),
			Top:    pick(rows, n, func(a, b float64) bool { return a > b }),
			Bottom: pick(rows, n, func(a, b float64) bool { return a < b }),
		})
	}
	return out, nil
}

func pick(rows []row, n int, less func(a, b float64) bool) []types.RankEntry {
	sorted := append([]row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i].value, sorted[j].value)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	entries := make([]types.RankEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = types.RankEntry{Position: i + 1, Name: r.name, Value: r.value}
	}
	return entries
}
