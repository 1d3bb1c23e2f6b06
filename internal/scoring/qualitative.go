package scoring

import (
	"math"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// BaseScores sums each author's rarity weights over one role subset. A
// message whose text occurs freq times among the subset's N messages is worth
// ln(1 + N/freq).
func BaseScores(subset []types.JoinedRecord) map[string]float64 {
	n := float64(len(subset))
	freq := make(map[string]int, len(subset))
	for _, r := range subset {
		freq[r.PlainText]++
	}

	out := make(map[string]float64)
	for _, r := range subset {
		out[r.AuthorName] += math.Log1p(n / float64(freq[r.PlainText]))
	}
	return out
}

// NormalizeALS min-max scales ALS across the given metrics. All values map
// to zero when every ALS ties.
func NormalizeALS(metrics []types.AgentMetrics) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	if len(metrics) == 0 {
		return out
	}

	lo, hi := metrics[0].ALS, metrics[0].ALS
	for _, m := range metrics[1:] {
		lo = math.Min(lo, m.ALS)
		hi = math.Max(hi, m.ALS)
	}
	for _, m := range metrics {
		if hi > lo {
			out[m.Name] = (m.ALS - lo) / (hi - lo)
		} else {
			out[m.Name] = 0
		}
	}
	return out
}

// Scores are the qualitative scores of one agent
type Scores struct {
	Owned  float64
	Assist float64
	Total  float64
}

// Qualitative computes owned and assist scores for every roster name.
// metrics must be aligned with roster. When both pools are positive the
// owned scores are rescaled so that sum(owned) = sum(assist) * OwnedPoolRatio.
func Qualitative(records []types.JoinedRecord, roster []string, metrics []types.AgentMetrics, p Params) []Scores {
	owned, assisted := Split(records)
	ownedBase := BaseScores(owned)
	assistBase := BaseScores(assisted)
	normALS := NormalizeALS(metrics)

	out := make([]Scores, len(roster))
	var ownedPool, assistPool float64
	for i, name := range roster {
		correction := p.ALSWeight * normALS[name]
		out[i].Assist = assistBase[name] * (1 + correction)
		out[i].Owned = ownedBase[name] * (1 + p.AssignedCorrection)
		ownedPool += out[i].Owned
		assistPool += out[i].Assist
	}

	if ownedPool > 0 && assistPool > 0 {
		factor := assistPool * p.OwnedPoolRatio / ownedPool
		for i := range out {
			out[i].Owned *= factor
		}
	}

	for i := range out {
		out[i].Total = out[i].Owned + out[i].Assist
	}
	return out
}
