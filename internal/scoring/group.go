package scoring

import "github.com/Helper-Yoon/chat-analyzer/internal/types"

// Group is one analysis group ready for scoring
type Group struct {
	// Records are the classified records authored by group members
	Records []types.JoinedRecord

	// Roster lists every name that gets a row, in output order
	Roster []string

	// OwnedChats counts in-window conversations assigned to each name
	OwnedChats map[string]int
}

// Roster unions the record authors (first-appearance order) with the names
// of in-window assignees, appended in the order given
func Roster(records []types.JoinedRecord, assignees []string) []string {
	roster := Authors(records)
	seen := make(map[string]struct{}, len(roster))
	for _, name := range roster {
		seen[name] = struct{}{}
	}
	for _, name := range assignees {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		roster = append(roster, name)
	}
	return roster
}

// ScoreGroup produces the unsorted, unrounded summary and metrics tables of a
// group. Both tables follow roster order.
func ScoreGroup(g Group, p Params) types.GroupResult {
	metrics := Metrics(g.Records, g.Roster, p)
	scores := Qualitative(g.Records, g.Roster, metrics, p)
	tallies, _ := tallyGroup(g.Records, p)

	summary := make([]types.AgentSummary, len(g.Roster))
	for i, name := range g.Roster {
		s := types.AgentSummary{
			Name:        name,
			OwnedChats:  g.OwnedChats[name],
			OwnedScore:  scores[i].Owned,
			AssistScore: scores[i].Assist,
			TotalScore:  scores[i].Total,
		}
		if t, ok := tallies[name]; ok {
			s.OwnedMessages = t.ownedMessages
			s.OwnedChars = t.ownedChars
			s.AssistedChats = len(t.assistedChats)
			s.AssistedMessages = t.assistedMessages
			s.AssistedChars = t.assistedChars
		}
		summary[i] = s
	}
	return types.GroupResult{Summary: summary, Metrics: metrics}
}
