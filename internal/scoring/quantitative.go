package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// agentTally accumulates per-agent counts over one group
type agentTally struct {
	chats            map[string]struct{}
	assistedChats    map[string]struct{}
	assistedChatList []string // assisted chats in first-seen order
	ownedMessages    int
	ownedChars       int
	assistedMessages int
	assistedChars    int
	keywordHits      int
	linkHits         int
}

func newAgentTally() *agentTally {
	return &agentTally{
		chats:         make(map[string]struct{}),
		assistedChats: make(map[string]struct{}),
	}
}

// hir is |assisted chats| / |all chats|, zero when the agent has no chats
func (t *agentTally) hir() float64 {
	if len(t.chats) == 0 {
		return 0
	}
	return float64(len(t.assistedChats)) / float64(len(t.chats))
}

// tallyGroup walks the classified records of one group once
func tallyGroup(records []types.JoinedRecord, p Params) (map[string]*agentTally, map[string]int) {
	tallies := make(map[string]*agentTally)
	chatLengths := make(map[string]int)

	for _, r := range records {
		chatLengths[r.ChatID]++

		t, ok := tallies[r.AuthorName]
		if !ok {
			t = newAgentTally()
			tallies[r.AuthorName] = t
		}
		t.chats[r.ChatID] = struct{}{}

		chars := utf8.RuneCountInString(r.PlainText)
		if r.Role == types.RoleOwned {
			t.ownedMessages++
			t.ownedChars += chars
			continue
		}

		t.assistedMessages++
		t.assistedChars += chars
		if _, ok := t.assistedChats[r.ChatID]; !ok {
			t.assistedChats[r.ChatID] = struct{}{}
			t.assistedChatList = append(t.assistedChatList, r.ChatID)
		}
		if containsAny(r.PlainText, p.Keywords) {
			t.keywordHits++
		}
		if p.ApplicationMarker != "" && strings.Contains(r.PlainText, p.ApplicationMarker) {
			t.linkHits++
		}
	}
	return tallies, chatLengths
}

// Metrics computes HIR, IIF, CIS, DLS and ALS for every roster name over the
// group's classified records. Names without records get zero metrics.
func Metrics(records []types.JoinedRecord, roster []string, p Params) []types.AgentMetrics {
	tallies, chatLengths := tallyGroup(records, p)

	out := make([]types.AgentMetrics, 0, len(roster))
	for _, name := range roster {
		m := types.AgentMetrics{Name: name}
		if t, ok := tallies[name]; ok {
			m.HIR = t.hir()
			for _, chatID := range t.assistedChatList {
				m.IIF += float64(chatLengths[chatID])
			}
			m.CIS = float64(t.keywordHits)
			if t.assistedMessages > 0 {
				m.DLS = float64(t.assistedChars) / float64(t.assistedMessages)
			}
			m.ALS = p.ApplicationLinkPoints * float64(t.linkHits)
		}
		out = append(out, m)
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
