package scoring

import (
	"fmt"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// MinMessages returns the period-scaled message floor
func MinMessages(days int, p Params) int {
	return days * p.MessagesPerDay
}

// Evaluate decides which authors qualify for scoring. It runs over the full
// roster of classified records, before any manager or exclusion split.
//
// An author qualifies iff 0 < HIR < 1, total messages > MinMessagesFloor and
// total messages >= days*MessagesPerDay.
func Evaluate(records []types.JoinedRecord, days int, p Params) []types.Eligibility {
	tallies, _ := tallyGroup(records, p)
	minMessages := MinMessages(days, p)

	authors := Authors(records)
	out := make([]types.Eligibility, 0, len(authors))
	for _, name := range authors {
		t := tallies[name]
		e := types.Eligibility{
			Name:          name,
			HIR:           t.hir(),
			TotalMessages: t.ownedMessages + t.assistedMessages,
		}

		switch {
		case e.HIR <= 0:
			e.Reason = "never assisted"
		case e.HIR >= 1:
			e.Reason = "only assisted"
		case e.TotalMessages <= p.MinMessagesFloor:
			e.Reason = fmt.Sprintf("%d messages, need more than %d", e.TotalMessages, p.MinMessagesFloor)
		case e.TotalMessages < minMessages:
			e.Reason = fmt.Sprintf("%d messages, need %d for %d days", e.TotalMessages, minMessages, days)
		default:
			e.Eligible = true
		}
		out = append(out, e)
	}
	return out
}

// EligibleNames returns the set of qualifying names
func EligibleNames(decisions []types.Eligibility) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range decisions {
		if e.Eligible {
			out[e.Name] = struct{}{}
		}
	}
	return out
}
