// Package join resolves each message to its conversation's assignee and to
// its author's display name.
package join

import (
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// Directory maps person ids to display names
type Directory map[string]string

// NewDirectory builds the id -> name lookup. The first entry for an id wins.
func NewDirectory(people []types.Person) Directory {
	d := make(Directory, len(people))
	for _, p := range people {
		if _, ok := d[p.ID]; ok {
			continue
		}
		d[p.ID] = p.Name
	}
	return d
}

// Name returns the display name of id. Blank names count as unresolved.
func (d Directory) Name(id string) (string, bool) {
	name, ok := d[id]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// IDsByName returns the ids that carry one of the given names
func (d Directory) IDsByName(names map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for id, name := range d {
		if _, ok := names[name]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Stats counts the rows dropped while joining
type Stats struct {
	UnresolvedAssignee int
	UnresolvedAuthor   int
}

// Join enriches messages with the assignee of their conversation and the
// display name of their author. Messages whose conversation has no assignee
// or whose author is not in the directory are dropped. Conversations are
// looked up regardless of the analysis window.
func Join(messages []types.Message, conversations []types.Conversation, dir Directory) ([]types.JoinedRecord, Stats) {
	assignees := make(map[string]string, len(conversations))
	for _, c := range conversations {
		if _, ok := assignees[c.ID]; ok {
			continue
		}
		assignees[c.ID] = c.AssigneeID
	}

	var stats Stats
	out := make([]types.JoinedRecord, 0, len(messages))
	for _, m := range messages {
		assignee, ok := assignees[m.ChatID]
		if !ok || assignee == "" {
			stats.UnresolvedAssignee++
			continue
		}
		name, ok := dir.Name(m.PersonID)
		if !ok {
			stats.UnresolvedAuthor++
			continue
		}
		out = append(out, types.JoinedRecord{
			Message:    m,
			AssigneeID: assignee,
			AuthorName: name,
		})
	}
	return out, stats
}
