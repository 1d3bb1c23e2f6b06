package scoring

import "github.com/Helper-Yoon/chat-analyzer/internal/types"

// RoleOf returns Owned when the author is the conversation's assignee
func RoleOf(personID, assigneeID string) types.Role {
	if personID == assigneeID {
		return types.RoleOwned
	}
	return types.RoleAssisted
}

// Classify labels every record with its role, in place
func Classify(records []types.JoinedRecord) []types.JoinedRecord {
	for i := range records {
		records[i].Role = RoleOf(records[i].PersonID, records[i].AssigneeID)
	}
	return records
}

// Split partitions classified records into the owned and assisted subsets,
// preserving order
func Split(records []types.JoinedRecord) (owned, assisted []types.JoinedRecord) {
	for _, r := range records {
		if r.Role == types.RoleOwned {
			owned = append(owned, r)
		} else {
			assisted = append(assisted, r)
		}
	}
	return owned, assisted
}

// Authors returns the distinct author names in order of first appearance
func Authors(records []types.JoinedRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.AuthorName]; ok {
			continue
		}
		seen[r.AuthorName] = struct{}{}
		out = append(out, r.AuthorName)
	}
	return out
}
