package join

import (
	"testing"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

func TestJoin(t *testing.T) {
	dir := NewDirectory([]types.Person{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
		{ID: "blank", Name: ""},
	})
	conversations := []types.Conversation{
		{ID: "c1", AssigneeID: "a"},
		{ID: "c2", AssigneeID: ""},
		{ID: "c3", AssigneeID: "b"},
	}
	messages := []types.Message{
		{ChatID: "c1", PersonID: "a", PlainText: "owned"},
		{ChatID: "c1", PersonID: "b", PlainText: "assist"},
		{ChatID: "c2", PersonID: "a", PlainText: "no assignee"},
		{ChatID: "c9", PersonID: "a", PlainText: "unknown chat"},
		{ChatID: "c3", PersonID: "z", PlainText: "unknown author"},
		{ChatID: "c3", PersonID: "blank", PlainText: "blank name"},
	}

	records, stats := Join(messages, conversations, dir)

	if len(records) != 2 {
		t.Fatalf("expected 2 joined records, got %d", len(records))
	}
	if records[0].AuthorName != "Alice" || records[0].AssigneeID != "a" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].AuthorName != "Bob" || records[1].AssigneeID != "a" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
	if stats.UnresolvedAssignee != 2 {
		t.Errorf("expected 2 unresolved assignees, got %d", stats.UnresolvedAssignee)
	}
	if stats.UnresolvedAuthor != 2 {
		t.Errorf("expected 2 unresolved authors, got %d", stats.UnresolvedAuthor)
	}
}

func TestDirectoryFirstEntryWins(t *testing.T) {
	dir := NewDirectory([]types.Person{
		{ID: "a", Name: "Alice"},
		{ID: "a", Name: "Alicia"},
	})
	if name, _ := dir.Name("a"); name != "Alice" {
		t.Errorf("expected Alice, got %s", name)
	}
}

func TestIDsByName(t *testing.T) {
	dir := NewDirectory([]types.Person{
		{ID: "1", Name: "Kim"},
		{ID: "2", Name: "Kim"},
		{ID: "3", Name: "Lee"},
	})

	ids := dir.IDsByName(map[string]struct{}{"Kim": {}})
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if _, ok := ids["3"]; ok {
		t.Error("did not expect Lee's id")
	}
}
