package types

import "time"

// Role describes how a message relates to its conversation's assignee
type Role string

const (
	RoleOwned    Role = "owned"    // author is the conversation's assignee
	RoleAssisted Role = "assisted" // author helped someone else's conversation
)

// Dataset category markers. A source table whose name contains one of these
// markers is unioned into the matching dataset.
const (
	MarkerConversations = "UserChat data"
	MarkerMessages      = "Message data"
	MarkerPeople        = "Manager data"
)

// RequiredMarkers lists the markers in the order datasets are reported
var RequiredMarkers = []string{MarkerConversations, MarkerMessages, MarkerPeople}

// RawTable is one untyped source table (a spreadsheet sheet, a SQL table, a
// DynamoDB table). Header holds the column names of every row.
type RawTable struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Column returns the index of the named column, or -1
func (t RawTable) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ConversationRow is a normalized conversation before timestamp parsing
type ConversationRow struct {
	ID            string
	AssigneeID    string
	FirstOpenedAt string
}

// MessageRow is a normalized message before timestamp parsing
type MessageRow struct {
	ChatID    string
	PersonID  string
	CreatedAt string
	PlainText string
}

// Person is a directory entry mapping an identity to a display name
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dataset holds the three normalized input tables
type Dataset struct {
	Conversations []ConversationRow
	Messages      []MessageRow
	People        []Person
}

// Conversation is a chat with a formal assignee
type Conversation struct {
	ID            string    `json:"id"`
	AssigneeID    string    `json:"assigneeId"`
	FirstOpenedAt time.Time `json:"firstOpenedAt"`
}

// Message is a single chat message
type Message struct {
	ChatID    string    `json:"chatId"`
	PersonID  string    `json:"personId"`
	CreatedAt time.Time `json:"createdAt"`
	PlainText string    `json:"plainText"`
}

// JoinedRecord is a message resolved to its conversation's assignee and its
// author's display name
type JoinedRecord struct {
	Message
	AssigneeID string `json:"assigneeId"`
	AuthorName string `json:"authorName"`
	Role       Role   `json:"role"`
}
