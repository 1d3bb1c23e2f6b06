package ingestion

import (
	"fmt"
	"strings"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// Required columns per dataset category
var (
	conversationColumns = []string{"id", "assigneeId", "firstOpenedAt"}
	messageColumns      = []string{"chatId", "personId", "createdAt", "plainText"}
	personColumns       = []string{"id", "name"}
)

// Stats describes what the normalizer did with its input
type Stats struct {
	Tables     map[string]int // marker -> matched table count
	RowsIn     map[string]int // marker -> rows before dedup
	Duplicates map[string]int // marker -> rows dropped as duplicates
}

// Normalizer unions source tables by category, cleans identifiers and drops
// duplicate rows
type Normalizer struct {
	logger zerolog.Logger
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With().Str("component", "normalizer").Logger(),
	}
}

// Normalize turns raw tables into the three normalized datasets. It fails
// with types.ErrMissingRequiredDataset when a category has no table and with
// types.ErrMissingColumn when a matched table lacks a required column.
func (n *Normalizer) Normalize(tables []types.RawTable) (*types.Dataset, Stats, error) {
	stats := Stats{
		Tables:     make(map[string]int, 3),
		RowsIn:     make(map[string]int, 3),
		Duplicates: make(map[string]int, 3),
	}

	grouped := make(map[string][]types.RawTable, 3)
	for _, t := range tables {
		for _, marker := range types.RequiredMarkers {
			if strings.Contains(t.Name, marker) {
				grouped[marker] = append(grouped[marker], t)
			}
		}
	}
	for _, marker := range types.RequiredMarkers {
		stats.Tables[marker] = len(grouped[marker])
		if len(grouped[marker]) == 0 {
			return nil, stats, fmt.Errorf("%w: no table named like %q", types.ErrMissingRequiredDataset, marker)
		}
	}

	ds := &types.Dataset{}

	convRows, err := unionRows(grouped[types.MarkerConversations], conversationColumns)
	if err != nil {
		return nil, stats, err
	}
	stats.RowsIn[types.MarkerConversations] = len(convRows)
	seenConv := make(map[string]struct{}, len(convRows))
	for _, r := range convRows {
		c := types.ConversationRow{
			ID:            CleanID(r[0]),
			AssigneeID:    CleanID(r[1]),
			FirstOpenedAt: r[2],
		}
		if _, dup := seenConv[c.ID]; dup {
			stats.Duplicates[types.MarkerConversations]++
			continue
		}
		seenConv[c.ID] = struct{}{}
		ds.Conversations = append(ds.Conversations, c)
	}

	msgRows, err := unionRows(grouped[types.MarkerMessages], messageColumns)
	if err != nil {
		return nil, stats, err
	}
	stats.RowsIn[types.MarkerMessages] = len(msgRows)
	seenMsg := make(map[messageKey]struct{}, len(msgRows))
	for _, r := range msgRows {
		m := types.MessageRow{
			ChatID:    CleanID(r[0]),
			PersonID:  CleanID(r[1]),
			CreatedAt: r[2],
			PlainText: r[3],
		}
		key := messageKey{m.ChatID, m.PersonID, m.CreatedAt, m.PlainText}
		if _, dup := seenMsg[key]; dup {
			stats.Duplicates[types.MarkerMessages]++
			continue
		}
		seenMsg[key] = struct{}{}
		ds.Messages = append(ds.Messages, m)
	}

	personRows, err := unionRows(grouped[types.MarkerPeople], personColumns)
	if err != nil {
		return nil, stats, err
	}
	stats.RowsIn[types.MarkerPeople] = len(personRows)
	seenPerson := make(map[string]struct{}, len(personRows))
	for _, r := range personRows {
		p := types.Person{ID: CleanID(r[0]), Name: r[1]}
		if _, dup := seenPerson[p.ID]; dup {
			stats.Duplicates[types.MarkerPeople]++
			continue
		}
		seenPerson[p.ID] = struct{}{}
		ds.People = append(ds.People, p)
	}

	n.logger.Debug().
		Int("conversations", len(ds.Conversations)).
		Int("messages", len(ds.Messages)).
		Int("people", len(ds.People)).
		Int("duplicate_messages", stats.Duplicates[types.MarkerMessages]).
		Msg("datasets normalized")

	return ds, stats, nil
}

// CleanID canonicalizes an identifier: surrounding whitespace is trimmed and a
// trailing ".0" left by float round-tripping is removed
func CleanID(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), ".0")
}

type messageKey struct {
	chatID, personID, createdAt, text string
}

// unionRows projects every table onto the given columns, in table order.
// Short rows are padded with empty cells.
func unionRows(tables []types.RawTable, columns []string) ([][]string, error) {
	var out [][]string
	for _, t := range tables {
		idx := make([]int, len(columns))
		for i, col := range columns {
			idx[i] = t.Column(col)
			if idx[i] < 0 {
				return nil, fmt.Errorf("%w: table %q has no column %q", types.ErrMissingColumn, t.Name, col)
			}
		}
		for _, row := range t.Rows {
			cells := make([]string, len(columns))
			for i, j := range idx {
				if j < len(row) {
					cells[i] = row[j]
				}
			}
			out = append(out, cells)
		}
	}
	return out, nil
}
