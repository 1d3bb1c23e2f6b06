// Package period restricts conversations and messages to an inclusive
// calendar-day analysis window.
//
// Timestamps that cannot be parsed are dropped without error. Timestamps
// without a zone are read in the window's location; zoned timestamps are
// converted to it.
package period

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// DateLayout is the calendar date format used by parameters and reports
const DateLayout = "2006-01-02"

// layouts are tried in order. time.Parse accepts fractional seconds after
// the seconds field even when the layout omits them.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
}

// Spreadsheet serial dates count days from 1899-12-30
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Window is an inclusive range of calendar days
type Window struct {
	start time.Time // start of the first day
	end   time.Time // start of the day after the last day (exclusive)
	days  int
	loc   *time.Location
}

// NewWindow builds a window covering startDate through endDate inclusive.
// Only the calendar date of each argument is used.
func NewWindow(startDate, endDate time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, loc)
	last := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, loc)
	if last.Before(start) {
		return Window{}, fmt.Errorf("%w: end %s before start %s",
			types.ErrInvalidPeriod, last.Format(DateLayout), start.Format(DateLayout))
	}
	end := last.AddDate(0, 0, 1)

	days := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days++
	}

	return Window{start: start, end: end, days: days, loc: loc}, nil
}

// ParseWindow builds a window from two YYYY-MM-DD strings
func ParseWindow(startDate, endDate string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := time.ParseInLocation(DateLayout, strings.TrimSpace(startDate), loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start date %q: %v", types.ErrInvalidPeriod, startDate, err)
	}
	e, err := time.ParseInLocation(DateLayout, strings.TrimSpace(endDate), loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end date %q: %v", types.ErrInvalidPeriod, endDate, err)
	}
	return NewWindow(s, e, loc)
}

// Days returns the inclusive number of calendar days in the window
func (w Window) Days() int {
	return w.days
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.start) && t.Before(w.end)
}

// Period returns the window as a result descriptor
func (w Window) Period() types.Period {
	return types.Period{
		Start: w.start,
		End:   w.end.AddDate(0, 0, -1),
		Days:  w.days,
	}
}

// Filtered is the outcome of applying a window to a dataset
type Filtered struct {
	Messages         []types.Message      // inside the window
	Conversations    []types.Conversation // inside the window
	AllConversations []types.Conversation // every conversation with a parseable timestamp
	Unparseable      int                  // rows dropped for bad timestamps
}

// Apply parses timestamps and keeps the rows inside the window. It returns
// types.ErrEmptyPeriod when no message survives.
func (w Window) Apply(ds *types.Dataset) (*Filtered, error) {
	out := &Filtered{}

	for _, row := range ds.Conversations {
		ts, ok := ParseTimestamp(row.FirstOpenedAt, w.loc)
		if !ok {
			out.Unparseable++
			continue
		}
		c := types.Conversation{ID: row.ID, AssigneeID: row.AssigneeID, FirstOpenedAt: ts}
		out.AllConversations = append(out.AllConversations, c)
		if w.Contains(ts) {
			out.Conversations = append(out.Conversations, c)
		}
	}

	for _, row := range ds.Messages {
		ts, ok := ParseTimestamp(row.CreatedAt, w.loc)
		if !ok {
			out.Unparseable++
			continue
		}
		if !w.Contains(ts) {
			continue
		}
		out.Messages = append(out.Messages, types.Message{
			ChatID:    row.ChatID,
			PersonID:  row.PersonID,
			CreatedAt: ts,
			PlainText: row.PlainText,
		})
	}

	if len(out.Messages) == 0 {
		return nil, fmt.Errorf("%w: %s..%s", types.ErrEmptyPeriod,
			w.start.Format(DateLayout), w.end.AddDate(0, 0, -1).Format(DateLayout))
	}
	return out, nil
}

// ParseTimestamp reads a timestamp cell. Numeric cells are read as epoch
// milliseconds (12+ digits), epoch seconds (10 digits) or spreadsheet serial
// days.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}

	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		switch {
		case len(s) >= 12:
			return time.UnixMilli(n).In(loc), true
		case len(s) == 10:
			return time.Unix(n, 0).In(loc), true
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f <= 0 || f >= 2958466 {
		return time.Time{}, false
	}
	days := math.Floor(f)
	frac := f - days
	t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(math.Round(frac * 24 * float64(time.Hour) / float64(time.Millisecond))) * time.Millisecond)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
