package runs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/cache"
	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/engine"
	"github.com/Helper-Yoon/chat-analyzer/internal/ingestion"
	"github.com/Helper-Yoon/chat-analyzer/internal/period"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/rs/zerolog"
)

type recorder struct {
	runs          int
	errors        []string
	notifications []error
}

func (r *recorder) RecordRun(*types.Result)      { r.runs++ }
func (r *recorder) RecordRunError(reason string) { r.errors = append(r.errors, reason) }
func (r *recorder) RecordNotification(err error) { r.notifications = append(r.notifications, err) }

type publisher struct{ events []types.RunCompleted }

func (p *publisher) RunCompleted(e types.RunCompleted) { p.events = append(p.events, e) }

type notifier struct {
	ctxErr error
	err    error
}

func (n *notifier) Notify(ctx context.Context, _ types.RunCompleted) error {
	n.ctxErr = ctx.Err()
	return n.err
}

func (n *notifier) Close() error { return nil }

func tables() []types.RawTable {
	return []types.RawTable{
		{Name: types.MarkerConversations, Header: []string{"id", "assigneeId", "firstOpenedAt"}, Rows: [][]string{
			{"c1", "1", "2025-07-01 09:00:00"},
		}},
		{Name: types.MarkerMessages, Header: []string{"chatId", "personId", "createdAt", "plainText"}, Rows: [][]string{
			{"c1", "1", "2025-07-01 10:00:00", "hello"},
		}},
		{Name: types.MarkerPeople, Header: []string{"id", "name"}, Rows: [][]string{{"1", "Kim"}}},
	}
}

func window(t *testing.T) period.Window {
	t.Helper()
	w, err := period.ParseWindow("2025-07-01", "2025-07-01", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return w
}

func TestExecuteDistributesResult(t *testing.T) {
	rec, pub, n := &recorder{}, &publisher{}, &notifier{err: errors.New("broker down")}
	runCache := cache.NewRunCache(3)
	svc := NewService(engine.New(zerolog.Nop()), runCache, pub, n, rec, zerolog.Nop())

	p, err := Params(config.DefaultProfile(), window(t), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A cancelled request must not cancel the broker publish
	ctx, cancel := context.WithCancel(context.Background())
	result, err := svc.Execute(ctx, ingestion.StaticSource(tables()), p)
	cancel()
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.Status != types.StatusNoEligibleAgents {
		t.Errorf("expected no eligible agents, got %s", result.Status)
	}
	if _, ok := runCache.Get(result.RunID); !ok {
		t.Error("expected result in cache")
	}
	if rec.runs != 1 || len(pub.events) != 1 {
		t.Errorf("expected one recorded and published run, got %d/%d", rec.runs, len(pub.events))
	}
	if len(rec.notifications) != 1 || rec.notifications[0] == nil {
		t.Errorf("expected failed notification to be recorded, got %v", rec.notifications)
	}
	if n.ctxErr != nil {
		t.Errorf("notify context already done: %v", n.ctxErr)
	}
}

func TestExecuteFailureIsNotDistributed(t *testing.T) {
	rec, pub := &recorder{}, &publisher{}
	runCache := cache.NewRunCache(3)
	svc := NewService(engine.New(zerolog.Nop()), runCache, pub, &notifier{}, rec, zerolog.Nop())

	p, _ := Params(config.DefaultProfile(), window(t), nil, nil)
	_, err := svc.Execute(context.Background(), ingestion.StaticSource(tables()[:1]), p)
	if !errors.Is(err, types.ErrMissingRequiredDataset) {
		t.Fatalf("expected missing dataset error, got %v", err)
	}
	if runCache.Size() != 0 || len(pub.events) != 0 || rec.runs != 0 {
		t.Error("failed run must not be distributed")
	}

	svc.RecordError("missing_dataset")
	if len(rec.errors) != 1 {
		t.Errorf("expected recorded error, got %v", rec.errors)
	}
}

func TestParamsOverrides(t *testing.T) {
	profile := config.DefaultProfile()
	profile.Managers = []string{"Park"}
	profile.Excluded = []string{"Choi"}

	tests := []struct {
		name     string
		managers []string
		excluded []string
		wantMgr  int
		wantExc  int
	}{
		{"profile defaults", nil, nil, 1, 1},
		{"cleared", []string{}, []string{}, 0, 0},
		{"replaced", []string{"A", "B"}, nil, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Params(profile, window(t), tt.managers, tt.excluded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(p.Managers) != tt.wantMgr || len(p.Excluded) != tt.wantExc {
				t.Errorf("got managers %v excluded %v", p.Managers, p.Excluded)
			}
			if p.RankSize != profile.RankSize || len(p.RankColumns) != len(profile.RankColumns) {
				t.Error("rank settings not carried over")
			}
		})
	}
}

func TestParamsRejectsBadColumn(t *testing.T) {
	profile := config.DefaultProfile()
	profile.RankColumns = []string{"nope"}
	if _, err := Params(profile, window(t), nil, nil); err == nil {
		t.Error("expected error for unknown column")
	}
}
