package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/ranking"
	"github.com/Helper-Yoon/chat-analyzer/internal/scoring"
	"github.com/rs/zerolog"
)

func writeProfile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(*testing.T, *Profile)
	}{
		{
			name: "empty file keeps defaults",
			body: "",
			check: func(t *testing.T, p *Profile) {
				if p.Scoring.ALSWeight != 3 || p.Scoring.ApplicationLinkPoints != 10 {
					t.Errorf("unexpected defaults: %+v", p.Scoring)
				}
				if len(p.Scoring.Keywords) != len(scoring.DefaultKeywords) {
					t.Errorf("expected default keywords, got %v", p.Scoring.Keywords)
				}
				if p.RankSize != ranking.DefaultSize || len(p.RankColumns) != len(ranking.DefaultColumns) {
					t.Errorf("unexpected ranking defaults: %d %v", p.RankSize, p.RankColumns)
				}
			},
		},
		{
			name: "overrides",
			body: `
keywords: [요금제, 약정]
application_marker: "https://example.com/apply"
als_weight: 2
messages_per_day: 5
managers: ["박팀장", " 최실장 ", ""]
excluded: [봇]
rank_columns: [totalScore, als]
rank_size: 3
`,
			check: func(t *testing.T, p *Profile) {
				if len(p.Scoring.Keywords) != 2 || p.Scoring.Keywords[1] != "약정" {
					t.Errorf("unexpected keywords: %v", p.Scoring.Keywords)
				}
				if p.Scoring.ApplicationMarker != "https://example.com/apply" {
					t.Errorf("unexpected marker: %s", p.Scoring.ApplicationMarker)
				}
				if p.Scoring.ALSWeight != 2 || p.Scoring.MessagesPerDay != 5 {
					t.Errorf("unexpected weights: %+v", p.Scoring)
				}
				if p.Scoring.MinMessagesFloor != 10 {
					t.Errorf("expected floor default 10, got %d", p.Scoring.MinMessagesFloor)
				}
				if len(p.Managers) != 2 || p.Managers[1] != "최실장" {
					t.Errorf("unexpected managers: %q", p.Managers)
				}
				cols, err := p.Columns()
				if err != nil || len(cols) != 2 || cols[1] != ranking.ALS {
					t.Errorf("unexpected columns: %v %v", cols, err)
				}
			},
		},
		{name: "bad yaml", body: "keywords: [", wantErr: true},
		{name: "unknown column", body: "rank_columns: [bogus]", wantErr: true},
		{name: "zero ratio", body: "owned_pool_ratio: 0", wantErr: true},
		{name: "zero rank size", body: "rank_size: 0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, t.TempDir(), tt.body)
			p, err := LoadProfile(path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSplitNames(t *testing.T) {
	got := SplitNames(" 김철수, ,이영희,")
	if len(got) != 2 || got[0] != "김철수" || got[1] != "이영희" {
		t.Errorf("unexpected names: %q", got)
	}
	if SplitNames("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestProfileStore(t *testing.T) {
	s := NewProfileStore(DefaultProfile())
	next := DefaultProfile()
	next.RankSize = 10
	s.Set(next)
	if s.Get().RankSize != 10 {
		t.Errorf("expected swapped profile, got rank size %d", s.Get().RankSize)
	}
}

func TestWatchProfile(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "rank_size: 5\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Profile, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchProfile(ctx, path, zerolog.Nop(), func(p *Profile) { changes <- p })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case p := <-changes:
			// a truncate can surface as a write of the empty file first
			if p.RankSize != 7 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("unexpected watcher error: %v", err)
			}
			return
		case <-tick.C:
			// the watcher may not be registered yet, so keep writing
			writeProfile(t, filepath.Dir(path), "rank_size: 7\n")
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

// saveAtomically writes body to a temp file and renames it over path, the
// way most editors save
func saveAtomically(t *testing.T, path, body string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp profile: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename profile: %v", err)
	}
}

func TestWatchProfileAtomicSave(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "rank_size: 5\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Profile, 16)
	go WatchProfile(ctx, path, zerolog.Nop(), func(p *Profile) { changes <- p })

	// Two saves in a row: the second only reloads if the watch survived the first
	for _, size := range []int{7, 9} {
		body := fmt.Sprintf("rank_size: %d\n", size)
		deadline := time.After(5 * time.Second)
		tick := time.NewTicker(100 * time.Millisecond)

	wait:
		for {
			select {
			case p := <-changes:
				if p.RankSize == size {
					break wait
				}
			case <-tick.C:
				saveAtomically(t, path, body)
			case <-deadline:
				tick.Stop()
				t.Fatalf("atomic save of rank_size=%d never reloaded", size)
			}
		}
		tick.Stop()
	}
}

func TestWatchProfileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := writeProfile(t, dir, "rank_size: 5\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Profile, 16)
	go WatchProfile(ctx, path, zerolog.Nop(), func(p *Profile) { changes <- p })

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("rank_size: 3\n"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case p := <-changes:
		t.Errorf("unexpected reload from sibling file: %+v", p)
	case <-time.After(300 * time.Millisecond):
	}
}
