package config

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/Helper-Yoon/chat-analyzer/internal/ranking"
	"github.com/Helper-Yoon/chat-analyzer/internal/scoring"
	"gopkg.in/yaml.v3"
)

// Profile is the scoring profile: model constants plus the default manager
// and exclusion lists. Requests may override the name lists.
type Profile struct {
	Scoring scoring.Params `yaml:",inline"`

	// Managers are analysed as a separate group and never ranked as agents
	Managers []string `yaml:"managers"`

	// Excluded names are removed from the agent group
	Excluded []string `yaml:"excluded"`

	// RankColumns are the leaderboard columns of the scoreboard
	RankColumns []string `yaml:"rank_columns"`

	// RankSize is the number of entries per leaderboard half
	RankSize int `yaml:"rank_size"`
}

// DefaultProfile returns the built-in profile
func DefaultProfile() *Profile {
	p := &Profile{
		Scoring:  scoring.DefaultParams(),
		RankSize: ranking.DefaultSize,
	}
	for _, c := range ranking.DefaultColumns {
		p.RankColumns = append(p.RankColumns, string(c))
	}
	return p
}

// LoadProfile reads a YAML profile. Absent fields keep their defaults.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read file: %w", err)
	}

	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("profile: parse yaml: %w", err)
	}

	p.Managers = SplitNames(strings.Join(p.Managers, ","))
	p.Excluded = SplitNames(strings.Join(p.Excluded, ","))

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return p, nil
}

func (p *Profile) validate() error {
	s := p.Scoring
	if s.OwnedPoolRatio <= 0 {
		return fmt.Errorf("owned_pool_ratio must be positive")
	}
	if s.ALSWeight < 0 {
		return fmt.Errorf("als_weight must not be negative")
	}
	if s.ApplicationLinkPoints <= 0 {
		return fmt.Errorf("application_link_points must be positive")
	}
	if s.MinMessagesFloor < 0 || s.MessagesPerDay < 0 {
		return fmt.Errorf("message thresholds must not be negative")
	}
	if p.RankSize <= 0 {
		return fmt.Errorf("rank_size must be positive")
	}
	if _, err := p.Columns(); err != nil {
		return err
	}
	return nil
}

// Columns returns the parsed leaderboard columns
func (p *Profile) Columns() ([]ranking.Column, error) {
	out := make([]ranking.Column, 0, len(p.RankColumns))
	for _, name := range p.RankColumns {
		c, err := ranking.ParseColumn(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// SplitNames parses a comma-separated name list, dropping blanks
func SplitNames(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ProfileStore holds the active profile and swaps it on reload
type ProfileStore struct {
	current atomic.Pointer[Profile]
}

// NewProfileStore creates a store holding p
func NewProfileStore(p *Profile) *ProfileStore {
	s := &ProfileStore{}
	s.current.Store(p)
	return s
}

// Get returns the active profile. Callers must not modify it.
func (s *ProfileStore) Get() *Profile {
	return s.current.Load()
}

// Set replaces the active profile
func (s *ProfileStore) Set(p *Profile) {
	s.current.Store(p)
}
