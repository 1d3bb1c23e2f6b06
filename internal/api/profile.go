package api

import (
	"encoding/json"
	"net/http"

	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/rs/zerolog"
)

// ProfileHandler exposes the active scoring profile
type ProfileHandler struct {
	profiles *config.ProfileStore
	logger   zerolog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles *config.ProfileStore, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger.With().Str("component", "profile_handler").Logger(),
	}
}

// GetProfile returns the profile the next run will use
// GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p := h.profiles.Get()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"scoring":     p.Scoring,
		"managers":    nonNil(p.Managers),
		"excluded":    nonNil(p.Excluded),
		"rankColumns": nonNil(p.RankColumns),
		"rankSize":    p.RankSize,
	}); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode profile")
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
