package api

import (
	"context"
	"net/http"

	"github.com/okian/taskmatch/internal/domain/types"
)

// TeamDependencies defines the interface for team statistics.
type TeamDependencies interface {
	Team(ctx context.Context) (types.TeamStats, error)
}

// TeamHandler handles team requests.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleGetTeam handles GET /team requests.
func (h *TeamHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.Team(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.get_team", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
