package api

import (
	"net/http"
)

// StatsProvider reports service counters and configuration for GET /stats.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves the service counters.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a stats handler backed by p.
func NewStatsHandler(p StatsProvider) *StatsHandler {
	return &StatsHandler{provider: p}
}

// HandleStats handles GET /stats. The map is rendered as is; keys are camelCase.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
