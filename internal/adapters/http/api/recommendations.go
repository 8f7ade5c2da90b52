package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

// RecommendationDependencies defines the interface for candidate ranking.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, q types.RecommendQuery) ([]types.Recommendation, error)
	MaxRecommendations() int
}

// RecommendationsHandler handles ranking requests.
type RecommendationsHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// HandleGetRecommendations handles
// GET /recommendations?category=&priority=&estimated_hours=&limit= requests.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	q := r.URL.Query()

	priority, err := model.ParsePriority(q.Get("priority"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	hours, err := parseHours(q.Get("estimated_hours"))
	if err != nil {
		writeFailure(w, WrapKind(op, model.ErrInvalidTaskDescriptor, err))
		return
	}

	limit := 0
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", s)))
			return
		}
		if limit > h.deps.MaxRecommendations() {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
	}

	recs, err := h.deps.Recommend(r.Context(), types.RecommendQuery{
		Category:       strings.TrimSpace(q.Get("category")),
		Priority:       priority,
		EstimatedHours: hours,
		Limit:          limit,
	})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func parseHours(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("missing estimated_hours")
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid estimated_hours %q", s)
	}
	return h, nil
}
