package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/planning"
	"github.com/okian/taskmatch/internal/domain/types"
)

// PlanningDependencies defines the interface for deadline planning.
type PlanningDependencies interface {
	SuggestDeadline(ctx context.Context, estimatedHours float64, category string, complexity model.Complexity) (types.DeadlineSuggestion, error)
	ComplexityFactors(ctx context.Context) []planning.ComplexityFactor
}

// PlanningHandler handles planning requests.
type PlanningHandler struct {
	deps PlanningDependencies
}

// NewPlanningHandler creates a new planning handler.
func NewPlanningHandler(deps PlanningDependencies) *PlanningHandler {
	return &PlanningHandler{deps: deps}
}

// HandleDeadline handles GET /planning/deadline?estimated_hours=&category=&complexity= requests.
func (h *PlanningHandler) HandleDeadline(w http.ResponseWriter, r *http.Request) {
	const op = "api.suggest_deadline"
	q := r.URL.Query()

	hours, err := parseHours(q.Get("estimated_hours"))
	if err != nil {
		writeFailure(w, WrapKind(op, model.ErrInvalidTaskDescriptor, err))
		return
	}
	complexity, err := parseComplexity(q.Get("complexity"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	d, err := h.deps.SuggestDeadline(r.Context(), hours, strings.TrimSpace(q.Get("category")), complexity)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleComplexity handles GET /planning/complexity requests.
func (h *PlanningHandler) HandleComplexity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ComplexityFactors(r.Context()))
}

// parseComplexity accepts any letter case. Empty means "derive from the category".
func parseComplexity(s string) (model.Complexity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, c := range []model.Complexity{model.ComplexityLow, model.ComplexityMedium, model.ComplexityHigh} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown complexity %q", s)
}
