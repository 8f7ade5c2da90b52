package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

// RiskDependencies defines the interface for risk assessment.
type RiskDependencies interface {
	AssessRisk(ctx context.Context, employeeID string, estimatedHours float64, dueDate time.Time) (types.RiskAssessment, error)
}

// RiskHandler handles risk requests.
type RiskHandler struct {
	deps RiskDependencies
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(deps RiskDependencies) *RiskHandler {
	return &RiskHandler{deps: deps}
}

type riskRequest struct {
	EmployeeID     string  `json:"employee_id"`
	EstimatedHours float64 `json:"estimated_hours"`
	DueDate        string  `json:"due_date"`
}

// HandlePostRisk handles POST /risk requests.
func (h *RiskHandler) HandlePostRisk(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_risk"
	var req riskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.EmployeeID) == "" {
		writeFailure(w, WrapKind(op, ErrBadRequest, errMissing("employee_id")))
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		writeFailure(w, WrapKind(op, model.ErrInvalidTaskDescriptor, err))
		return
	}

	ra, err := h.deps.AssessRisk(r.Context(), req.EmployeeID, req.EstimatedHours, due)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ra)
}
