package api

import (
	"context"
	"net/http"

	"github.com/okian/taskmatch/internal/domain/model"
)

// EmployeeDependencies defines the interface for roster reads.
type EmployeeDependencies interface {
	Employees(ctx context.Context) ([]model.Employee, error)
	Employee(ctx context.Context, id string) (model.Employee, error)
}

// EmployeesHandler handles roster requests.
type EmployeesHandler struct {
	deps EmployeeDependencies
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps EmployeeDependencies) *EmployeesHandler {
	return &EmployeesHandler{deps: deps}
}

// HandleList handles GET /employees requests.
func (h *EmployeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	employees, err := h.deps.Employees(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.list_employees", err))
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// HandleGet handles GET /employees/{id} requests.
func (h *EmployeesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	emp, err := h.deps.Employee(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_employee", err))
		return
	}
	writeJSON(w, http.StatusOK, emp)
}
