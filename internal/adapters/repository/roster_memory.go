package repository

import (
	"context"
	"fmt"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/pkg/metrics"
)

// MemoryRoster is an immutable in-memory roster.
type MemoryRoster struct {
	employees []model.Employee
	byID      map[string]int
}

// NewMemoryRoster validates every record and rejects duplicate IDs.
func NewMemoryRoster(employees []model.Employee) (*MemoryRoster, error) {
	r := &MemoryRoster{
		employees: make([]model.Employee, 0, len(employees)),
		byID:      make(map[string]int, len(employees)),
	}
	for i := range employees {
		e := cloneEmployee(employees[i])
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRoster, err)
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate employee id %q", ErrInvalidRoster, e.ID)
		}
		r.byID[e.ID] = len(r.employees)
		r.employees = append(r.employees, e)
	}
	metrics.UpdateRosterSize(len(r.employees))
	return r, nil
}

// List returns a copy of the roster.
func (r *MemoryRoster) List(_ context.Context) ([]model.Employee, error) {
	out := make([]model.Employee, len(r.employees))
	for i := range r.employees {
		out[i] = cloneEmployee(r.employees[i])
	}
	return out, nil
}

// Get returns one employee.
func (r *MemoryRoster) Get(_ context.Context, id string) (model.Employee, error) {
	i, ok := r.byID[id]
	if !ok {
		return model.Employee{}, model.WrapKind("repository.roster.get", model.ErrEmployeeNotFound, fmt.Errorf("id %q", id))
	}
	return cloneEmployee(r.employees[i]), nil
}

// Count returns the roster size.
func (r *MemoryRoster) Count(_ context.Context) (int, error) {
	return len(r.employees), nil
}

// cloneEmployee copies the skills slice so callers cannot alias roster state.
func cloneEmployee(e model.Employee) model.Employee {
	if e.Skills != nil {
		e.Skills = append([]model.Skill(nil), e.Skills...)
	}
	return e
}
