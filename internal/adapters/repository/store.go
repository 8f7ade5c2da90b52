// Package repository holds the roster and task stores.
package repository

import (
	"context"

	"github.com/okian/taskmatch/internal/domain/model"
)

// Roster provides read access to the employee roster in roster order.
type Roster interface {
	// List returns every employee, including those on leave.
	List(ctx context.Context) ([]model.Employee, error)

	// Get returns one employee or model.ErrEmployeeNotFound.
	Get(ctx context.Context, id string) (model.Employee, error)

	// Count returns the number of employees.
	Count(ctx context.Context) (int, error)
}

// TaskMutator computes the next task value. Returning an error aborts the update.
type TaskMutator = func(model.Task) (model.Task, error)

// TaskStore keeps assigned tasks.
type TaskStore interface {
	// Create stores a new task. Returns ErrTaskExists for a duplicate ID.
	Create(ctx context.Context, task model.Task) error

	// Get returns one task or model.ErrTaskNotFound.
	Get(ctx context.Context, id string) (model.Task, error)

	// List returns tasks in creation order. A non-empty assigneeID filters by assignee.
	List(ctx context.Context, assigneeID string) ([]model.Task, error)

	// RunningIDs returns the IDs of tasks whose timer is running.
	RunningIDs(ctx context.Context) []string

	// Update applies fn to the stored task under the store lock and saves the result.
	Update(ctx context.Context, id string, fn TaskMutator) (model.Task, error)

	// Count returns the number of tracked tasks.
	Count(ctx context.Context) int
}
