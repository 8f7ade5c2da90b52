package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) String() string { return string(p) }

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority accepts any letter case ("high", "HIGH").
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", WrapKind("model.parse_priority", ErrInvalidTaskDescriptor, fmt.Errorf("unknown priority %q", s))
	}
}

// Complexity is the expected difficulty of a task category.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

func (c Complexity) String() string { return string(c) }

// IsValid reports whether c is a known complexity.
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	default:
		return false
	}
}

// TaskStatus is a lifecycle state.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "Not Started"
	TaskInProgress TaskStatus = "In Progress"
	TaskReview     TaskStatus = "Review"
	TaskCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) String() string { return string(s) }

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskReview, TaskCompleted:
		return true
	default:
		return false
	}
}

// TaskDescriptor is the ranking and risk input. It is never persisted.
type TaskDescriptor struct {
	Category       string    `json:"category"`
	Priority       Priority  `json:"priority"`
	EstimatedHours float64   `json:"estimated_hours"`
	DueDate        time.Time `json:"due_date"`
}

// ValidateEstimatedHours rejects zero, negative, NaN and infinite hours.
func ValidateEstimatedHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return WrapKind("model.validate_hours", ErrInvalidTaskDescriptor, fmt.Errorf("estimated hours must be positive, got %v", hours))
	}
	return nil
}

// Validate checks the descriptor. The due date is only required when
// requireDueDate is set, since ranking does not look at it.
func (d TaskDescriptor) Validate(requireDueDate bool) error {
	const op = "model.task_descriptor.validate"
	if err := ValidateEstimatedHours(d.EstimatedHours); err != nil {
		return err
	}
	if !d.Priority.IsValid() {
		return WrapKind(op, ErrInvalidTaskDescriptor, fmt.Errorf("unknown priority %q", d.Priority))
	}
	if requireDueDate && d.DueDate.IsZero() {
		return WrapKind(op, ErrInvalidTaskDescriptor, fmt.Errorf("missing due date"))
	}
	return nil
}

// Task is an assigned unit of work tracked by the lifecycle reducers.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category"`
	Priority         Priority   `json:"priority"`
	AssigneeID       string     `json:"assignee_id"`
	Status           TaskStatus `json:"status"`
	Progress         int        `json:"progress"`
	EstimatedHours   float64    `json:"estimated_hours"`
	TimeSpentSeconds int64      `json:"time_spent_seconds"`
	IsRunning        bool       `json:"is_running"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	ActualStartDate  *time.Time `json:"actual_start_date,omitempty"`
	AssignedDate     time.Time  `json:"assigned_date"`
	DueDate          time.Time  `json:"due_date"`
}

// NewTask builds a task with creation defaults: Not Started, no progress,
// no tracked time, assigned today.
func NewTask(id, title, assigneeID string, d TaskDescriptor, now time.Time) Task {
	return Task{
		ID:             id,
		Title:          title,
		Category:       d.Category,
		Priority:       d.Priority,
		AssigneeID:     assigneeID,
		Status:         TaskNotStarted,
		EstimatedHours: d.EstimatedHours,
		AssignedDate:   Today(now),
		DueDate:        d.DueDate,
	}
}

// Today truncates t to midnight in its own location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
