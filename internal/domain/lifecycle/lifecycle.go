// Package lifecycle holds the task state machine as pure reducers.
//
// Not Started -> In Progress -> Review -> Completed. Transitions are
// deliberately unguarded: any state may be completed directly, and Review is
// only entered on request. Every reducer takes a task by value and returns
// the next value; none of them touch shared state.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
)

// Start marks the task running. Only Not Started moves to In Progress;
// other states keep their status. The first start is kept as the actual start date.
func Start(t model.Task, now time.Time) model.Task {
	if t.Status == model.TaskNotStarted {
		t.Status = model.TaskInProgress
	}
	t.IsRunning = true
	started := now
	t.StartedAt = &started
	if t.ActualStartDate == nil {
		first := now
		t.ActualStartDate = &first
	}
	return t
}

// Pause stops time accrual without changing the status.
func Pause(t model.Task) model.Task {
	t.IsRunning = false
	t.StartedAt = nil
	return t
}

// Review moves the task to Review. The timer is left as it is.
func Review(t model.Task) model.Task {
	t.Status = model.TaskReview
	return t
}

// Complete forces Completed with full progress, whatever the prior state.
// It is idempotent.
func Complete(t model.Task) model.Task {
	t.Status = model.TaskCompleted
	t.Progress = 100
	t.IsRunning = false
	t.StartedAt = nil
	return t
}

// Tick adds one second of tracked time to a running task.
func Tick(t model.Task) model.Task {
	if t.IsRunning {
		t.TimeSpentSeconds++
	}
	return t
}

// SetProgress records progress clamped to [0,100]. Status is not derived from it.
func SetProgress(t model.Task, progress int) model.Task {
	t.Progress = max(0, min(100, progress))
	return t
}

// Apply dispatches a queued event to its reducer.
func Apply(t model.Task, ev model.TaskEvent) (model.Task, error) {
	switch ev.Action {
	case model.ActionStart:
		return Start(t, ev.TS), nil
	case model.ActionPause:
		return Pause(t), nil
	case model.ActionReview:
		return Review(t), nil
	case model.ActionComplete:
		return Complete(t), nil
	case model.ActionProgress:
		return SetProgress(t, ev.Progress), nil
	case model.ActionTick:
		return Tick(t), nil
	default:
		return t, fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}
}
